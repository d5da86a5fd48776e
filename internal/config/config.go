package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Defaults for the capture pipeline and AI service.
const (
	DefaultBrainDumpChars = 80
	DefaultMinCaptureLen  = 2
	DefaultAIBaseURL      = "https://api.groq.com/openai/v1/chat/completions"
	DefaultAIModel        = "llama-3.1-8b-instant"
)

// Config holds application configuration.
type Config struct {
	// AIAPIKey is the credential for the remote classification and
	// summarization service. Empty means the local heuristic fallback
	// is used for classification and summarization is skipped.
	AIAPIKey string `json:"ai_api_key,omitempty"`

	// AIBaseURL is the OpenAI-compatible chat completions endpoint.
	AIBaseURL string `json:"ai_base_url,omitempty"`

	// AIModel is the model name sent with every AI request.
	AIModel string `json:"ai_model,omitempty"`

	// BrainDumpChars is the capture length above which the input is
	// kept as a single brain-dump item and summarized instead of
	// being split into lines.
	BrainDumpChars int `json:"brain_dump_chars,omitempty"`

	// MinCaptureLen is the minimum trimmed capture length; anything
	// shorter is discarded silently as an accidental activation.
	MinCaptureLen int `json:"min_capture_len,omitempty"`

	// AllowedPaths is an allowlist of directories for backup
	// export/import. Paths outside ~/.forward/exports require either
	// being in this list or AllowUnsafePaths=true.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for export/import.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized.
	// 0 means use sql.DB default. Only set if you experience contention.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// All tools belonging to disabled types are excluded from registration.
	// Known types: "item", "project". Unknown type names are logged as warnings.
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		AIBaseURL:      DefaultAIBaseURL,
		AIModel:        DefaultAIModel,
		BrainDumpChars: DefaultBrainDumpChars,
		MinCaptureLen:  DefaultMinCaptureLen,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.forward.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.forward) and repo
// (.forward) directories. Repo config is found by walking upward from
// startDir to find the nearest .forward/config.json. Repo config takes
// precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest
// .forward/config.json. Returns the path if found, or empty string if not.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".forward", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, not found
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.AIAPIKey = overlay.AIAPIKey
	if result.AIAPIKey == "" {
		result.AIAPIKey = base.AIAPIKey
	}

	result.AIBaseURL = overlay.AIBaseURL
	if result.AIBaseURL == "" {
		result.AIBaseURL = base.AIBaseURL
	}

	result.AIModel = overlay.AIModel
	if result.AIModel == "" {
		result.AIModel = base.AIModel
	}

	result.BrainDumpChars = overlay.BrainDumpChars
	if result.BrainDumpChars == 0 {
		result.BrainDumpChars = base.BrainDumpChars
	}

	result.MinCaptureLen = overlay.MinCaptureLen
	if result.MinCaptureLen == 0 {
		result.MinCaptureLen = base.MinCaptureLen
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
