package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/forward/internal/ai"
	"github.com/hpungsan/forward/internal/config"
	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/mcp"
	"github.com/hpungsan/forward/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"capture": true, "inbox": true, "show": true, "search": true,
	"confirm": true, "category": true, "done": true,
	"archive": true, "restore": true, "recur": true,
	"start": true, "step": true,
	"promote": true, "project": true, "stats": true,
	"export": true, "import": true, "apikey": true,
	"serve": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___                              _
  | __|__ _ ___ __ __ __ __ _  _ _ | |
  | _|/ _ \ '_|\ V  V // _' || '_|/ _' |
  |_| \___/_|   \_/\_/ \__,_||_|  \__,_|

  Capture now, sort later

  Usage: forward <command> [options]
         forward --help

  MCP server mode requires piped input.`)
}

// buildDispatcher wires the AI pipeline. The config key wins; with no
// key there, the one stored via `forward apikey set` is used. Without
// either, the remote clients stay nil and classification runs on the
// local heuristic.
func buildDispatcher(database *sql.DB, cfg *config.Config) *ops.Dispatcher {
	key := cfg.AIAPIKey
	if key == "" {
		stored, err := db.GetSetting(database, db.SettingAPIKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read stored API key: %v\n", err)
		}
		key = stored
	}

	var classifier ai.Classifier
	var summarizer ai.Summarizer
	if key != "" {
		remote := ai.NewRemote(cfg.AIBaseURL, cfg.AIModel, key)
		classifier = remote
		summarizer = remote
	}
	return ops.NewDispatcher(database, classifier, summarizer, ops.NopNotifier{})
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".forward")

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cwd, err := os.Getwd()
	if err != nil {
		cwd = homeDir
	}

	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	dispatcher := buildDispatcher(database, cfg)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(database, cfg, dispatcher)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'forward --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(database, cfg, dispatcher, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
