package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/forward/internal/config"
	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/item"
	"github.com/hpungsan/forward/internal/project"
)

// ExportSchemaVersion is written into the export header.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: ~/.forward/exports/forward-<timestamp>.jsonl
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Items      int    `json:"items"`
	Projects   int    `json:"projects"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader is the first line of a JSONL backup file.
type ExportHeader struct {
	ForwardExport bool   `json:"_forward_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
}

// ExportRecord is one backup line: a type tag plus exactly one payload.
type ExportRecord struct {
	Type    string           `json:"type"` // "item" or "project"
	Item    *item.Item       `json:"item,omitempty"`
	Project *project.Project `json:"project,omitempty"`
}

// Export writes a full backup (all items and projects, archived
// included) to a JSONL file. The write is atomic: a temp file is
// renamed into place, so a failed export never clobbers an earlier
// backup.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()
	exportedAt := now.Unix()

	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(now)
		if err != nil {
			return nil, err
		}
	}

	// Default paths go through validation too.
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Write to a temp file, then rename; a failure preserves any
	// existing file at the destination.
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	writeLine := func(v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return errors.NewInternal(err)
		}
		if _, err := file.Write(data); err != nil {
			return errors.NewInternal(err)
		}
		if _, err := file.Write([]byte("\n")); err != nil {
			return errors.NewInternal(err)
		}
		return nil
	}

	header := ExportHeader{
		ForwardExport: true,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    exportedAt,
	}
	if err := writeLine(header); err != nil {
		return nil, err
	}

	items, err := db.AllItems(database)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if ctx.Err() != nil {
			return nil, errors.NewInvalidRequest("export cancelled")
		}
		if err := writeLine(ExportRecord{Type: "item", Item: it}); err != nil {
			return nil, err
		}
	}

	projects, err := db.ListProjects(database, true)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if err := writeLine(ExportRecord{Type: "project", Project: p}); err != nil {
			return nil, err
		}
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	// Close before rename (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink destination.
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Items:      len(items),
		Projects:   len(projects),
		ExportedAt: exportedAt,
	}, nil
}

// defaultExportPath generates the default export path:
// ~/.forward/exports/forward-<timestamp>.jsonl
func defaultExportPath(now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("forward-%s.jsonl", now.Format("2006-01-02T150405"))
	return filepath.Join(dir, filename), nil
}
