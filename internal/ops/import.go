package ops

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hpungsan/forward/internal/config"
	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/item"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeMerge   ImportMode = "merge"   // default: keep existing rows, add the rest
	ImportModeReplace ImportMode = "replace" // wipe the store, then load the backup
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: merge
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Items    int           `json:"items"`
	Projects int           `json:"projects"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// ImportError describes one bad line in a backup file.
type ImportError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Import loads a JSONL backup. Merge mode only inserts rows whose id
// is not already present; replace mode clears both tables first.
// Malformed lines are reported and skipped, never fatal.
func Import(database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeMerge
	}
	if input.Mode != ImportModeMerge && input.Mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: merge, replace")
	}

	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	// Header line first.
	if !scanner.Scan() {
		return nil, errors.NewInvalidRequest("file is empty, not a backup")
	}
	var header ExportHeader
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil || !header.ForwardExport {
		return nil, errors.NewInvalidRequest("file is not a backup export")
	}

	var records []ExportRecord
	var importErrors []ImportError
	line := 1
	for scanner.Scan() {
		line++
		var rec ExportRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			importErrors = append(importErrors, ImportError{Line: line, Message: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}
		switch {
		case rec.Type == "item" && rec.Item != nil && rec.Item.ID != "":
			records = append(records, rec)
		case rec.Type == "project" && rec.Project != nil && rec.Project.ID != "":
			records = append(records, rec)
		default:
			importErrors = append(importErrors, ImportError{Line: line, Message: "record is missing its payload"})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("reading import file: %w", err))
	}

	if input.Mode == ImportModeReplace {
		if err := db.ClearItems(database); err != nil {
			return nil, err
		}
		if err := db.ClearProjects(database); err != nil {
			return nil, err
		}
	}

	out := &ImportOutput{Errors: importErrors}
	for _, rec := range records {
		if rec.Type == "project" {
			if input.Mode == ImportModeMerge {
				if _, err := db.GetProject(database, rec.Project.ID); err == nil {
					out.Skipped++
					continue
				} else if !errors.Is(err, errors.ErrNotFound) {
					return nil, err
				}
			}
			if err := db.InsertProject(database, rec.Project); err != nil {
				return nil, err
			}
			out.Projects++
			continue
		}

		if input.Mode == ImportModeMerge {
			if _, err := db.GetItem(database, rec.Item.ID); err == nil {
				out.Skipped++
				continue
			} else if !errors.Is(err, errors.ErrNotFound) {
				return nil, err
			}
		}
		if err := db.InsertItems(database, []*item.Item{rec.Item}); err != nil {
			return nil, err
		}
		out.Items++
	}

	return out, nil
}
