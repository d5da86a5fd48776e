package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/forward/internal/config"
	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/item"
)

func exportConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{dir}
	return cfg
}

func TestExport_WritesHeaderAndRecords(t *testing.T) {
	database := testDB(t)
	tmpDir := t.TempDir()
	cfg := exportConfig(tmpDir)

	active := agedItem("01EX10000000000000000000AA", item.CategoryTask, 0)
	archived := agedItem("01EX20000000000000000000AA", item.CategorySpark, 0)
	archived.Status = item.StatusArchived
	if err := db.InsertItems(database, []*item.Item{active, archived}); err != nil {
		t.Fatalf("InsertItems() error = %v", err)
	}
	if _, err := CreateProject(database, CreateProjectInput{Name: "Backup Me"}); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	path := filepath.Join(tmpDir, "backup.jsonl")
	out, err := Export(context.Background(), database, cfg, ExportInput{Path: path})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if out.Items != 2 || out.Projects != 1 {
		t.Errorf("Export() = %d items / %d projects, want 2/1", out.Items, out.Projects)
	}
	if out.Path != path {
		t.Errorf("Path = %q, want %q", out.Path, path)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		t.Fatal("export file is empty")
	}
	var header ExportHeader
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil {
		t.Fatalf("header unmarshal: %v", err)
	}
	if !header.ForwardExport || header.SchemaVersion != ExportSchemaVersion {
		t.Errorf("header = %+v, want marker and schema version", header)
	}

	items, projects := 0, 0
	for scanner.Scan() {
		var rec ExportRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("record unmarshal: %v", err)
		}
		switch rec.Type {
		case "item":
			items++
		case "project":
			projects++
		default:
			t.Errorf("unexpected record type %q", rec.Type)
		}
	}
	if items != 2 || projects != 1 {
		t.Errorf("file holds %d items / %d projects, want 2/1", items, projects)
	}
}

func TestExport_RejectsDisallowedPath(t *testing.T) {
	database := testDB(t)
	cfg := config.DefaultConfig()

	_, err := Export(context.Background(), database, cfg, ExportInput{Path: "/tmp/anywhere.jsonl"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Export(disallowed) error = %v, want ErrInvalidRequest", err)
	}
}

func TestImport_Merge(t *testing.T) {
	source := testDB(t)
	tmpDir := t.TempDir()
	cfg := exportConfig(tmpDir)

	first := agedItem("01IM10000000000000000000AA", item.CategoryTask, 0)
	second := agedItem("01IM20000000000000000000AA", item.CategoryReminder, 0)
	if err := db.InsertItems(source, []*item.Item{first, second}); err != nil {
		t.Fatalf("InsertItems() error = %v", err)
	}
	created, err := CreateProject(source, CreateProjectInput{Name: "Carried Over"})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	path := filepath.Join(tmpDir, "merge.jsonl")
	if _, err := Export(context.Background(), source, cfg, ExportInput{Path: path}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	// The target already holds one of the exported items.
	target := testDB(t)
	if err := db.InsertItems(target, []*item.Item{first}); err != nil {
		t.Fatalf("InsertItems(target) error = %v", err)
	}

	out, err := Import(target, cfg, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if out.Items != 1 || out.Projects != 1 || out.Skipped != 1 {
		t.Errorf("Import() = %d items / %d projects / %d skipped, want 1/1/1",
			out.Items, out.Projects, out.Skipped)
	}
	if len(out.Errors) != 0 {
		t.Errorf("Errors = %v, want none", out.Errors)
	}

	if _, err := db.GetItem(target, second.ID); err != nil {
		t.Errorf("GetItem(imported) error = %v", err)
	}
	if _, err := db.GetProject(target, created.Project.ID); err != nil {
		t.Errorf("GetProject(imported) error = %v", err)
	}
}

func TestImport_Replace(t *testing.T) {
	source := testDB(t)
	tmpDir := t.TempDir()
	cfg := exportConfig(tmpDir)

	exported := agedItem("01IM30000000000000000000AA", item.CategoryTask, 0)
	if err := db.InsertItems(source, []*item.Item{exported}); err != nil {
		t.Fatalf("InsertItems() error = %v", err)
	}
	path := filepath.Join(tmpDir, "replace.jsonl")
	if _, err := Export(context.Background(), source, cfg, ExportInput{Path: path}); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	target := testDB(t)
	resident := agedItem("01IM40000000000000000000AA", item.CategoryTask, 0)
	if err := db.InsertItems(target, []*item.Item{resident}); err != nil {
		t.Fatalf("InsertItems(target) error = %v", err)
	}

	out, err := Import(target, cfg, ImportInput{Path: path, Mode: ImportModeReplace})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if out.Items != 1 || out.Skipped != 0 {
		t.Errorf("Import() = %d items / %d skipped, want 1/0", out.Items, out.Skipped)
	}

	if _, err := db.GetItem(target, resident.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetItem(resident) error = %v, want ErrNotFound after replace", err)
	}
	if _, err := db.GetItem(target, exported.ID); err != nil {
		t.Errorf("GetItem(imported) error = %v", err)
	}
}

func TestImport_BadFiles(t *testing.T) {
	database := testDB(t)
	tmpDir := t.TempDir()
	cfg := exportConfig(tmpDir)

	notBackup := filepath.Join(tmpDir, "notes.jsonl")
	if err := os.WriteFile(notBackup, []byte(`{"hello":"world"}`+"\n"), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Import(database, cfg, ImportInput{Path: notBackup}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Import(not a backup) error = %v, want ErrInvalidRequest", err)
	}

	empty := filepath.Join(tmpDir, "empty.jsonl")
	if err := os.WriteFile(empty, nil, 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Import(database, cfg, ImportInput{Path: empty}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Import(empty) error = %v, want ErrInvalidRequest", err)
	}
}

func TestImport_CollectsLineErrors(t *testing.T) {
	database := testDB(t)
	tmpDir := t.TempDir()
	cfg := exportConfig(tmpDir)

	content := `{"_forward_export":true,"schema_version":"1.0","exported_at":1}
not json at all
{"type":"item"}
{"type":"item","item":{"id":"01IM50000000000000000000AA","content":"survives","category":"task","status":"fresh","created_at":1,"touched_at":1}}
`
	path := filepath.Join(tmpDir, "partial.jsonl")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	out, err := Import(database, cfg, ImportInput{Path: path})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if out.Items != 1 {
		t.Errorf("Items = %d, want the one valid record", out.Items)
	}
	if len(out.Errors) != 2 {
		t.Fatalf("Errors = %v, want 2 entries", out.Errors)
	}
	if out.Errors[0].Line != 2 || out.Errors[1].Line != 3 {
		t.Errorf("error lines = %d, %d; want 2 and 3", out.Errors[0].Line, out.Errors[1].Line)
	}
}
