package db

import (
	"testing"

	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/project"
)

func testProject(id string, createdAt int64) *project.Project {
	return &project.Project{
		ID:             id,
		Name:           "project " + id,
		Vision:         "a clear vision",
		ProjectCat:     project.CategoryIDWork,
		Phase:          "concept",
		Status:         project.StatusActive,
		CreatedAt:      createdAt,
		TouchedAt:      createdAt,
		VisionLockedAt: createdAt + int64(project.VisionLockDuration.Seconds()),
	}
}

func TestInsertAndGetProject(t *testing.T) {
	db := testDB(t)

	p := testProject("01PRJ0000000000000000000AA", 1000)
	p.NextAction = "sketch the first concept"
	p.Notes = "## kickoff\nsome notes"
	if err := InsertProject(db, p); err != nil {
		t.Fatalf("InsertProject() error = %v", err)
	}

	got, err := GetProject(db, p.ID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if got.Name != p.Name {
		t.Errorf("Name = %q, want %q", got.Name, p.Name)
	}
	if got.ProjectCat != project.CategoryIDWork {
		t.Errorf("ProjectCat = %q, want idwork", got.ProjectCat)
	}
	if got.Phase != "concept" {
		t.Errorf("Phase = %q, want concept", got.Phase)
	}
	if got.NextAction != p.NextAction {
		t.Errorf("NextAction = %q, want %q", got.NextAction, p.NextAction)
	}
	if got.VisionLockedAt != p.VisionLockedAt {
		t.Errorf("VisionLockedAt = %d, want %d", got.VisionLockedAt, p.VisionLockedAt)
	}
}

func TestGetProject_NotFound(t *testing.T) {
	db := testDB(t)

	_, err := GetProject(db, "01MISSING000000000000000AA")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetProject() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateProject(t *testing.T) {
	db := testDB(t)

	p := testProject("01PUP0000000000000000000AA", 1000)
	if err := InsertProject(db, p); err != nil {
		t.Fatalf("InsertProject() error = %v", err)
	}

	p.Phase = "development"
	p.NextAction = "order samples"
	p.TouchedAt = 2000
	if err := UpdateProject(db, p); err != nil {
		t.Fatalf("UpdateProject() error = %v", err)
	}

	got, err := GetProject(db, p.ID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if got.Phase != "development" {
		t.Errorf("Phase = %q, want development", got.Phase)
	}
	if got.TouchedAt != 2000 {
		t.Errorf("TouchedAt = %d, want 2000", got.TouchedAt)
	}
	if got.CreatedAt != 1000 {
		t.Errorf("CreatedAt = %d, want unchanged 1000", got.CreatedAt)
	}
	if got.VisionLockedAt != p.VisionLockedAt {
		t.Errorf("VisionLockedAt changed on update")
	}
}

func TestUpdateProject_NotFound(t *testing.T) {
	db := testDB(t)

	p := testProject("01GHOST000000000000000000A", 1000)
	err := UpdateProject(db, p)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("UpdateProject() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteProject(t *testing.T) {
	db := testDB(t)

	p := testProject("01PDEL000000000000000000AA", 1000)
	if err := InsertProject(db, p); err != nil {
		t.Fatalf("InsertProject() error = %v", err)
	}

	if err := DeleteProject(db, p.ID); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}

	_, err := GetProject(db, p.ID)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetProject() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting again reports not found.
	err = DeleteProject(db, p.ID)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("DeleteProject() second call error = %v, want ErrNotFound", err)
	}
}

func TestListProjects(t *testing.T) {
	db := testDB(t)

	active := testProject("01PLA0000000000000000000AA", 200)
	archived := testProject("01PLB0000000000000000000AA", 100)
	archived.Status = project.StatusArchived
	if err := InsertProject(db, active); err != nil {
		t.Fatalf("InsertProject() error = %v", err)
	}
	if err := InsertProject(db, archived); err != nil {
		t.Fatalf("InsertProject() error = %v", err)
	}

	onlyActive, err := ListProjects(db, false)
	if err != nil {
		t.Fatalf("ListProjects(false) error = %v", err)
	}
	if len(onlyActive) != 1 || onlyActive[0].ID != active.ID {
		t.Errorf("ListProjects(false) = %d projects, want only the active one", len(onlyActive))
	}

	all, err := ListProjects(db, true)
	if err != nil {
		t.Fatalf("ListProjects(true) error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListProjects(true) = %d projects, want 2", len(all))
	}
	if all[0].ID != active.ID {
		t.Errorf("all[0].ID = %q, want newest first", all[0].ID)
	}
}
