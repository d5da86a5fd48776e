package ops

import (
	"testing"

	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/item"
)

func TestStats_Counts(t *testing.T) {
	database := testDB(t)

	task := agedItem("01ST10000000000000000000AA", item.CategoryTask, 0)
	spark := agedItem("01ST20000000000000000000AA", item.CategorySpark, 3)
	done := agedItem("01ST30000000000000000000AA", item.CategoryTask, 0)
	done.Status = item.StatusDone
	if err := db.InsertItems(database, []*item.Item{task, spark, done}); err != nil {
		t.Fatalf("InsertItems() error = %v", err)
	}

	if _, err := CreateProject(database, CreateProjectInput{Name: "Active One"}); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	parked, err := CreateProject(database, CreateProjectInput{Name: "Parked One"})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if _, err := ArchiveProject(database, parked.Project.ID); err != nil {
		t.Fatalf("ArchiveProject() error = %v", err)
	}

	out, err := Stats(database)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if out.ByStatus[item.StatusFresh] != 1 || out.ByStatus[item.StatusAlive] != 1 || out.ByStatus[item.StatusDone] != 1 {
		t.Errorf("ByStatus = %v, want fresh=1 alive=1 done=1", out.ByStatus)
	}
	if out.ByCategory[item.CategoryTask] != 2 || out.ByCategory[item.CategorySpark] != 1 {
		t.Errorf("ByCategory = %v, want task=2 spark=1", out.ByCategory)
	}
	if out.ActiveProjects != 1 || out.ArchivedProjects != 1 {
		t.Errorf("projects = %d active / %d archived, want 1/1",
			out.ActiveProjects, out.ArchivedProjects)
	}
	if out.BackupNudge {
		t.Error("BackupNudge = true for young data, want false")
	}
}

func TestStats_BackupNudgeFiresOnce(t *testing.T) {
	database := testDB(t)

	old := agedItem("01ST40000000000000000000AA", item.CategoryProject, 8)
	if err := db.InsertItems(database, []*item.Item{old}); err != nil {
		t.Fatalf("InsertItems() error = %v", err)
	}

	first, err := Stats(database)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if !first.BackupNudge {
		t.Error("BackupNudge = false on first call with week-old data, want true")
	}

	second, err := Stats(database)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if second.BackupNudge {
		t.Error("BackupNudge = true on second call, want a one-time nudge")
	}
}
