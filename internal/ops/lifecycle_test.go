package ops

import (
	"testing"
	"time"

	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/item"
)

func agedItem(id string, cat item.Category, ageDays float64) *item.Item {
	created := time.Now().Add(-time.Duration(ageDays * 24 * float64(time.Hour))).Unix()
	return &item.Item{
		ID:        id,
		Content:   "aged " + id,
		Category:  cat,
		Status:    item.StatusFresh,
		CreatedAt: created,
		TouchedAt: created,
	}
}

func TestRunLifecycle(t *testing.T) {
	database := testDB(t)

	fresh := agedItem("01LC10000000000000000000AA", item.CategoryTask, 0)
	alive := agedItem("01LC20000000000000000000AA", item.CategoryTask, 3)
	quiet := agedItem("01LC30000000000000000000AA", item.CategoryTask, 10)
	archivable := agedItem("01LC40000000000000000000AA", item.CategoryTask, 40)
	done := agedItem("01LC50000000000000000000AA", item.CategoryTask, 40)
	done.Status = item.StatusDone
	if err := db.InsertItems(database, []*item.Item{fresh, alive, quiet, archivable, done}); err != nil {
		t.Fatalf("InsertItems() error = %v", err)
	}

	out, err := RunLifecycle(database, time.Now())
	if err != nil {
		t.Fatalf("RunLifecycle() error = %v", err)
	}
	if out.Scanned != 5 {
		t.Errorf("Scanned = %d, want 5", out.Scanned)
	}
	if out.Changed != 3 {
		t.Errorf("Changed = %d, want 3 (alive, quiet, archived)", out.Changed)
	}

	wantStatus := map[string]item.Status{
		fresh.ID:      item.StatusFresh,
		alive.ID:      item.StatusAlive,
		quiet.ID:      item.StatusQuiet,
		archivable.ID: item.StatusArchived,
		done.ID:       item.StatusDone, // sticky
	}
	for id, want := range wantStatus {
		got, err := db.GetItem(database, id)
		if err != nil {
			t.Fatalf("GetItem(%s) error = %v", id, err)
		}
		if got.Status != want {
			t.Errorf("item %s status = %q, want %q", id, got.Status, want)
		}
	}
}

func TestRunLifecycle_Idempotent(t *testing.T) {
	database := testDB(t)

	it := agedItem("01LC60000000000000000000AA", item.CategorySpark, 10)
	if err := db.InsertItems(database, []*item.Item{it}); err != nil {
		t.Fatalf("InsertItems() error = %v", err)
	}

	now := time.Now()
	first, err := RunLifecycle(database, now)
	if err != nil {
		t.Fatalf("first RunLifecycle() error = %v", err)
	}
	if first.Changed != 1 {
		t.Errorf("first Changed = %d, want 1 (spark past archive window)", first.Changed)
	}

	second, err := RunLifecycle(database, now)
	if err != nil {
		t.Fatalf("second RunLifecycle() error = %v", err)
	}
	if second.Changed != 0 {
		t.Errorf("second Changed = %d, want 0", second.Changed)
	}
}
