package ops

import (
	"database/sql"
	"time"

	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/item"
)

// LifecycleOutput contains the result of a lifecycle sweep.
type LifecycleOutput struct {
	Scanned int `json:"scanned"`
	Changed int `json:"changed"`
}

// RunLifecycle recomputes the status of every item and persists the
// changes in one transaction. Archived and done items never move.
// Every list-type read runs this first, so staleness is bounded by
// read frequency.
func RunLifecycle(database *sql.DB, now time.Time) (*LifecycleOutput, error) {
	items, err := db.AllItems(database)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]item.Status)
	for _, it := range items {
		next := item.ComputeStatus(*it, now)
		if next != it.Status {
			changes[it.ID] = next
		}
	}

	if err := db.ApplyStatuses(database, changes); err != nil {
		return nil, err
	}
	return &LifecycleOutput{Scanned: len(items), Changed: len(changes)}, nil
}
