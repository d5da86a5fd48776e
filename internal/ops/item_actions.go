package ops

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/item"
)

// ActionOutput is the common result of the single-item mutators.
type ActionOutput struct {
	Item item.Summary `json:"item"`
}

// getForAction loads an item for mutation.
func getForAction(database *sql.DB, id string) (*item.Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	return db.GetItem(database, id)
}

// saveAction persists a mutated item and projects it.
func saveAction(database *sql.DB, it *item.Item) (*ActionOutput, error) {
	if err := db.UpdateItem(database, it); err != nil {
		return nil, err
	}
	return &ActionOutput{Item: it.ToSummary()}, nil
}

// Confirm accepts the AI suggestion, copying it into the category.
// It is a one-way latch; confirming twice is a no-op success.
func Confirm(database *sql.DB, id string) (*ActionOutput, error) {
	it, err := getForAction(database, id)
	if err != nil {
		return nil, err
	}

	if it.AICategory != nil {
		it.Category = *it.AICategory
	}
	it.Confirmed = true
	it.AIPending = false
	it.TouchedAt = time.Now().Unix()
	return saveAction(database, it)
}

// SetCategory overrides the category directly. A user override also
// confirms: there is nothing left to review.
func SetCategory(database *sql.DB, id string, category item.Category) (*ActionOutput, error) {
	if !category.Classifiable() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("category must be one of: task, spark, project, reminder (got %q)", category))
	}

	it, err := getForAction(database, id)
	if err != nil {
		return nil, err
	}

	it.Category = category
	it.Confirmed = true
	it.AIPending = false
	it.TouchedAt = time.Now().Unix()
	return saveAction(database, it)
}

// Complete finishes an item. Recurring items stamp the completion and
// rejoin the active set; everything else parks as done.
func Complete(database *sql.DB, id string) (*ActionOutput, error) {
	it, err := getForAction(database, id)
	if err != nil {
		return nil, err
	}
	if it.Status == item.StatusDone {
		return nil, errors.NewConflict("item is already done")
	}

	now := time.Now()
	nowUnix := now.Unix()
	it.TouchedAt = nowUnix

	if it.Recurring != item.RecurrenceNone {
		it.LastCompletedAt = &nowUnix
		it.Status = item.ComputeStatus(*it, now)
		return saveAction(database, it)
	}

	it.CompletedAt = &nowUnix
	it.Status = item.StatusDone
	return saveAction(database, it)
}

// Archive parks an item. Allowed from any non-archived state.
func Archive(database *sql.DB, id string) (*ActionOutput, error) {
	it, err := getForAction(database, id)
	if err != nil {
		return nil, err
	}
	if it.Status == item.StatusArchived {
		return nil, errors.NewConflict("item is already archived")
	}

	it.Status = item.StatusArchived
	it.TouchedAt = time.Now().Unix()
	return saveAction(database, it)
}

// Restore brings an archived or done item back as fresh.
func Restore(database *sql.DB, id string) (*ActionOutput, error) {
	it, err := getForAction(database, id)
	if err != nil {
		return nil, err
	}
	if !it.Status.Terminal() {
		return nil, errors.NewConflict("only archived or done items can be restored")
	}

	it.Status = item.StatusFresh
	it.TouchedAt = time.Now().Unix()
	return saveAction(database, it)
}

// ToggleRecurrence advances the repeat cadence one step around the
// cycle: none, daily, weekly, monthly, back to none.
func ToggleRecurrence(database *sql.DB, id string) (*ActionOutput, error) {
	it, err := getForAction(database, id)
	if err != nil {
		return nil, err
	}

	it.Recurring = it.Recurring.Next()
	it.TouchedAt = time.Now().Unix()
	return saveAction(database, it)
}
