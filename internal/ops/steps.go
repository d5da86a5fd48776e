package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/item"
)

// DefaultMaxSteps caps a starter breakdown when the caller does not.
const DefaultMaxSteps = 3

// HelpStartInput contains parameters for the HelpStart operation.
type HelpStartInput struct {
	ID       string // required
	MaxSteps int    // default: 3, max: 5
	Refresh  bool   // discard cached steps and generate again
}

// HelpStartOutput contains an item's starter breakdown and the
// progress cursor into it.
type HelpStartOutput struct {
	ID          string   `json:"id"`
	Steps       []string `json:"steps"`
	CurrentStep int      `json:"current_step"`
	Completed   bool     `json:"completed"`
}

// HelpStart returns the item's starter-step breakdown, generating and
// caching one when none exists. Generation never fails: the remote
// model is asked first and the keyword playbook covers the rest.
func HelpStart(ctx context.Context, database *sql.DB, d *Dispatcher, input HelpStartInput) (*HelpStartOutput, error) {
	it, err := getForAction(database, input.ID)
	if err != nil {
		return nil, err
	}
	if it.Status.Terminal() {
		return nil, errors.NewConflict("cannot start a done or archived item")
	}

	if len(it.MvnaSteps) > 0 && !input.Refresh {
		return stepsOutput(it), nil
	}

	maxSteps := input.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	if maxSteps > 5 {
		maxSteps = 5
	}

	// The owning project's phase steers the playbook.
	phase := ""
	if it.ProjectID != nil {
		if p, err := db.GetProject(database, *it.ProjectID); err == nil {
			phase = p.Phase
		}
	}

	it.MvnaSteps = d.Steps(ctx, it.Content, phase, maxSteps)
	it.MvnaCurrentStep = 0
	if err := db.UpdateItem(database, it); err != nil {
		return nil, err
	}
	return stepsOutput(it), nil
}

// AdvanceStep marks the current starter step done and moves the
// cursor. Finishing the last step counts as real contact with the
// item and touches it; advancing past the end is a no-op success.
func AdvanceStep(database *sql.DB, id string) (*HelpStartOutput, error) {
	it, err := getForAction(database, id)
	if err != nil {
		return nil, err
	}
	if len(it.MvnaSteps) == 0 {
		return nil, errors.NewInvalidRequest("item has no starter steps yet")
	}
	if it.MvnaCurrentStep >= len(it.MvnaSteps) {
		return stepsOutput(it), nil
	}

	it.MvnaCurrentStep++
	if it.MvnaCurrentStep >= len(it.MvnaSteps) {
		now := time.Now()
		it.TouchedAt = now.Unix()
		if !it.Status.Terminal() {
			it.Status = item.ComputeStatus(*it, now)
		}
	}
	if err := db.UpdateItem(database, it); err != nil {
		return nil, err
	}
	return stepsOutput(it), nil
}

func stepsOutput(it *item.Item) *HelpStartOutput {
	return &HelpStartOutput{
		ID:          it.ID,
		Steps:       it.MvnaSteps,
		CurrentStep: it.MvnaCurrentStep,
		Completed:   it.MvnaCurrentStep >= len(it.MvnaSteps),
	}
}
