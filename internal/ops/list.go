package ops

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/item"
)

// ActiveStatuses is the default inbox view: everything not parked.
var ActiveStatuses = []item.Status{item.StatusFresh, item.StatusAlive, item.StatusQuiet}

// ListInput contains parameters for the List operation.
type ListInput struct {
	Statuses []item.Status // default: fresh, alive, quiet
	Limit    int           // default: 20, max: 100
	Offset   int
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []item.Summary `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

// List returns item summaries newest first, after a lifecycle sweep.
func List(database *sql.DB, input ListInput) (*ListOutput, error) {
	statuses := input.Statuses
	if len(statuses) == 0 {
		statuses = ActiveStatuses
	}
	for _, s := range statuses {
		if !s.Valid() {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown status: %s", s))
		}
	}
	if input.Offset < 0 {
		return nil, errors.NewInvalidRequest("offset must not be negative")
	}
	limit := clampLimit(input.Limit)

	if _, err := RunLifecycle(database, time.Now()); err != nil {
		return nil, err
	}

	total, err := db.CountItemsByStatus(database, statuses)
	if err != nil {
		return nil, err
	}
	items, err := db.ItemsByStatus(database, statuses, limit, input.Offset)
	if err != nil {
		return nil, err
	}

	summaries := make([]item.Summary, 0, len(items))
	for _, it := range items {
		summaries = append(summaries, it.ToSummary())
	}

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  input.Offset,
			HasMore: input.Offset+len(items) < total,
			Total:   total,
		},
	}, nil
}
