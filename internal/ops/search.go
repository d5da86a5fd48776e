package ops

import (
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/item"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query  string // required
	Limit  int    // default: 20, max: 100
	Offset int
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Items      []item.Summary `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

// Search finds non-archived items by content substring, newest first.
func Search(database *sql.DB, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}
	if input.Offset < 0 {
		return nil, errors.NewInvalidRequest("offset must not be negative")
	}
	limit := clampLimit(input.Limit)

	if _, err := RunLifecycle(database, time.Now()); err != nil {
		return nil, err
	}

	// One extra row tells us whether more pages exist without a
	// second count query.
	items, err := db.SearchItems(database, query, limit+1, input.Offset)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	summaries := make([]item.Summary, 0, len(items))
	for _, it := range items {
		summaries = append(summaries, it.ToSummary())
	}

	return &SearchOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  input.Offset,
			HasMore: hasMore,
			Total:   input.Offset + len(items),
		},
	}, nil
}
