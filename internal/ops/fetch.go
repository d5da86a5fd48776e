package ops

import (
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/item"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID string // required
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	item.Item // embedded (copy, not pointer)
}

// Fetch retrieves a single item by ID. The returned status reflects
// the lifecycle policy as of now, even if the sweep has not persisted
// it yet.
func Fetch(database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	it, err := db.GetItem(database, id)
	if err != nil {
		return nil, err
	}

	out := &FetchOutput{Item: *it}
	out.Status = item.ComputeStatus(*it, time.Now())
	return out, nil
}
