package ops

import (
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/item"
	"github.com/hpungsan/forward/internal/project"
)

// PromoteInput contains parameters for the Promote operation.
type PromoteInput struct {
	ItemID     string // required
	Name       string // optional; default derived from the item content
	ProjectCat project.Category
}

// PromoteOutput contains the result of the Promote operation.
type PromoteOutput struct {
	Project project.Project `json:"project"`
	Item    item.Summary    `json:"item"`
}

// Promote turns an item into a project. The item content seeds the
// vision and the item is archived, but only once the project exists;
// a failed creation leaves the item untouched.
func Promote(database *sql.DB, input PromoteInput) (*PromoteOutput, error) {
	id := strings.TrimSpace(input.ItemID)
	if id == "" {
		return nil, errors.NewInvalidRequest("item_id is required")
	}

	it, err := db.GetItem(database, id)
	if err != nil {
		return nil, err
	}
	if it.Status == item.StatusArchived {
		return nil, errors.NewConflict("item is already archived")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = deriveProjectName(it.Content)
	}

	created, err := CreateProject(database, CreateProjectInput{
		Name:       name,
		Vision:     it.Content,
		ProjectCat: input.ProjectCat,
	})
	if err != nil {
		return nil, err
	}

	it.ProjectID = &created.Project.ID
	it.Status = item.StatusArchived
	it.TouchedAt = time.Now().Unix()
	if err := db.UpdateItem(database, it); err != nil {
		return nil, err
	}

	return &PromoteOutput{Project: created.Project, Item: it.ToSummary()}, nil
}

// deriveProjectName takes the first line of the content, capped at a
// readable length.
func deriveProjectName(content string) string {
	name := content
	if i := strings.IndexByte(name, '\n'); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) > 60 {
		name = strings.TrimSpace(string(runes[:60]))
	}
	return name
}
