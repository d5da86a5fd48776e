package ops

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/item"
	"github.com/hpungsan/forward/internal/project"
)

// CreateProjectInput contains parameters for the CreateProject operation.
type CreateProjectInput struct {
	Name       string // required
	Vision     string
	ProjectCat project.Category // default: open
	Phase      string           // default: first phase of the category
	NextAction string
	Notes      string
}

// CreateProjectOutput contains the result of the CreateProject operation.
type CreateProjectOutput struct {
	Project project.Project `json:"project"`
}

// CreateProject creates a project. The vision stays editable for a
// fixed window after creation and locks afterwards.
func CreateProject(database *sql.DB, input CreateProjectInput) (*CreateProjectOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("name is required")
	}

	cat := input.ProjectCat
	if cat == "" {
		cat = project.CategoryOpen
	}
	if !cat.Valid() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown project category: %s", cat))
	}

	phase := strings.TrimSpace(input.Phase)
	if phase == "" {
		phase = cat.DefaultPhase()
	}
	if !cat.ValidPhase(phase) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("phase %q is not part of the %s track", phase, cat))
	}

	id, err := NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	now := time.Now().Unix()
	p := &project.Project{
		ID:             id,
		Name:           name,
		Vision:         strings.TrimSpace(input.Vision),
		ProjectCat:     cat,
		Phase:          phase,
		NextAction:     strings.TrimSpace(input.NextAction),
		Notes:          input.Notes,
		Status:         project.StatusActive,
		CreatedAt:      now,
		TouchedAt:      now,
		VisionLockedAt: now + int64(project.VisionLockDuration.Seconds()),
	}

	if err := db.InsertProject(database, p); err != nil {
		return nil, err
	}
	return &CreateProjectOutput{Project: *p}, nil
}

// FetchProjectInput contains parameters for the FetchProject operation.
type FetchProjectInput struct {
	ID string // required
}

// FetchProjectOutput contains the result of the FetchProject operation.
type FetchProjectOutput struct {
	Project      project.Project `json:"project"`
	Items        []item.Summary  `json:"items"`
	VisionLocked bool            `json:"vision_locked"`
}

// FetchProject retrieves a project with its linked items.
func FetchProject(database *sql.DB, input FetchProjectInput) (*FetchProjectOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	p, err := db.GetProject(database, id)
	if err != nil {
		return nil, err
	}

	items, err := db.ItemsByProject(database, p.ID)
	if err != nil {
		return nil, err
	}

	summaries := make([]item.Summary, 0, len(items))
	for _, it := range items {
		summaries = append(summaries, it.ToSummary())
	}

	return &FetchProjectOutput{
		Project:      *p,
		Items:        summaries,
		VisionLocked: p.VisionLocked(time.Now()),
	}, nil
}

// ListProjectsInput contains parameters for the ListProjects operation.
type ListProjectsInput struct {
	IncludeArchived bool
}

// ListProjectsOutput contains the result of the ListProjects operation.
type ListProjectsOutput struct {
	Projects []project.Summary `json:"projects"`
}

// ListProjects returns project summaries newest first.
func ListProjects(database *sql.DB, input ListProjectsInput) (*ListProjectsOutput, error) {
	projects, err := db.ListProjects(database, input.IncludeArchived)
	if err != nil {
		return nil, err
	}

	summaries := make([]project.Summary, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, p.ToSummary())
	}
	return &ListProjectsOutput{Projects: summaries}, nil
}

// UpdateProjectInput contains parameters for the UpdateProject
// operation. Nil fields are left unchanged.
type UpdateProjectInput struct {
	ID         string // required
	Name       *string
	Vision     *string
	ProjectCat *project.Category
	Phase      *string
	NextAction *string
	Notes      *string
}

// UpdateProjectOutput contains the result of the UpdateProject operation.
type UpdateProjectOutput struct {
	Project project.Project `json:"project"`
}

// UpdateProject edits project fields. Vision edits are rejected
// strictly after the lock instant.
func UpdateProject(database *sql.DB, input UpdateProjectInput) (*UpdateProjectOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	p, err := db.GetProject(database, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if input.Vision != nil && *input.Vision != p.Vision {
		if p.VisionLocked(now) {
			return nil, errors.NewVisionLocked(p.ID)
		}
		p.Vision = strings.TrimSpace(*input.Vision)
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.NewInvalidRequest("name must not be empty")
		}
		p.Name = name
	}
	if input.ProjectCat != nil {
		if !input.ProjectCat.Valid() {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown project category: %s", *input.ProjectCat))
		}
		p.ProjectCat = *input.ProjectCat
		// Changing track invalidates the old phase unless the caller
		// also sets a new one.
		if input.Phase == nil && !p.ProjectCat.ValidPhase(p.Phase) {
			p.Phase = p.ProjectCat.DefaultPhase()
		}
	}
	if input.Phase != nil {
		phase := strings.TrimSpace(*input.Phase)
		if !p.ProjectCat.ValidPhase(phase) {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("phase %q is not part of the %s track", phase, p.ProjectCat))
		}
		p.Phase = phase
	}
	if input.NextAction != nil {
		p.NextAction = strings.TrimSpace(*input.NextAction)
	}
	if input.Notes != nil {
		p.Notes = *input.Notes
	}

	p.TouchedAt = now.Unix()
	if err := db.UpdateProject(database, p); err != nil {
		return nil, err
	}
	return &UpdateProjectOutput{Project: *p}, nil
}

// ArchiveProject parks a project. Its vision and notes stay readable;
// linked items keep their weak reference.
func ArchiveProject(database *sql.DB, id string) (*UpdateProjectOutput, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	p, err := db.GetProject(database, id)
	if err != nil {
		return nil, err
	}
	if p.Status == project.StatusArchived {
		return nil, errors.NewConflict("project is already archived")
	}

	p.Status = project.StatusArchived
	p.TouchedAt = time.Now().Unix()
	if err := db.UpdateProject(database, p); err != nil {
		return nil, err
	}
	return &UpdateProjectOutput{Project: *p}, nil
}

// RestoreProject brings an archived project back to active.
func RestoreProject(database *sql.DB, id string) (*UpdateProjectOutput, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	p, err := db.GetProject(database, id)
	if err != nil {
		return nil, err
	}
	if p.Status != project.StatusArchived {
		return nil, errors.NewConflict("project is not archived")
	}

	p.Status = project.StatusActive
	p.TouchedAt = time.Now().Unix()
	if err := db.UpdateProject(database, p); err != nil {
		return nil, err
	}
	return &UpdateProjectOutput{Project: *p}, nil
}

// DeleteProjectInput contains parameters for the DeleteProject operation.
type DeleteProjectInput struct {
	ID      string // required
	Confirm bool   // must be true; this is the only hard delete
}

// DeleteProjectOutput contains the result of the DeleteProject operation.
type DeleteProjectOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeleteProject hard-deletes a project. Items pointing at it keep
// their dangling reference; listings simply stop resolving it.
func DeleteProject(database *sql.DB, input DeleteProjectInput) (*DeleteProjectOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if !input.Confirm {
		return nil, errors.NewConfirmRequired("deleting a project is permanent; pass confirm to proceed")
	}

	if err := db.DeleteProject(database, id); err != nil {
		return nil, err
	}
	return &DeleteProjectOutput{Deleted: true, ID: id}, nil
}
