package project

import "time"

// VisionLockDuration is how long after creation a project's vision
// stays editable. After the lock passes the field is read-only in
// perpetuity; there is no operation to extend or re-lock it.
const VisionLockDuration = 48 * time.Hour

// Status is a project's lifecycle state. Projects are never
// auto-archived by time.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Valid reports whether s is a known project status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusArchived
}

// Category places a project in one of the fixed category tracks, each
// with its own ordered phase list.
type Category string

const (
	CategoryIDWork   Category = "idwork"
	CategoryLife     Category = "life"
	CategoryBusiness Category = "business"
	CategoryLearning Category = "learning"
	CategoryOpen     Category = "open"
)

// CategoryInfo describes a project category: display label and its
// ordered phases.
type CategoryInfo struct {
	Label       string
	Phases      []string
	PhaseLabels map[string]string
}

var categories = map[Category]CategoryInfo{
	CategoryIDWork: {
		Label:  "ID Work",
		Phases: []string{"concept", "development", "procurement", "site", "delivery"},
		PhaseLabels: map[string]string{
			"concept": "Concept", "development": "Development",
			"procurement": "Procurement", "site": "Site", "delivery": "Delivery",
		},
	},
	CategoryLife: {
		Label:  "Life",
		Phases: []string{"seed", "shaping", "inmotion", "integrating"},
		PhaseLabels: map[string]string{
			"seed": "Seed", "shaping": "Shaping",
			"inmotion": "In Motion", "integrating": "Integrating",
		},
	},
	CategoryBusiness: {
		Label:  "Business",
		Phases: []string{"idea", "validating", "building", "operating"},
		PhaseLabels: map[string]string{
			"idea": "Idea", "validating": "Validating",
			"building": "Building", "operating": "Operating",
		},
	},
	CategoryLearning: {
		Label:  "Learning",
		Phases: []string{"curious", "exploring", "practising", "embedding"},
		PhaseLabels: map[string]string{
			"curious": "Curious", "exploring": "Exploring",
			"practising": "Practising", "embedding": "Embedding",
		},
	},
	CategoryOpen: {
		Label:  "Open",
		Phases: []string{"start", "middle", "end"},
		PhaseLabels: map[string]string{
			"start": "Start", "middle": "Middle", "end": "End",
		},
	},
}

// Valid reports whether c is a known project category.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// Info returns the category descriptor. Unknown categories fall back
// to the open track.
func (c Category) Info() CategoryInfo {
	if info, ok := categories[c]; ok {
		return info
	}
	return categories[CategoryOpen]
}

// DefaultPhase returns the first phase of the category's track.
func (c Category) DefaultPhase() string {
	return c.Info().Phases[0]
}

// ValidPhase reports whether phase belongs to the category's ordered
// phase list.
func (c Category) ValidPhase(phase string) bool {
	for _, p := range c.Info().Phases {
		if p == phase {
			return true
		}
	}
	return false
}

// Categories returns all known categories in display order.
func Categories() []Category {
	return []Category{
		CategoryIDWork, CategoryLife, CategoryBusiness, CategoryLearning, CategoryOpen,
	}
}

// Project represents a longer-lived, phased initiative that items may
// associate with.
type Project struct {
	// ID is a ULID that uniquely identifies this project
	ID string `json:"id"`

	// Name is the display name, also matched against inline @mentions
	Name string `json:"name"`

	// Vision is the founding statement, time-locked after VisionLockDuration
	Vision string `json:"vision"`

	// ProjectCat places the project in a category track
	ProjectCat Category `json:"project_cat"`

	// Phase is the current phase within the category's track
	Phase string `json:"phase"`

	// NextAction is the one declared next step
	NextAction string `json:"next_action,omitempty"`

	// Notes holds freeform notes (markdown)
	Notes string `json:"notes,omitempty"`

	// Status is active or archived
	Status Status `json:"status"`

	// CreatedAt and TouchedAt are Unix timestamps
	CreatedAt int64 `json:"created_at"`
	TouchedAt int64 `json:"touched_at"`

	// VisionLockedAt is the Unix timestamp after which Vision becomes
	// immutable; set at creation to CreatedAt + VisionLockDuration
	VisionLockedAt int64 `json:"vision_locked_at"`
}

// VisionLocked reports whether the vision is read-only at now.
// Edits are allowed up to and including the lock instant and rejected
// strictly after it.
func (p *Project) VisionLocked(now time.Time) bool {
	return now.Unix() > p.VisionLockedAt
}

// Summary is a project's metadata projection for list surfaces.
type Summary struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	ProjectCat     Category `json:"project_cat"`
	Phase          string   `json:"phase"`
	NextAction     string   `json:"next_action,omitempty"`
	Status         Status   `json:"status"`
	CreatedAt      int64    `json:"created_at"`
	TouchedAt      int64    `json:"touched_at"`
	VisionLockedAt int64    `json:"vision_locked_at"`
}

// ToSummary converts a Project to its list projection.
func (p *Project) ToSummary() Summary {
	return Summary{
		ID:             p.ID,
		Name:           p.Name,
		ProjectCat:     p.ProjectCat,
		Phase:          p.Phase,
		NextAction:     p.NextAction,
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
		TouchedAt:      p.TouchedAt,
		VisionLockedAt: p.VisionLockedAt,
	}
}
