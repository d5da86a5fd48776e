package item

// Category is the taxonomy label assigned to a captured item.
type Category string

const (
	CategoryTask          Category = "task"
	CategoryProject       Category = "project"
	CategorySpark         Category = "spark"
	CategoryReminder      Category = "reminder"
	CategoryUncategorised Category = "uncategorised"
)

// ClassifiableCategories is the set a classifier may return.
// "uncategorised" is reserved for "not yet classified" and is never
// a valid classification result.
var ClassifiableCategories = []Category{
	CategoryTask, CategorySpark, CategoryProject, CategoryReminder,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryTask, CategoryProject, CategorySpark, CategoryReminder, CategoryUncategorised:
		return true
	}
	return false
}

// Classifiable reports whether c is a valid classifier output.
func (c Category) Classifiable() bool {
	return c.Valid() && c != CategoryUncategorised
}

// Status is an item's lifecycle state.
type Status string

const (
	StatusFresh    Status = "fresh"
	StatusAlive    Status = "alive"
	StatusQuiet    Status = "quiet"
	StatusArchived Status = "archived"
	StatusDone     Status = "done"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusFresh, StatusAlive, StatusQuiet, StatusArchived, StatusDone:
		return true
	}
	return false
}

// Terminal reports whether s is sticky: time-based recomputation never
// overrides it, only an explicit restore does.
func (s Status) Terminal() bool {
	return s == StatusArchived || s == StatusDone
}

// Recurrence is an item's repeat cadence. The zero value means none.
type Recurrence string

const (
	RecurrenceNone    Recurrence = ""
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// recurrenceCycle is the toggle order, wrapping back to none.
var recurrenceCycle = []Recurrence{
	RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly,
}

// Valid reports whether r is a known recurrence.
func (r Recurrence) Valid() bool {
	for _, c := range recurrenceCycle {
		if r == c {
			return true
		}
	}
	return false
}

// Next returns the recurrence following r in the toggle cycle.
// Unknown values reset to none.
func (r Recurrence) Next() Recurrence {
	for i, c := range recurrenceCycle {
		if r == c {
			return recurrenceCycle[(i+1)%len(recurrenceCycle)]
		}
	}
	return RecurrenceNone
}

// Item represents a single captured unit of attention.
type Item struct {
	// ID is a ULID that uniquely identifies this item
	ID string `json:"id"`

	// Content is the current display text (overwritten by summarization)
	Content string `json:"content"`

	// RawContent holds the original captured text once summarization
	// replaced Content; nil otherwise
	RawContent *string `json:"raw_content,omitempty"`

	// Category is the user- or system-assigned taxonomy label
	Category Category `json:"category"`

	// AICategory is the classifier's suggestion; may differ from
	// Category until confirmed (nil while unclassified)
	AICategory *Category `json:"ai_category,omitempty"`

	// Confirmed is true once a human accepted AICategory into Category,
	// or the category was set deterministically at capture
	Confirmed bool `json:"confirmed"`

	// AIPending is true while classification is queued (captured
	// offline) and not yet resolved
	AIPending bool `json:"ai_pending"`

	// Status is the lifecycle state
	Status Status `json:"status"`

	// CreatedAt is the Unix timestamp when the item was captured (immutable)
	CreatedAt int64 `json:"created_at"`

	// TouchedAt is the Unix timestamp of the last user-driven interaction
	TouchedAt int64 `json:"touched_at"`

	// CompletedAt is set when a non-recurring item is completed (nullable)
	CompletedAt *int64 `json:"completed_at,omitempty"`

	// LastCompletedAt tracks recurring-task completions without leaving
	// the active set (nullable)
	LastCompletedAt *int64 `json:"last_completed_at,omitempty"`

	// ProjectID is an optional weak reference to a Project
	ProjectID *string `json:"project_id,omitempty"`

	// Recurring is the optional repeat cadence
	Recurring Recurrence `json:"recurring,omitempty"`

	// MvnaSteps is a cached "smallest next action" breakdown
	MvnaSteps []string `json:"mvna_steps,omitempty"`

	// MvnaCurrentStep is the progress cursor into MvnaSteps
	MvnaCurrentStep int `json:"mvna_current_step,omitempty"`

	// AITitle, AISummary, AIActions hold summarization outputs for
	// brain-dump captures (nullable / empty)
	AITitle   *string  `json:"ai_title,omitempty"`
	AISummary *string  `json:"ai_summary,omitempty"`
	AIActions []string `json:"ai_actions,omitempty"`
}

// Summary is an item's metadata projection for list surfaces.
type Summary struct {
	ID              string     `json:"id"`
	Content         string     `json:"content"`
	Category        Category   `json:"category"`
	AICategory      *Category  `json:"ai_category,omitempty"`
	Confirmed       bool       `json:"confirmed"`
	AIPending       bool       `json:"ai_pending"`
	Status          Status     `json:"status"`
	CreatedAt       int64      `json:"created_at"`
	TouchedAt       int64      `json:"touched_at"`
	CompletedAt     *int64     `json:"completed_at,omitempty"`
	LastCompletedAt *int64     `json:"last_completed_at,omitempty"`
	ProjectID       *string    `json:"project_id,omitempty"`
	Recurring       Recurrence `json:"recurring,omitempty"`
	AITitle         *string    `json:"ai_title,omitempty"`
}

// ToSummary converts an Item to its list projection.
func (it *Item) ToSummary() Summary {
	return Summary{
		ID:              it.ID,
		Content:         it.Content,
		Category:        it.Category,
		AICategory:      it.AICategory,
		Confirmed:       it.Confirmed,
		AIPending:       it.AIPending,
		Status:          it.Status,
		CreatedAt:       it.CreatedAt,
		TouchedAt:       it.TouchedAt,
		CompletedAt:     it.CompletedAt,
		LastCompletedAt: it.LastCompletedAt,
		ProjectID:       it.ProjectID,
		Recurring:       it.Recurring,
		AITitle:         it.AITitle,
	}
}
