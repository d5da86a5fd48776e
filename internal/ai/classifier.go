// Package ai provides classification and summarization for captured
// content. A remote chat-completions client handles both when an API
// key is configured; a regex heuristic covers classification offline.
package ai

import (
	"context"
	"strings"

	"github.com/hpungsan/forward/internal/item"
)

// Classifier assigns a category to a piece of captured content.
type Classifier interface {
	Classify(ctx context.Context, content string) (item.Category, error)
}

// Summary is the condensed form of a brain dump.
type Summary struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Actions []string `json:"actions"`
}

// Summarizer condenses a long capture into a title, a short summary,
// and suggested actions.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (*Summary, error)
}

// Stepper breaks an item down into a short ordered list of minimal
// physical starter steps. phase is the owning project's phase, or ""
// for loose items; maxSteps caps the list length.
type Stepper interface {
	Steps(ctx context.Context, content, phase string, maxSteps int) ([]string, error)
}

// NormalizeCategory maps a raw model reply onto a classifiable
// category. Replies are lowercased and stripped of everything but
// letters before matching, so "Task.", " spark\n" and "REMINDER"
// all resolve. Unrecognized replies report ok=false.
func NormalizeCategory(raw string) (item.Category, bool) {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	cat := item.Category(b.String())
	if cat.Classifiable() {
		return cat, true
	}
	return item.CategoryUncategorised, false
}
