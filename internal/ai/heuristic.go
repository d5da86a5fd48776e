package ai

import (
	"context"
	"fmt"
	"regexp"

	"github.com/hpungsan/forward/internal/item"
)

// Keyword patterns checked in order. First match wins; anything that
// matches nothing is a task.
var (
	sparkPattern    = regexp.MustCompile(`(?i)idea|thought|what if|maybe|imagine|feeling|noticed|spark`)
	projectPattern  = regexp.MustCompile(`(?i)client|project|phase|design|proposal|presentation|procurement|drawing|spec`)
	reminderPattern = regexp.MustCompile(`(?i)remind|deadline|due|call|meeting|at \d|by \d`)

	emailStepsPattern    = regexp.MustCompile(`(?i)email|send|reply|message`)
	callStepsPattern     = regexp.MustCompile(`(?i)call|phone|ring`)
	writingStepsPattern  = regexp.MustCompile(`(?i)document|write|draft|report|proposal`)
	researchStepsPattern = regexp.MustCompile(`(?i)research|find|look|search`)
)

// Heuristic is a keyword classifier used when no remote classifier is
// available. It is total: every input gets a category and the error
// is always nil.
type Heuristic struct{}

// Classify assigns a category by keyword match.
func (Heuristic) Classify(_ context.Context, content string) (item.Category, error) {
	switch {
	case sparkPattern.MatchString(content):
		return item.CategorySpark, nil
	case projectPattern.MatchString(content):
		return item.CategoryProject, nil
	case reminderPattern.MatchString(content):
		return item.CategoryReminder, nil
	default:
		return item.CategoryTask, nil
	}
}

// Steps picks a starter playbook for the item. A known project phase
// wins over the content keywords; the generic fallback always applies,
// so like Classify this is total.
func (Heuristic) Steps(_ context.Context, content, phase string, maxSteps int) ([]string, error) {
	var steps []string
	switch {
	case phase == "procurement":
		steps = []string{
			"Open your supplier list",
			"Find the first unconfirmed quote",
			"Send one follow-up message",
		}
	case phase == "site":
		steps = []string{
			"Open your site checklist",
			"Note the first unresolved item",
			"Call or message the relevant contractor",
		}
	case emailStepsPattern.MatchString(content):
		steps = []string{
			"Open your email and find the thread",
			"Read the last message only",
			"Type one sentence to start your reply",
		}
	case callStepsPattern.MatchString(content):
		steps = []string{
			"Find the contact in your phone",
			"Press call",
		}
	case writingStepsPattern.MatchString(content):
		steps = []string{
			"Open the document",
			"Read the last paragraph you wrote",
			"Write one sentence, any sentence",
		}
	case researchStepsPattern.MatchString(content):
		steps = []string{
			"Open one browser tab",
			"Type the first search term that comes to mind",
		}
	default:
		steps = []string{
			fmt.Sprintf("Open whatever you need for: %q", content),
			"Look at it for 30 seconds",
			"Do the single smallest first action",
		}
	}
	if maxSteps > 0 && len(steps) > maxSteps {
		steps = steps[:maxSteps]
	}
	return steps, nil
}
