package ops

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hpungsan/forward/internal/config"
	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/errors"
	"github.com/hpungsan/forward/internal/item"
	"github.com/hpungsan/forward/internal/project"
)

// CaptureInput contains parameters for the Capture operation.
type CaptureInput struct {
	Text      string // required (short text is silently discarded)
	ProjectID string // optional explicit project association
}

// CaptureOutput contains the result of the Capture operation.
type CaptureOutput struct {
	Items     []item.Summary `json:"items"`
	BrainDump bool           `json:"brain_dump"`
	Discarded bool           `json:"discarded"`
}

// Capture turns free text into stored items. Long text becomes one
// brain-dump item; anything else is split per line. Classification
// and summarization are handed to the dispatcher and never block.
func Capture(ctx context.Context, database *sql.DB, cfg *config.Config, d *Dispatcher, input CaptureInput) (*CaptureOutput, error) {
	text := strings.TrimSpace(input.Text)

	minLen := cfg.MinCaptureLen
	if minLen <= 0 {
		minLen = config.DefaultMinCaptureLen
	}
	// Too short to mean anything. Discarding is not an error.
	if utf8.RuneCountInString(text) < minLen {
		return &CaptureOutput{Items: []item.Summary{}, Discarded: true}, nil
	}

	proj, err := resolveProject(database, input.ProjectID, text)
	if err != nil {
		return nil, err
	}

	dumpChars := cfg.BrainDumpChars
	if dumpChars <= 0 {
		dumpChars = config.DefaultBrainDumpChars
	}

	var contents []string
	brainDump := utf8.RuneCountInString(text) > dumpChars
	if brainDump {
		contents = []string{text}
	} else {
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			contents = append(contents, line)
		}
	}
	if len(contents) == 0 {
		return &CaptureOutput{Items: []item.Summary{}, Discarded: true}, nil
	}

	now := time.Now().Unix()
	items := make([]*item.Item, 0, len(contents))
	for _, content := range contents {
		id, err := NewID()
		if err != nil {
			return nil, errors.NewInternal(err)
		}

		it := &item.Item{
			ID:        id,
			Content:   content,
			Status:    item.StatusFresh,
			CreatedAt: now,
			TouchedAt: now,
		}
		if proj != nil {
			// A resolved project settles the category deterministically.
			cat := item.CategoryTask
			it.Category = item.CategoryTask
			it.AICategory = &cat
			it.Confirmed = true
			it.ProjectID = &proj.ID
		} else {
			it.Category = item.CategoryUncategorised
			it.AIPending = !d.Online()
		}
		items = append(items, it)
	}

	if err := db.InsertItems(database, items); err != nil {
		return nil, err
	}

	if d.Online() {
		if proj == nil {
			for _, it := range items {
				d.Classify(it.ID)
			}
		}
		if brainDump {
			d.Summarize(items[0].ID)
		}
	}
	d.notify.ItemsCaptured(len(items), brainDump)

	summaries := make([]item.Summary, 0, len(items))
	for _, it := range items {
		summaries = append(summaries, it.ToSummary())
	}
	return &CaptureOutput{Items: summaries, BrainDump: brainDump}, nil
}

// resolveProject picks the project for a capture. An explicit id wins;
// otherwise the text is scanned for an inline @Name mention against
// active projects, longest name first so "@studio move" beats
// "@studio".
func resolveProject(database *sql.DB, explicitID, text string) (*project.Project, error) {
	if explicitID != "" {
		p, err := db.GetProject(database, explicitID)
		if err != nil {
			return nil, err
		}
		if p.Status == project.StatusArchived {
			return nil, errors.NewInvalidRequest("cannot capture into an archived project")
		}
		return p, nil
	}

	if !strings.Contains(text, "@") {
		return nil, nil
	}

	projects, err := db.ListProjects(database, false)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return len(projects[i].Name) > len(projects[j].Name)
	})

	lower := strings.ToLower(text)
	for _, p := range projects {
		if p.Name == "" {
			continue
		}
		if strings.Contains(lower, "@"+strings.ToLower(p.Name)) {
			return p, nil
		}
	}
	return nil, nil
}
