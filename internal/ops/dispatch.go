package ops

import (
	"context"
	"database/sql"
	"log"
	"sync"

	"github.com/hpungsan/forward/internal/ai"
	"github.com/hpungsan/forward/internal/db"
	"github.com/hpungsan/forward/internal/item"
)

// Notifier receives side-effect events. Events fire at most once per
// successful state change; failures are logged, never notified.
type Notifier interface {
	ItemsCaptured(count int, brainDump bool)
	ItemClassified(id string, category item.Category)
	ItemSummarized(id string)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) ItemsCaptured(int, bool)             {}
func (NopNotifier) ItemClassified(string, item.Category) {}
func (NopNotifier) ItemSummarized(string)                {}

// Dispatcher runs classification and summarization in the background
// so capture never blocks on the network. Workers re-find their item
// by id before writing and no-op when it is gone, archived, or already
// confirmed by the user.
type Dispatcher struct {
	db         *sql.DB
	classifier ai.Classifier // remote; nil when no API key is configured
	summarizer ai.Summarizer // nil when no API key is configured
	fallback   ai.Heuristic
	notify     Notifier

	mu     sync.Mutex
	online bool

	wg sync.WaitGroup
}

// NewDispatcher builds a dispatcher. classifier and summarizer may be
// nil; classification then runs on the keyword heuristic, which never
// fails, so items only sit pending after an explicit SetOnline(false).
func NewDispatcher(database *sql.DB, classifier ai.Classifier, summarizer ai.Summarizer, notify Notifier) *Dispatcher {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Dispatcher{
		db:         database,
		classifier: classifier,
		summarizer: summarizer,
		notify:     notify,
		online:     true,
	}
}

// Online reports the current connectivity signal.
func (d *Dispatcher) Online() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.online
}

// SetOnline records a connectivity change. An offline-to-online
// transition resubmits every pending item exactly once.
func (d *Dispatcher) SetOnline(online bool) {
	d.mu.Lock()
	wasOnline := d.online
	d.online = online
	d.mu.Unlock()

	if online && !wasOnline {
		d.ResubmitPending()
	}
}

// ResubmitPending queues classification for every item still waiting
// on a suggestion. The CLI calls this on online runs to pick up items
// left behind by earlier offline captures; each call sweeps once.
func (d *Dispatcher) ResubmitPending() {
	pending, err := db.PendingItems(d.db)
	if err != nil {
		log.Printf("pending sweep failed: %v", err)
		return
	}
	for _, it := range pending {
		d.Classify(it.ID)
	}
}

// Classify queues background classification for an item.
func (d *Dispatcher) Classify(id string) {
	d.wg.Add(1)
	go d.runClassify(id)
}

// Summarize queues background summarization for a brain-dump item.
// No-op when no summarizer is configured.
func (d *Dispatcher) Summarize(id string) {
	if d.summarizer == nil {
		return
	}
	d.wg.Add(1)
	go d.runSummarize(id)
}

// Flush blocks until all queued background work has finished. The CLI
// calls this before exiting.
func (d *Dispatcher) Flush() {
	d.wg.Wait()
}

// Steps returns a starter breakdown for content, always. The remote
// classifier serves it when it speaks the interface; failures and the
// offline case fall back to the keyword playbook. Runs synchronously:
// the user is waiting at a "help me start" surface.
func (d *Dispatcher) Steps(ctx context.Context, content, phase string, maxSteps int) []string {
	if s, ok := d.classifier.(ai.Stepper); ok && d.Online() {
		steps, err := s.Steps(ctx, content, phase, maxSteps)
		if err == nil && len(steps) > 0 {
			return steps
		}
		log.Printf("remote steps failed, using playbook: %v", err)
	}
	steps, _ := d.fallback.Steps(ctx, content, phase, maxSteps)
	return steps
}

// classify returns a category for content, always. Remote failures
// fall back to the keyword heuristic.
func (d *Dispatcher) classify(ctx context.Context, content string) item.Category {
	if d.classifier != nil {
		cat, err := d.classifier.Classify(ctx, content)
		if err == nil {
			return cat
		}
		log.Printf("remote classify failed, using heuristic: %v", err)
	}
	cat, _ := d.fallback.Classify(ctx, content)
	return cat
}

func (d *Dispatcher) runClassify(id string) {
	defer d.wg.Done()
	ctx := context.Background()

	it, err := db.GetItem(d.db, id)
	if err != nil {
		return
	}
	if it.Status == item.StatusArchived || it.Confirmed {
		return
	}

	cat := d.classify(ctx, it.Content)

	// Re-find: the user may have touched the item while the call ran.
	it, err = db.GetItem(d.db, id)
	if err != nil {
		return
	}
	if it.Status == item.StatusArchived || it.Confirmed {
		return
	}

	// The result is a suggestion only. It lives in AICategory until
	// Confirm copies it over; the item keeps aging as uncategorised.
	it.AICategory = &cat
	it.AIPending = false
	if err := db.UpdateItem(d.db, it); err != nil {
		log.Printf("saving classification for %s failed: %v", id, err)
		return
	}
	d.notify.ItemClassified(id, cat)
}

func (d *Dispatcher) runSummarize(id string) {
	defer d.wg.Done()
	ctx := context.Background()

	it, err := db.GetItem(d.db, id)
	if err != nil {
		return
	}
	if it.Status == item.StatusArchived {
		return
	}

	s, err := d.summarizer.Summarize(ctx, it.Content)
	if err != nil {
		log.Printf("summarization for %s failed: %v", id, err)
		return
	}

	it, err = db.GetItem(d.db, id)
	if err != nil {
		return
	}
	if it.Status == item.StatusArchived {
		return
	}

	original := it.Content
	it.RawContent = &original
	if s.Summary != "" {
		it.Content = s.Summary
	}
	if s.Title != "" {
		title := s.Title
		it.AITitle = &title
	}
	if s.Summary != "" {
		summary := s.Summary
		it.AISummary = &summary
	}
	if len(s.Actions) > 0 {
		it.AIActions = s.Actions
	}
	if err := db.UpdateItem(d.db, it); err != nil {
		log.Printf("saving summary for %s failed: %v", id, err)
		return
	}
	d.notify.ItemSummarized(id)
}
