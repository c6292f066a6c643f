// Package progress tracks per-category completion counts for a bulk
// reindex run and exposes an aggregate percentage for status queries.
package progress

import (
	"sync"
	"sync/atomic"
	"time"
)

// counter holds the expected and completed counts for one category.
type counter struct {
	label string
	total int64
	done  atomic.Int64
}

// Total is one category's expected record count, in display order.
type Total struct {
	Label string
	Count int64
}

// Snapshot is a point-in-time view of a run, safe to serialize.
type Snapshot struct {
	Active      bool        `json:"active"`
	Categories  []Category  `json:"categories"`
	GrandTotal  int64       `json:"grand_total"`
	TotalDone   int64       `json:"total_done"`
	Percent     int         `json:"percent"`
	StartedAtMs int64       `json:"started_at_ms,omitempty"`
	NowMs       int64       `json:"now_ms"`
}

// Category is one label's counts within a Snapshot.
type Category struct {
	Label string `json:"label"`
	Total int64  `json:"total"`
	Done  int64  `json:"done"`
}

// Tracker accumulates completion counts between Start and Finish.
// Inc is lock-free; Start and Finish serialize against each other and
// against Snapshot. The zero value is an inactive tracker.
type Tracker struct {
	mu        sync.Mutex
	active    bool
	counters  []*counter
	byLabel   map[string]*counter
	total     int64
	startedAt time.Time
}

// NewTracker returns an inactive tracker.
func NewTracker() *Tracker {
	return &Tracker{byLabel: make(map[string]*counter)}
}

// Start begins a run with the given per-category totals, replacing any
// previous run's counts. Label order is preserved for display.
func (t *Tracker) Start(totals []Total) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counters = t.counters[:0]
	t.byLabel = make(map[string]*counter, len(totals))
	t.total = 0
	for _, tot := range totals {
		c := &counter{label: tot.Label, total: tot.Count}
		t.counters = append(t.counters, c)
		t.byLabel[tot.Label] = c
		t.total += tot.Count
	}
	t.startedAt = time.Now()
	t.active = true
}

// Inc records one completed record for the label, creating a counter with
// a zero total for labels the totals never named.
func (t *Tracker) Inc(label string) {
	t.mu.Lock()
	c := t.byLabel[label]
	if c == nil {
		c = &counter{label: label}
		t.counters = append(t.counters, c)
		t.byLabel[label] = c
	}
	t.mu.Unlock()

	c.done.Add(1)
}

// Finish ends the run. Every category is forced to its total so a
// completed run always reads 100 percent regardless of skipped records.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, c := range t.counters {
		c.done.Store(c.total)
	}
	t.active = false
}

// Active reports whether a run is in flight.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Snapshot returns the current counts. Percent is clamped to 100 so a
// category that over-reports (records added mid-run) cannot push the
// aggregate past completion; an empty run reads 100.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		Active:     t.active,
		GrandTotal: t.total,
		NowMs:      time.Now().UnixMilli(),
	}
	if !t.startedAt.IsZero() {
		snap.StartedAtMs = t.startedAt.UnixMilli()
	}

	for _, c := range t.counters {
		done := c.done.Load()
		snap.Categories = append(snap.Categories, Category{
			Label: c.label,
			Total: c.total,
			Done:  done,
		})
		snap.TotalDone += done
	}

	if t.total <= 0 {
		snap.Percent = 100
		return snap
	}
	pct := int(snap.TotalDone * 100 / t.total)
	if pct > 100 {
		pct = 100
	}
	snap.Percent = pct
	return snap
}
