// Package aggregator buckets confirmed ticker occurrences into recency windows.
package aggregator

import (
	"errors"
	"sort"
	"sync"
	"time"

	"PrebloomScout/internal/calculator"
	"PrebloomScout/internal/model"
)

// ErrInvalidNow is returned when the evaluation instant is missing.
var ErrInvalidNow = errors.New("aggregator: evaluation instant is missing")

// DefaultEvidenceCapacity is the per-window evidence cap used when none is configured.
const DefaultEvidenceCapacity = 3

// MaxTitleRunes bounds the length of an evidence title.
const MaxTitleRunes = 140

type entry struct {
	mu  sync.Mutex
	rec model.MentionRecord
}

// Aggregator is a run-scoped arena of MentionRecords keyed by symbol.
// Records are inserted lazily on first sight and each one is updated under
// its own lock, so Add is safe for concurrent use.
type Aggregator struct {
	now      time.Time
	capacity int

	mu      sync.RWMutex
	records map[string]*entry
}

// New creates an Aggregator evaluating ages against now.
func New(now time.Time, capacity int) (*Aggregator, error) {
	if now.IsZero() {
		return nil, ErrInvalidNow
	}
	if capacity < 0 {
		capacity = 0
	}
	return &Aggregator{
		now:      now.UTC(),
		capacity: capacity,
		records:  make(map[string]*entry),
	}, nil
}

// Now returns the evaluation instant.
func (a *Aggregator) Now() time.Time { return a.now }

// Add records one confirmed occurrence. It returns the window the occurrence
// was counted in, or false when it is beyond the analysis horizon.
func (a *Aggregator) Add(o model.Occurrence) (model.Window, bool) {
	if !calculator.WithinHorizon(a.now, o.Timestamp) {
		return 0, false
	}
	w, ok := calculator.AssignWindow(calculator.AgeDays(a.now, o.Timestamp))
	if !ok {
		return 0, false
	}

	e := a.entryFor(o.Symbol)
	e.mu.Lock()
	defer e.mu.Unlock()

	ws := &e.rec.Windows[w]
	ws.Count++
	if o.Subreddit != "" {
		e.rec.Subreddits[o.Subreddit]++
	}
	if len(ws.Evidence) < a.capacity && !hasSource(ws.Evidence, o.SourceID) {
		ws.Evidence = append(ws.Evidence, model.Evidence{
			SourceID:  o.SourceID,
			Subreddit: o.Subreddit,
			Title:     truncate(o.Title, MaxTitleRunes),
			Permalink: o.Permalink,
		})
	}
	return w, true
}

func (a *Aggregator) entryFor(symbol string) *entry {
	a.mu.RLock()
	e, ok := a.records[symbol]
	a.mu.RUnlock()
	if ok {
		return e
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok = a.records[symbol]; ok {
		return e
	}
	e = &entry{rec: model.MentionRecord{Symbol: symbol, Subreddits: make(map[string]int)}}
	a.records[symbol] = e
	return e
}

// Len returns the number of distinct tickers seen.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}

// Records returns deep copies of every record, sorted by symbol.
func (a *Aggregator) Records() []model.MentionRecord {
	a.mu.RLock()
	out := make([]model.MentionRecord, 0, len(a.records))
	for _, e := range a.records {
		e.mu.Lock()
		out = append(out, e.rec.Clone())
		e.mu.Unlock()
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func hasSource(list []model.Evidence, id string) bool {
	for _, ev := range list {
		if ev.SourceID == id {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
