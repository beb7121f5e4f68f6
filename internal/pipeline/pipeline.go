// Package pipeline runs one extraction, validation, aggregation and scoring pass.
package pipeline

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"PrebloomScout/internal/aggregator"
	"PrebloomScout/internal/extractor"
	"PrebloomScout/internal/model"
	"PrebloomScout/internal/scorer"
	"PrebloomScout/internal/validator"
)

// Observer receives pipeline events. Calls are made from a single goroutine.
type Observer interface {
	VerdictObserved(v model.Verdict)
	RunCompleted(stats Stats, elapsed time.Duration)
}

// Stats summarizes one run.
type Stats struct {
	Units        int
	Candidates   int
	Confirmed    int
	OutOfHorizon int
	Records      int
	Ranked       int
	Rejections   map[model.RejectReason]int
}

// Rejection is the number of times a symbol was rejected for one reason.
type Rejection struct {
	Symbol string
	Reason model.RejectReason
	Count  int
}

// Result is the outcome of a complete run.
type Result struct {
	Now      time.Time
	Entries  []model.ScoreEntry
	Stats    Stats
	Rejected []Rejection // sorted by count desc, then symbol, then reason
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers sets the extraction/validation fan-out. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithEvidenceCapacity sets the per-window evidence cap.
func WithEvidenceCapacity(n int) Option {
	return func(p *Pipeline) { p.capacity = n }
}

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// Pipeline wires the stages together. It holds no per-run state and may be reused.
type Pipeline struct {
	extractor *extractor.Extractor
	validator *validator.Validator
	scorer    *scorer.Scorer
	workers   int
	capacity  int
	observer  Observer
}

// New creates a Pipeline.
func New(ex *extractor.Extractor, v *validator.Validator, s *scorer.Scorer, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: ex,
		validator: v,
		scorer:    s,
		workers:   runtime.GOMAXPROCS(0),
		capacity:  aggregator.DefaultEvidenceCapacity,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type unitResult struct {
	candidates int
	verdicts   []model.Verdict
}

// Run processes units against now. Units are handled in (CreatedAt, ID)
// order so the output does not depend on input order or scheduling. A
// cancelled context discards all partial state.
func (p *Pipeline) Run(ctx context.Context, units []model.TextUnit, now time.Time) (*Result, error) {
	start := time.Now()
	agg, err := aggregator.New(now, p.capacity)
	if err != nil {
		return nil, err
	}

	ordered := make([]*model.TextUnit, len(units))
	for i := range units {
		ordered[i] = &units[i]
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	results, err := p.fanOut(ctx, ordered)
	if err != nil {
		return nil, err
	}

	stats := Stats{Units: len(ordered), Rejections: make(map[model.RejectReason]int)}
	rejected := make(map[Rejection]int)
	for i, u := range ordered {
		stats.Candidates += results[i].candidates
		for _, v := range results[i].verdicts {
			if p.observer != nil {
				p.observer.VerdictObserved(v)
			}
			if !v.Confirmed {
				stats.Rejections[v.Reason]++
				rejected[Rejection{Symbol: v.Symbol, Reason: v.Reason}]++
				continue
			}
			stats.Confirmed++
			if _, ok := agg.Add(model.Occurrence{
				Symbol:    v.Symbol,
				SourceID:  u.ID,
				Subreddit: u.Subreddit,
				Title:     u.Title,
				Permalink: u.Permalink,
				Timestamp: u.CreatedAt,
			}); !ok {
				stats.OutOfHorizon++
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := agg.Records()
	entries := p.scorer.Rank(records, p.validator.Name)
	stats.Records = len(records)
	stats.Ranked = len(entries)

	if p.observer != nil {
		p.observer.RunCompleted(stats, time.Since(start))
	}
	return &Result{
		Now:      agg.Now(),
		Entries:  entries,
		Stats:    stats,
		Rejected: sortRejections(rejected),
	}, nil
}

// fanOut extracts and validates every unit on a bounded worker pool. Results
// land in per-unit slots so their order matches ordered.
func (p *Pipeline) fanOut(ctx context.Context, ordered []*model.TextUnit) ([]unitResult, error) {
	results := make([]unitResult, len(ordered))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.process(ordered[i])
			}
		}()
	}

feed:
	for i := range ordered {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) process(u *model.TextUnit) unitResult {
	var r unitResult
	for c := range p.extractor.Extract(u) {
		r.candidates++
		r.verdicts = append(r.verdicts, p.validator.Validate(c))
	}
	return r
}

func sortRejections(m map[Rejection]int) []Rejection {
	out := make([]Rejection, 0, len(m))
	for k, n := range m {
		k.Count = n
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Reason < b.Reason
	})
	return out
}
