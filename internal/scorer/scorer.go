// Package scorer ranks aggregated tickers by recent mention momentum.
package scorer

import (
	"sort"

	"PrebloomScout/internal/calculator"
	"PrebloomScout/internal/model"
)

// Config holds the ranking thresholds. Zero values of the optional fields
// disable the corresponding filter.
type Config struct {
	BaselineSpanDays float64 // length of the 31-90 window used to normalize the baseline
	MaxBaseline      float64 // weekly baseline above which a ticker is excluded
	MinRecent        int     // minimum 0-7 count, never below 1
	MaxTotal         int     // optional: exclude saturated tickers
	MinMomentumRatio float64 // optional: minimum smoothed 0-7 vs 31-90 ratio
	TopN             int     // optional: truncate the ranking
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		BaselineSpanDays: 90 - 31,
		MaxBaseline:      3.0,
		MinRecent:        1,
	}
}

// Scorer is a pure function from aggregate state to a ranked list.
type Scorer struct {
	cfg Config
}

// New creates a Scorer. Missing or invalid settings fall back to defaults.
func New(cfg Config) *Scorer {
	def := DefaultConfig()
	if cfg.BaselineSpanDays <= 0 {
		cfg.BaselineSpanDays = def.BaselineSpanDays
	}
	if cfg.MaxBaseline < 0 {
		cfg.MaxBaseline = def.MaxBaseline
	}
	if cfg.MinRecent < 1 {
		cfg.MinRecent = 1
	}
	return &Scorer{cfg: cfg}
}

// Config returns the effective configuration.
func (s *Scorer) Config() Config { return s.cfg }

// Score computes the entry for one record. The second result is false when
// the record is filtered out of the ranking.
func (s *Scorer) Score(rec *model.MentionRecord) (model.ScoreEntry, bool) {
	recent := rec.Count(model.Window0To7)
	mid := rec.Count(model.Window8To30)
	old := rec.Count(model.Window31To90)
	total := rec.Total()
	baseline := calculator.WeeklyRate(old, s.cfg.BaselineSpanDays)

	e := model.ScoreEntry{
		Ticker:        rec.Symbol,
		Recent:        recent,
		Mid:           mid,
		Old:           old,
		Total:         total,
		Baseline:      baseline,
		Score:         float64(recent) - baseline,
		MomentumShort: calculator.SmoothedRatio(recent, mid),
		MomentumLong:  calculator.SmoothedRatio(recent, old),
	}

	switch {
	case recent < s.cfg.MinRecent:
		return e, false
	case baseline > s.cfg.MaxBaseline:
		return e, false
	case s.cfg.MaxTotal > 0 && total > s.cfg.MaxTotal:
		return e, false
	case s.cfg.MinMomentumRatio > 0 && e.MomentumLong < s.cfg.MinMomentumRatio:
		return e, false
	}

	e.Tier = mapTier(e.Score)
	if len(rec.Subreddits) > 0 {
		e.Subreddits = make(map[string]int, len(rec.Subreddits))
		for k, v := range rec.Subreddits {
			e.Subreddits[k] = v
		}
	}
	if ev := rec.Windows[model.Window0To7].Evidence; len(ev) > 0 {
		e.Evidence = append([]model.Evidence(nil), ev...)
	}
	return e, true
}

// Rank scores every record and returns the kept entries ordered by score
// desc, then 0-7 count desc, then symbol asc. names resolves security names
// and may be nil.
func (s *Scorer) Rank(records []model.MentionRecord, names func(string) string) []model.ScoreEntry {
	out := make([]model.ScoreEntry, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i := range records {
		if _, dup := seen[records[i].Symbol]; dup {
			continue
		}
		seen[records[i].Symbol] = struct{}{}

		e, ok := s.Score(&records[i])
		if !ok {
			continue
		}
		if names != nil {
			e.Name = names(e.Ticker)
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Recent != b.Recent {
			return a.Recent > b.Recent
		}
		return a.Ticker < b.Ticker
	})

	if s.cfg.TopN > 0 && len(out) > s.cfg.TopN {
		out = out[:s.cfg.TopN]
	}
	return out
}
