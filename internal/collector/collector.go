// Package collector gathers discussion text units from configured sources.
package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"PrebloomScout/internal/model"
)

// ErrNoUnits is returned when every source failed.
var ErrNoUnits = errors.New("collector: no source returned units")

// Collector merges units from several sources.
type Collector struct {
	Sources    []Source
	subreddits map[string]struct{} // empty means all
}

// NewCollector creates a Collector. subreddits optionally restricts the
// accepted communities, compared case-insensitively.
func NewCollector(sources []Source, subreddits []string) *Collector {
	c := &Collector{Sources: sources, subreddits: make(map[string]struct{}, len(subreddits))}
	for _, s := range subreddits {
		if s = normalizeSubreddit(s); s != "" {
			c.subreddits[s] = struct{}{}
		}
	}
	return c
}

// Collect fetches units created at or after since from every source. A
// failing source is logged and skipped; an error is returned only when all
// sources fail. Units are deduplicated by ID, first source wins.
func (c *Collector) Collect(ctx context.Context, since time.Time) ([]model.TextUnit, error) {
	if len(c.Sources) == 0 {
		return nil, ErrNoUnits
	}

	var (
		out    []model.TextUnit
		seen   = make(map[string]struct{})
		failed int
		errs   []error
	)
	for _, src := range c.Sources {
		units, err := src.FetchUnits(ctx, since)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			log.Warn().Err(err).Str("source", src.Name()).Msg("source fetch failed, skipping")
			continue
		}

		kept := 0
		for _, u := range units {
			if u.ID == "" || (!since.IsZero() && u.CreatedAt.Before(since)) {
				continue
			}
			if !c.accepts(u.Subreddit) {
				continue
			}
			if _, dup := seen[u.ID]; dup {
				continue
			}
			seen[u.ID] = struct{}{}
			u.CreatedAt = u.CreatedAt.UTC()
			out = append(out, u)
			kept++
		}
		log.Info().Str("source", src.Name()).Int("fetched", len(units)).Int("kept", kept).Msg("source collected")
	}

	if failed == len(c.Sources) {
		return nil, fmt.Errorf("%w: %w", ErrNoUnits, errors.Join(errs...))
	}
	return out, nil
}

func (c *Collector) accepts(subreddit string) bool {
	if len(c.subreddits) == 0 {
		return true
	}
	_, ok := c.subreddits[normalizeSubreddit(subreddit)]
	return ok
}

func normalizeSubreddit(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "/")
	s = strings.TrimPrefix(s, "r/")
	return strings.ToLower(s)
}
