package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Loader builds a Directory from the cache when fresh, otherwise from the fetcher.
type Loader struct {
	Fetcher Fetcher
	Cache   SnapshotCache // optional
	Clock   func() time.Time
}

// NewLoader creates a Loader. cache may be nil.
func NewLoader(fetcher Fetcher, cache SnapshotCache) *Loader {
	return &Loader{Fetcher: fetcher, Cache: cache, Clock: time.Now}
}

// Load returns a non-empty Directory or an error wrapping ErrEmptyDirectory.
func (l *Loader) Load(ctx context.Context) (*Directory, error) {
	if l.Cache != nil {
		snap, ok, err := l.Cache.Load(ctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("directory cache load failed, fetching")
		case ok && len(snap.Securities) > 0:
			log.Info().Int("rows", len(snap.Securities)).Time("fetched_at", snap.FetchedAt).Msg("directory loaded from cache")
			return New(snap.Securities)
		}
	}

	if l.Fetcher == nil {
		return nil, ErrEmptyDirectory
	}
	rows, err := l.Fetcher.FetchSecurities(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch directory from %s: %w (%w)", l.Fetcher.Name(), err, ErrEmptyDirectory)
	}
	dir, err := New(rows)
	if err != nil {
		return nil, err
	}
	log.Info().Str("source", l.Fetcher.Name()).Int("symbols", dir.Len()).Msg("directory fetched")

	if l.Cache != nil {
		if err := l.Cache.Save(ctx, &Snapshot{FetchedAt: l.Clock().UTC(), Securities: rows}); err != nil {
			log.Warn().Err(err).Msg("directory cache save failed")
		}
	}
	return dir, nil
}
