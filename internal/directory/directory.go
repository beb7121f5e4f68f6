// Package directory holds the read-only table of exchange-listed securities
// and the loaders that build it from published symbol files.
package directory

import (
	"errors"
	"sort"

	"PrebloomScout/internal/model"
)

// ErrEmptyDirectory is returned when no securities are available. Validation
// cannot proceed without a directory, so callers treat it as fatal.
var ErrEmptyDirectory = errors.New("symbol directory is empty")

// Directory is an immutable symbol -> security table. Safe for concurrent reads.
type Directory struct {
	bySymbol map[string]model.ExchangeSecurity
}

// New builds a Directory, resolving duplicate symbols: an active listing beats
// an inactive one, then the most recent ListedAt wins, then the first seen.
func New(securities []model.ExchangeSecurity) (*Directory, error) {
	d := &Directory{bySymbol: make(map[string]model.ExchangeSecurity, len(securities))}
	for _, s := range securities {
		if s.Symbol == "" {
			continue
		}
		if cur, ok := d.bySymbol[s.Symbol]; ok && !supersedes(s, cur) {
			continue
		}
		d.bySymbol[s.Symbol] = s
	}
	if len(d.bySymbol) == 0 {
		return nil, ErrEmptyDirectory
	}
	return d, nil
}

func supersedes(next, cur model.ExchangeSecurity) bool {
	if next.Active != cur.Active {
		return next.Active
	}
	return next.ListedAt.After(cur.ListedAt)
}

// Lookup returns the security listed under symbol.
func (d *Directory) Lookup(symbol string) (model.ExchangeSecurity, bool) {
	if d == nil {
		return model.ExchangeSecurity{}, false
	}
	s, ok := d.bySymbol[symbol]
	return s, ok
}

// Name returns the security name for symbol, or "" if unknown.
func (d *Directory) Name(symbol string) string {
	s, _ := d.Lookup(symbol)
	return s.Name
}

// Len returns the number of distinct symbols.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.bySymbol)
}

// Securities returns all rows sorted by symbol.
func (d *Directory) Securities() []model.ExchangeSecurity {
	out := make([]model.ExchangeSecurity, 0, d.Len())
	if d == nil {
		return out
	}
	for _, s := range d.bySymbol {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
