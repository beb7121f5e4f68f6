// Package extractor finds ticker-shaped tokens in discussion text.
package extractor

import (
	"iter"
	"strings"
	"unicode/utf8"

	"PrebloomScout/internal/model"
)

// MaxSymbolLen is the longest symbol the extractor will emit.
const MaxSymbolLen = 5

// Extractor turns TextUnits into candidate symbols. It holds no per-call state
// and is safe for concurrent use.
type Extractor struct {
	stoplist Stoplist
}

// New creates an Extractor. A nil stoplist disables stopword suppression.
func New(stoplist Stoplist) *Extractor {
	if stoplist == nil {
		stoplist = Stoplist{}
	}
	return &Extractor{stoplist: stoplist}
}

// Extract returns a lazy, restartable sequence of candidates found in unit.
// Submissions are scanned title first, then body; comments body only.
func (e *Extractor) Extract(unit *model.TextUnit) iter.Seq[model.Candidate] {
	return func(yield func(model.Candidate) bool) {
		if unit == nil {
			return
		}
		if unit.Kind == model.KindSubmission && !e.scan(unit.Title, unit, yield) {
			return
		}
		e.scan(unit.Text, unit, yield)
	}
}

// Symbols collects the candidate symbols of unit in order.
func (e *Extractor) Symbols(unit *model.TextUnit) []string {
	var out []string
	for c := range e.Extract(unit) {
		out = append(out, c.Symbol)
	}
	return out
}

func (e *Extractor) scan(text string, unit *model.TextUnit, yield func(model.Candidate) bool) bool {
	if text == "" || !utf8.ValidString(text) {
		return true
	}
	inFence := false
	for line := range strings.Lines(text) {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		for _, field := range strings.Fields(stripInlineCode(line)) {
			if isLinkLike(field) {
				continue
			}
			for _, part := range strings.FieldsFunc(field, isSeparator) {
				sym, dollar, ok := parseToken(part)
				if !ok {
					continue
				}
				if !dollar && e.stoplist.Contains(sym) {
					continue
				}
				c := model.Candidate{
					Symbol:    sym,
					Dollar:    dollar,
					SourceID:  unit.ID,
					Timestamp: unit.CreatedAt,
				}
				if !yield(c) {
					return false
				}
			}
		}
	}
	return true
}

// parseToken trims surrounding punctuation and a possessive suffix, then
// requires the remainder to be 1-5 uppercase ASCII letters, optionally
// preceded by a single "$".
func parseToken(tok string) (sym string, dollar bool, ok bool) {
	tok = strings.Trim(tok, trimCutset)
	for _, suffix := range []string{"'s", "’s"} {
		if strings.HasSuffix(tok, suffix) {
			tok = strings.TrimSuffix(tok, suffix)
			break
		}
	}
	if strings.HasPrefix(tok, "$") {
		dollar = true
		tok = tok[1:]
	}
	if len(tok) == 0 || len(tok) > MaxSymbolLen {
		return "", false, false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < 'A' || tok[i] > 'Z' {
			return "", false, false
		}
	}
	return tok, dollar, true
}

const trimCutset = ".'’"

// isSeparator reports whether r ends a token. Only ASCII letters, digits,
// "$", apostrophes and "." join; digits stay in the token so that "3M" and
// "GME2" never qualify, and "." keeps "U.S." and "BRK.B" whole.
func isSeparator(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return false
	}
	switch r {
	case '$', '\'', '’', '.':
		return false
	}
	return true
}

// isLinkLike reports whether field is a URL or a subreddit/user reference.
func isLinkLike(field string) bool {
	lower := strings.ToLower(strings.TrimLeft(field, "(["))
	return strings.Contains(lower, "://") ||
		strings.HasPrefix(lower, "www.") ||
		strings.HasPrefix(lower, "http") ||
		strings.HasPrefix(lower, "r/") ||
		strings.HasPrefix(lower, "/r/") ||
		strings.HasPrefix(lower, "u/") ||
		strings.HasPrefix(lower, "/u/")
}

// stripInlineCode blanks out `code` spans on a single line.
func stripInlineCode(line string) string {
	if !strings.Contains(line, "`") {
		return line
	}
	var b strings.Builder
	b.Grow(len(line))
	inCode := false
	for _, r := range line {
		if r == '`' {
			inCode = !inCode
			b.WriteByte(' ')
			continue
		}
		if inCode {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
