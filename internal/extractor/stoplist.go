package extractor

import "strings"

// Stoplist holds bare tokens that match the ticker pattern but are ordinary
// words or forum shorthand. A Stoplist is never mutated after construction;
// With and Without return copies.
type Stoplist map[string]struct{}

// NewStoplist builds a stoplist from the given words (case-insensitive).
func NewStoplist(words ...string) Stoplist {
	s := make(Stoplist, len(words))
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

// DefaultStoplist returns a fresh copy of the built-in stoplist.
func DefaultStoplist() Stoplist {
	return NewStoplist(defaultStopwords...)
}

// Contains reports whether word is stopped.
func (s Stoplist) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// With returns a copy of s extended with words.
func (s Stoplist) With(words ...string) Stoplist {
	out := s.clone()
	for w := range NewStoplist(words...) {
		out[w] = struct{}{}
	}
	return out
}

// Without returns a copy of s with words removed.
func (s Stoplist) Without(words ...string) Stoplist {
	out := s.clone()
	for w := range NewStoplist(words...) {
		delete(out, w)
	}
	return out
}

func (s Stoplist) clone() Stoplist {
	out := make(Stoplist, len(s))
	for w := range s {
		out[w] = struct{}{}
	}
	return out
}

var defaultStopwords = []string{
	// single letters and pronouns
	"A", "I", "ME", "MY", "WE", "US", "HE", "YOU", "IT",
	// short function words
	"AM", "AN", "AS", "AT", "BE", "BY", "DO", "GO", "IF", "IN", "IS", "NO", "OF", "ON", "OR", "SO", "TO", "UP",
	"THE", "AND", "FOR", "WITH", "THIS", "THAT", "BUT", "NOT", "ALL", "ANY", "ARE", "CAN", "HAS", "HAD", "WAS",
	"WILL", "JUST", "LIKE", "WHAT", "WHEN", "WHY", "HOW", "WHO", "NEW", "NOW", "ONE", "OUT", "GET", "GOT", "ALSO",
	"VERY", "BEST", "GOOD", "BIG", "HIGH", "LOW", "FREE", "REAL", "NEWS", "MORE", "MOST", "SOME", "THEY", "THEM",
	// corporate, government and macro acronyms
	"CEO", "CFO", "CTO", "COO", "USA", "UK", "EU", "GDP", "CPI", "PPI", "IPO", "SEC", "FED", "FDA", "IRS", "DOJ",
	"FTC", "NYSE", "NASDAQ", "OTC", "ETF", "EPS", "PE", "ROI", "YTD", "QE", "USD", "EUR", "CAD", "EST", "PST",
	"AI", "EV", "API", "NFT", "BTC", "ETH",
	// forum shorthand
	"DD", "IMO", "IMHO", "TLDR", "TL", "DR", "EDIT", "WSB", "FOMO", "YOLO", "HODL", "ATH", "ATL", "ITM", "OTM",
	"ATM", "IV", "DTE", "LOL", "LMAO", "FYI", "TBH", "OP", "PSA", "FAQ", "DM", "RIP", "OK", "MOON", "BULL", "BEAR",
	"BUY", "SELL", "HOLD", "LONG", "PUT", "CALL", "CALLS", "PUTS", "GAIN", "LOSS", "PT",
}
