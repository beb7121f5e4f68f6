package validator

import "strings"

// ExclusionSet is the process-wide, read-only set of exclusion rules. Build it
// once at startup and pass it to New; it is never mutated afterwards.
type ExclusionSet struct {
	LargeCaps       map[string]struct{}
	ExcludeETFs     bool
	ExcludeADRs     bool
	ExcludeBiotech  bool
	BiotechKeywords []string // matched against industry and security name, upper-cased
	BiotechTags     []string // matched against ExchangeSecurity.Tags
}

// DefaultLargeCaps are the "usual suspects" that dominate discussion volume.
var DefaultLargeCaps = []string{
	// mega caps
	"AAPL", "MSFT", "AMZN", "GOOG", "GOOGL", "META", "NVDA", "AMD", "TSLA", "NFLX",
	"ORCL", "INTC", "CSCO", "IBM", "ADBE", "CRM", "QCOM", "AVGO", "TXN",
	// index proxies
	"SPY", "QQQ", "DIA", "IWM", "VTI",
	// legacy meme names
	"GME", "AMC", "BB", "NOK", "PLTR",
	// crypto proxies
	"COIN", "MARA", "RIOT",
}

// DefaultBiotechKeywords flag biotech and pharma issuers.
var DefaultBiotechKeywords = []string{
	"BIOTECH", "BIO TECH", "BIOSCIENCE", "BIOSCI", "BIOPHARMA", "BIO-PHARMA",
	"PHARMA", "PHARMACEUT", "THERAPEUT", "ONCO", "GENOM", "GENE", "IMMUNO",
	"VACCINE", "CLINICAL", "DRUG", "MEDICINES",
}

// DefaultBiotechTags flag biotech and pharma classification tags.
var DefaultBiotechTags = []string{"biotechnology", "pharmaceuticals"}

// DefaultExclusions returns a fresh ExclusionSet with every rule enabled.
func DefaultExclusions() ExclusionSet {
	return NewExclusions(DefaultLargeCaps, true, true, true, DefaultBiotechKeywords, DefaultBiotechTags)
}

// NewExclusions builds an ExclusionSet, copying and normalizing its inputs.
func NewExclusions(largeCaps []string, etfs, adrs, biotech bool, keywords, tags []string) ExclusionSet {
	ex := ExclusionSet{
		LargeCaps:      make(map[string]struct{}, len(largeCaps)),
		ExcludeETFs:    etfs,
		ExcludeADRs:    adrs,
		ExcludeBiotech: biotech,
	}
	for _, s := range largeCaps {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			ex.LargeCaps[s] = struct{}{}
		}
	}
	for _, k := range keywords {
		if k = strings.ToUpper(strings.TrimSpace(k)); k != "" {
			ex.BiotechKeywords = append(ex.BiotechKeywords, k)
		}
	}
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			ex.BiotechTags = append(ex.BiotechTags, t)
		}
	}
	return ex
}

// IsLargeCap reports whether symbol is on the curated large-cap list.
func (e *ExclusionSet) IsLargeCap(symbol string) bool {
	_, ok := e.LargeCaps[symbol]
	return ok
}
