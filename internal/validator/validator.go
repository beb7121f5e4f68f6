// Package validator confirms candidate symbols against the symbol directory
// and the exclusion rules.
package validator

import (
	"strings"

	"PrebloomScout/internal/directory"
	"PrebloomScout/internal/model"
)

// Validator is stateless apart from read-only lookups and safe for concurrent use.
type Validator struct {
	dir        *directory.Directory
	exclusions ExclusionSet
}

// New creates a Validator. An empty directory is a fatal precondition failure.
func New(dir *directory.Directory, exclusions ExclusionSet) (*Validator, error) {
	if dir.Len() == 0 {
		return nil, directory.ErrEmptyDirectory
	}
	return &Validator{dir: dir, exclusions: exclusions}, nil
}

// Validate applies the checks in order; the first failing check supplies the reason.
func (v *Validator) Validate(c model.Candidate) model.Verdict {
	verdict := model.Verdict{Symbol: c.Symbol}

	sec, ok := v.dir.Lookup(c.Symbol)
	switch {
	case !ok || !sec.Active:
		verdict.Reason = model.ReasonUnknown
	case v.exclusions.ExcludeETFs && sec.Type == model.SecurityETF:
		verdict.Reason = model.ReasonETF
	case v.exclusions.ExcludeADRs && sec.Type == model.SecurityADR:
		verdict.Reason = model.ReasonADR
	case v.exclusions.ExcludeBiotech && v.isBiotech(&sec):
		verdict.Reason = model.ReasonBiotech
	case v.exclusions.IsLargeCap(c.Symbol):
		verdict.Reason = model.ReasonLargeCap
	default:
		verdict.Confirmed = true
	}
	return verdict
}

func (v *Validator) isBiotech(sec *model.ExchangeSecurity) bool {
	for _, tag := range v.exclusions.BiotechTags {
		if sec.HasTag(tag) {
			return true
		}
	}
	industry := strings.ToUpper(sec.Industry)
	name := strings.ToUpper(sec.Name)
	for _, k := range v.exclusions.BiotechKeywords {
		if strings.Contains(industry, k) || strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// Name returns the directory name for a confirmed symbol.
func (v *Validator) Name(symbol string) string {
	return v.dir.Name(symbol)
}
