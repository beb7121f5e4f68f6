package directory

import (
	"strings"

	"PrebloomScout/internal/model"
)

var depositaryPhrases = []string{
	"AMERICAN DEPOSITARY",
	"DEPOSITARY SHARES",
	"DEPOSITARY SHARE",
	"DEPOSITARY RECEIPT",
}

var depositaryWords = []string{"ADR", "ADRS", "ADS"}

func classifyType(name string, etf bool) model.SecurityType {
	switch {
	case etf:
		return model.SecurityETF
	case isDepositary(name):
		return model.SecurityADR
	case name == "":
		return model.SecurityOther
	default:
		return model.SecurityCommon
	}
}

// isDepositary matches depositary phrases anywhere and the short forms only
// as whole words, so names like "ADSTAR" are not misread.
func isDepositary(name string) bool {
	up := strings.ToUpper(name)
	for _, p := range depositaryPhrases {
		if strings.Contains(up, p) {
			return true
		}
	}
	words := strings.FieldsFunc(up, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z')
	})
	for _, w := range words {
		for _, d := range depositaryWords {
			if w == d {
				return true
			}
		}
	}
	return false
}
