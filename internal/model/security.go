package model

import "time"

// SecurityType is the listing category of an exchange security.
type SecurityType string

const (
	SecurityCommon SecurityType = "common"
	SecurityETF    SecurityType = "etf"
	SecurityADR    SecurityType = "adr"
	SecurityOther  SecurityType = "other"
)

// ExchangeSecurity is one row of the symbol directory.
type ExchangeSecurity struct {
	Symbol   string       `json:"symbol"`
	Name     string       `json:"name"`
	Exchange string       `json:"exchange"`
	Type     SecurityType `json:"type"`
	Industry string       `json:"industry,omitempty"`
	Tags     []string     `json:"tags,omitempty"`
	Active   bool         `json:"active"`
	ListedAt time.Time    `json:"listed_at,omitempty"`
}

// HasTag reports whether the security carries the given classification tag.
func (s *ExchangeSecurity) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
