package model

// RejectReason explains why a candidate did not become a confirmed ticker.
type RejectReason string

const (
	ReasonUnknown  RejectReason = "unknown symbol"
	ReasonETF      RejectReason = "ETF"
	ReasonADR      RejectReason = "ADR"
	ReasonBiotech  RejectReason = "biotech/pharma"
	ReasonLargeCap RejectReason = "large-cap usual suspect"
)

// Verdict is the validator's decision for a single candidate.
type Verdict struct {
	Symbol    string
	Confirmed bool
	Reason    RejectReason // empty when confirmed
}
