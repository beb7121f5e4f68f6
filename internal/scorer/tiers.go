package scorer

// Tiers maps a momentum score to a label, highest threshold first.
var Tiers = []struct {
	MinScore float64
	Label    string
}{
	{10, "surging"},
	{5, "emerging"},
	{2, "warming"},
}

// DefaultTier is the label for scores below every threshold.
const DefaultTier = "early"

// mapTier maps a score to its tier label.
func mapTier(score float64) string {
	for _, t := range Tiers {
		if score >= t.MinScore {
			return t.Label
		}
	}
	return DefaultTier
}
