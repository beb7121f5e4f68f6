package calculator

// WeeklyRate normalizes a count observed over spanDays to mentions per week.
// A non-positive span yields 0.
func WeeklyRate(count int, spanDays float64) float64 {
	if spanDays <= 0 {
		return 0
	}
	return float64(count) / spanDays * 7
}

// SmoothedRatio returns (a+1)/(b+1), which stays finite when b is zero.
func SmoothedRatio(a, b int) float64 {
	return float64(a+1) / float64(b+1)
}
