package model

// ScoreEntry is one row of the ranked output.
type ScoreEntry struct {
	Ticker        string
	Name          string
	Recent        int // window 0-7
	Mid           int // window 8-30
	Old           int // window 31-90
	Total         int
	Baseline      float64 // weekly rate over 31-90
	Score         float64
	MomentumShort float64 // (0-7 + 1) / (8-30 + 1)
	MomentumLong  float64 // (0-7 + 1) / (31-90 + 1)
	Tier          string
	Subreddits    map[string]int
	Evidence      []Evidence
}
