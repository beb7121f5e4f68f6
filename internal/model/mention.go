package model

import "time"

// Window is a fixed recency bucket.
type Window int

const (
	Window0To7 Window = iota
	Window8To30
	Window31To90
)

// WindowCount is the number of analysis windows.
const WindowCount = 3

// Windows lists all windows from most to least recent.
var Windows = [WindowCount]Window{Window0To7, Window8To30, Window31To90}

func (w Window) String() string {
	switch w {
	case Window0To7:
		return "0-7"
	case Window8To30:
		return "8-30"
	case Window31To90:
		return "31-90"
	default:
		return "unknown"
	}
}

// Occurrence is one confirmed ticker mention with its provenance.
type Occurrence struct {
	Symbol    string
	SourceID  string
	Subreddit string
	Title     string
	Permalink string
	Timestamp time.Time
}

// Evidence is an example discussion item backing a ticker's count.
type Evidence struct {
	SourceID  string `json:"source_id"`
	Subreddit string `json:"subreddit"`
	Title     string `json:"title"`
	Permalink string `json:"permalink"`
}

// WindowStat holds the count and bounded evidence list for one window.
type WindowStat struct {
	Count    int
	Evidence []Evidence
}

// MentionRecord is the run-scoped aggregate for one ticker.
type MentionRecord struct {
	Symbol     string
	Windows    [WindowCount]WindowStat
	Subreddits map[string]int
}

// Count returns the mention count for window w.
func (r *MentionRecord) Count(w Window) int {
	return r.Windows[w].Count
}

// Total returns the mention count across all windows.
func (r *MentionRecord) Total() int {
	n := 0
	for _, ws := range r.Windows {
		n += ws.Count
	}
	return n
}

// Clone returns a deep copy.
func (r *MentionRecord) Clone() MentionRecord {
	out := MentionRecord{Symbol: r.Symbol}
	for i, ws := range r.Windows {
		out.Windows[i].Count = ws.Count
		if len(ws.Evidence) > 0 {
			out.Windows[i].Evidence = append([]Evidence(nil), ws.Evidence...)
		}
	}
	if len(r.Subreddits) > 0 {
		out.Subreddits = make(map[string]int, len(r.Subreddits))
		for k, v := range r.Subreddits {
			out.Subreddits[k] = v
		}
	}
	return out
}
