package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"PrebloomScout/internal/model"
	"PrebloomScout/internal/pipeline"
)

// FormatRankedReport formats the top entries of a scan into a Telegram message.
func FormatRankedReport(res *pipeline.Result, topN int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🌱 <b>PrebloomScout</b> | %s\n\n", res.Now.Format("2006-01-02 15:04 MST")))

	if len(res.Entries) == 0 {
		b.WriteString("No emerging tickers this run.\n")
		b.WriteString("Try lowering the minimum recent mentions or raising the baseline threshold.\n")
		return b.String()
	}

	entries := res.Entries
	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	for i, e := range entries {
		b.WriteString(fmt.Sprintf("%d. <b>$%s</b> %s\n", i+1, e.Ticker, html.EscapeString(e.Name)))
		b.WriteString(fmt.Sprintf("   recent=%d mid=%d old=%d score=%.2f [%s]\n", e.Recent, e.Mid, e.Old, e.Score, e.Tier))
		if len(e.Evidence) > 0 {
			ev := e.Evidence[0]
			title := ev.Title
			if title == "" {
				title = ev.Permalink
			}
			b.WriteString(fmt.Sprintf("   r/%s: %s\n", html.EscapeString(ev.Subreddit), html.EscapeString(title)))
		}
	}
	if rest := len(res.Entries) - len(entries); rest > 0 {
		b.WriteString(fmt.Sprintf("\n…and %d more\n", rest))
	}
	return b.String()
}

// FormatRunStats formats run statistics for display.
func FormatRunStats(res *pipeline.Result, finishedAt time.Time) string {
	st := res.Stats
	var b strings.Builder
	b.WriteString("📦 <b>Last scan</b>\n\n")
	b.WriteString(fmt.Sprintf("Finished: %s\n", finishedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Units: %d\n", st.Units))
	b.WriteString(fmt.Sprintf("Candidates: %d\n", st.Candidates))
	b.WriteString(fmt.Sprintf("Confirmed: %d (out of horizon %d)\n", st.Confirmed, st.OutOfHorizon))
	b.WriteString(fmt.Sprintf("Tickers: %d, ranked %d\n", st.Records, st.Ranked))

	if len(st.Rejections) > 0 {
		reasons := make([]model.RejectReason, 0, len(st.Rejections))
		for r := range st.Rejections {
			reasons = append(reasons, r)
		}
		sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
		b.WriteString("Rejected:\n")
		for _, r := range reasons {
			b.WriteString(fmt.Sprintf("  %s: %d\n", html.EscapeString(string(r)), st.Rejections[r]))
		}
	}
	return b.String()
}
