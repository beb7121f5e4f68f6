// Package report serializes ranked entries to a columnar file.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"PrebloomScout/internal/model"
)

// Header is the CSV column order.
var Header = []string{
	"ticker", "security_name",
	"mentions_0_7", "mentions_8_30", "mentions_31_90", "mentions_total",
	"baseline_weekly", "mom_0_7_vs_8_30", "mom_0_7_vs_31_90",
	"score", "tier", "subreddit_breakdown", "sample_titles",
}

// WriteCSV writes entries in the given order.
func WriteCSV(w io.Writer, entries []model.ScoreEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			e.Ticker,
			e.Name,
			strconv.Itoa(e.Recent),
			strconv.Itoa(e.Mid),
			strconv.Itoa(e.Old),
			strconv.Itoa(e.Total),
			ff(e.Baseline),
			ff(e.MomentumShort),
			ff(e.MomentumLong),
			ff(e.Score),
			e.Tier,
			Breakdown(e.Subreddits),
			Samples(e.Evidence),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", e.Ticker, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes entries to path, creating parent directories.
func WriteFile(path string, entries []model.ScoreEntry) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := WriteCSV(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Breakdown renders subreddit counts as "sub:count", count desc then name.
func Breakdown(counts map[string]int) string {
	type kv struct {
		name  string
		count int
	}
	list := make([]kv, 0, len(counts))
	for k, v := range counts {
		list = append(list, kv{k, v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].name < list[j].name
	})
	parts := make([]string, len(list))
	for i, p := range list {
		parts[i] = p.name + ":" + strconv.Itoa(p.count)
	}
	return strings.Join(parts, " ")
}

// Samples renders evidence as "r/sub: title" joined by "; ".
func Samples(evidence []model.Evidence) string {
	parts := make([]string, 0, len(evidence))
	for _, ev := range evidence {
		title := ev.Title
		if title == "" {
			title = ev.Permalink
		}
		parts = append(parts, "r/"+ev.Subreddit+": "+title)
	}
	return strings.Join(parts, "; ")
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
