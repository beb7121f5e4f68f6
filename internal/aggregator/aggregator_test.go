package aggregator

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PrebloomScout/internal/model"
)

var now = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

func occ(symbol, source string, ageDays int) model.Occurrence {
	return model.Occurrence{
		Symbol:    symbol,
		SourceID:  source,
		Subreddit: "pennystocks",
		Title:     "title " + source,
		Permalink: "https://reddit.com/" + source,
		Timestamp: now.Add(-time.Duration(ageDays) * 24 * time.Hour),
	}
}

func TestNew_ZeroNow(t *testing.T) {
	_, err := New(time.Time{}, 3)
	assert.ErrorIs(t, err, ErrInvalidNow)
}

func TestAdd_WindowsSumToAccepted(t *testing.T) {
	agg, err := New(now, 3)
	require.NoError(t, err)

	ages := []int{0, 2, 7, 8, 15, 30, 31, 60, 90, 91, 200}
	accepted := 0
	for i, age := range ages {
		if _, ok := agg.Add(occ("XYZ", fmt.Sprintf("s%d", i), age)); ok {
			accepted++
		}
	}
	assert.Equal(t, 9, accepted)

	recs := agg.Records()
	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, 3, r.Count(model.Window0To7))
	assert.Equal(t, 3, r.Count(model.Window8To30))
	assert.Equal(t, 3, r.Count(model.Window31To90))
	assert.Equal(t, accepted, r.Total())
	assert.Equal(t, accepted, r.Subreddits["pennystocks"])
}

func TestAdd_OutOfHorizonCreatesNoRecord(t *testing.T) {
	agg, err := New(now, 3)
	require.NoError(t, err)

	_, ok := agg.Add(occ("OLD", "s1", 120))
	assert.False(t, ok)
	assert.Equal(t, 0, agg.Len())
}

func TestAdd_HorizonIsExactDuration(t *testing.T) {
	agg, err := New(now, 3)
	require.NoError(t, err)

	edge := model.Occurrence{Symbol: "EDGE", SourceID: "s1", Timestamp: now.Add(-90 * 24 * time.Hour)}
	w, ok := agg.Add(edge)
	require.True(t, ok)
	assert.Equal(t, model.Window31To90, w)

	late := model.Occurrence{Symbol: "LATE", SourceID: "s2", Timestamp: now.Add(-(90*24*time.Hour + 12*time.Hour))}
	_, ok = agg.Add(late)
	assert.False(t, ok)

	recent := model.Occurrence{Symbol: "EDGE", SourceID: "s3", Timestamp: now.Add(-(7*24*time.Hour + 23*time.Hour))}
	w, ok = agg.Add(recent)
	require.True(t, ok)
	assert.Equal(t, model.Window0To7, w, "bucket boundaries use whole days")
	assert.Equal(t, 1, agg.Len())
}

func TestAdd_EvidenceDedupAndCapacity(t *testing.T) {
	agg, err := New(now, 2)
	require.NoError(t, err)

	agg.Add(occ("XYZ", "a", 1))
	agg.Add(occ("XYZ", "a", 1)) // same unit, counted but not re-listed
	agg.Add(occ("XYZ", "b", 2))
	agg.Add(occ("XYZ", "c", 3)) // capacity reached, earliest kept
	agg.Add(occ("XYZ", "a", 10))

	r := agg.Records()[0]
	assert.Equal(t, 4, r.Count(model.Window0To7))
	ids := []string{}
	for _, ev := range r.Windows[model.Window0To7].Evidence {
		ids = append(ids, ev.SourceID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
	require.Len(t, r.Windows[model.Window8To30].Evidence, 1)
	assert.Equal(t, "a", r.Windows[model.Window8To30].Evidence[0].SourceID)
}

func TestAdd_ZeroCapacityKeepsCounting(t *testing.T) {
	agg, err := New(now, 0)
	require.NoError(t, err)
	agg.Add(occ("XYZ", "a", 1))
	r := agg.Records()[0]
	assert.Equal(t, 1, r.Total())
	assert.Empty(t, r.Windows[model.Window0To7].Evidence)
}

func TestAdd_TruncatesTitle(t *testing.T) {
	agg, err := New(now, 3)
	require.NoError(t, err)
	o := occ("XYZ", "a", 1)
	o.Title = strings.Repeat("é", MaxTitleRunes+20)
	agg.Add(o)
	title := agg.Records()[0].Windows[model.Window0To7].Evidence[0].Title
	assert.Equal(t, MaxTitleRunes, len([]rune(title)))
}

func TestAdd_ConcurrentCountsNeverLost(t *testing.T) {
	agg, err := New(now, 3)
	require.NoError(t, err)

	const workers, perWorker = 8, 250
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				sym := []string{"AAA", "BBB"}[i%2]
				agg.Add(occ(sym, fmt.Sprintf("w%d-%d", w, i), i%90))
			}
		}(w)
	}
	wg.Wait()

	total := 0
	for _, r := range agg.Records() {
		total += r.Total()
		for _, ws := range r.Windows {
			assert.LessOrEqual(t, len(ws.Evidence), 3)
		}
	}
	assert.Equal(t, workers*perWorker, total)
}

func TestRecords_SortedDeepCopies(t *testing.T) {
	agg, err := New(now, 3)
	require.NoError(t, err)
	agg.Add(occ("ZZZ", "a", 1))
	agg.Add(occ("AAA", "b", 1))

	recs := agg.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "AAA", recs[0].Symbol)
	assert.Equal(t, "ZZZ", recs[1].Symbol)

	recs[0].Windows[model.Window0To7].Evidence[0].Title = "mutated"
	recs[0].Subreddits["x"] = 9
	again := agg.Records()
	assert.Equal(t, "title b", again[0].Windows[model.Window0To7].Evidence[0].Title)
	assert.NotContains(t, again[0].Subreddits, "x")
}
