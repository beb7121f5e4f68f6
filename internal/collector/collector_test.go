package collector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PrebloomScout/internal/model"
)

var base = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

func tu(id, sub string, ageDays int) model.TextUnit {
	return model.TextUnit{
		ID:        id,
		Subreddit: sub,
		Kind:      model.KindComment,
		Text:      "XYZ",
		CreatedAt: base.Add(-time.Duration(ageDays) * 24 * time.Hour),
	}
}

func ids(units []model.TextUnit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.ID
	}
	return out
}

func TestCollect_MergesFiltersAndDedups(t *testing.T) {
	a := &MockSource{SourceName: "a", Units: []model.TextUnit{
		tu("1", "pennystocks", 1),
		tu("2", "wallstreetbets", 2),
		tu("3", "PennyStocks", 100),
	}}
	b := &MockSource{SourceName: "b", Units: []model.TextUnit{
		tu("1", "pennystocks", 1),
		tu("4", "smallstreetbets", 3),
		{ID: "", Subreddit: "pennystocks", CreatedAt: base},
	}}
	c := NewCollector([]Source{a, b}, []string{"r/PennyStocks", "smallstreetbets"})

	got, err := c.Collect(context.Background(), base.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "4"}, ids(got))
}

func TestCollect_DegradesOnSingleFailure(t *testing.T) {
	bad := &MockSource{SourceName: "bad", Err: errors.New("boom")}
	good := &MockSource{Units: []model.TextUnit{tu("1", "stocks", 1)}}

	got, err := NewCollector([]Source{bad, good}, nil).Collect(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestCollect_AllFail(t *testing.T) {
	bad := &MockSource{SourceName: "bad", Err: errors.New("boom")}
	_, err := NewCollector([]Source{bad}, nil).Collect(context.Background(), time.Time{})
	assert.ErrorIs(t, err, ErrNoUnits)
	assert.Contains(t, err.Error(), "boom")

	_, err = NewCollector(nil, nil).Collect(context.Background(), time.Time{})
	assert.ErrorIs(t, err, ErrNoUnits)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.jsonl")
	var lines []string
	for _, u := range []model.TextUnit{tu("1", "stocks", 1), tu("2", "stocks", 200)} {
		b, err := json.Marshal(u)
		require.NoError(t, err)
		lines = append(lines, string(b))
	}
	lines = append(lines, "{not json", "")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))

	src := &FileSource{Path: path}
	got, err := src.FetchUnits(context.Background(), base.AddDate(0, 0, -90))
	require.NoError(t, err)
	require.Equal(t, []string{"1"}, ids(got))
	assert.True(t, got[0].CreatedAt.Equal(base.Add(-24*time.Hour)))

	_, err = (&FileSource{Path: filepath.Join(t.TempDir(), "missing")}).FetchUnits(context.Background(), time.Time{})
	assert.Error(t, err)
}

func TestFileSource_InfersMissingKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.jsonl")
	lines := []string{
		`{"id":"p1","subreddit":"stocks","title":"Why XYZ?","text":"","created_at":"2024-06-29T00:00:00Z"}`,
		`{"id":"t1_c1","subreddit":"stocks","title":"Why XYZ?","text":"ABC","created_at":"2024-06-29T00:00:00Z"}`,
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))

	got, err := (&FileSource{Path: path}).FetchUnits(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.KindSubmission, got[0].Kind)
	assert.Equal(t, model.KindComment, got[1].Kind)
}

func TestHTTPUnit_UnknownKindInferred(t *testing.T) {
	u := httpUnit{ID: "abc", Kind: "link", Title: "XYZ DD", CreatedUTC: base.Unix()}
	assert.Equal(t, model.KindSubmission, u.toModel().Kind)

	u = httpUnit{ID: "abc", Text: "XYZ", CreatedUTC: base.Unix()}
	assert.Equal(t, model.KindComment, u.toModel().Kind)
}

func TestHTTPSource_PagesAndAuth(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/v1/units", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "pennystocks", r.URL.Query().Get("subreddit"))
		assert.NotEmpty(t, r.URL.Query().Get("since"))

		page := httpPage{}
		if r.URL.Query().Get("after") == "" {
			page.Units = []httpUnit{{ID: "p1", Subreddit: "pennystocks", Kind: "submission", Title: "XYZ DD", CreatedUTC: base.Unix()}}
			page.Next = "c1"
		} else {
			assert.Equal(t, "c1", r.URL.Query().Get("after"))
			page.Units = []httpUnit{{ID: "c9", Subreddit: "pennystocks", Kind: "comment", Text: "ABC", CreatedUTC: base.Unix()}}
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, "secret", "", []string{"pennystocks"})
	got, err := src.FetchUnits(context.Background(), base.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Equal(t, []string{"p1", "c9"}, ids(got))
	assert.Equal(t, model.KindSubmission, got[0].Kind)
	assert.Equal(t, model.KindComment, got[1].Kind)
	assert.True(t, got[0].CreatedAt.Equal(base))
}

func TestHTTPSource_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, "", "", nil).FetchUnits(context.Background(), time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
