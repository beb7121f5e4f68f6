package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PrebloomScout/internal/model"
	"PrebloomScout/internal/pipeline"
)

func newTestNotifier(url string) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = url
	n.RetryBase = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).Send("hello"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "hello", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSendWithRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).SendWithRetry(context.Background(), "hi", 3))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestNotifier(srv.URL).SendWithRetry(context.Background(), "hi", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 retries exhausted")
}

func TestStartPolling_DispatchesKnownChat(t *testing.T) {
	var (
		mu      sync.Mutex
		replies []string
		served  atomic.Bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if served.Swap(true) {
				time.Sleep(20 * time.Millisecond)
				w.Write([]byte(`{"ok":true,"result":[]}`))
				return
			}
			w.Write([]byte(`{"ok":true,"result":[
				{"update_id":1,"message":{"text":"/status","chat":{"id":42}}},
				{"update_id":2,"message":{"text":"/scan","chat":{"id":7}}}
			]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var p map[string]any
			_ = json.NewDecoder(r.Body).Decode(&p)
			mu.Lock()
			replies = append(replies, p["text"].(string))
			mu.Unlock()
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var handled []string
	done := make(chan struct{})
	go func() {
		newTestNotifier(srv.URL).StartPolling(ctx, func(cmd string) string {
			handled = append(handled, cmd)
			return "ok " + cmd
		})
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(replies) == 1
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []string{"/status"}, handled)
	assert.Equal(t, []string{"ok /status"}, replies)
}

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Now: time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC),
		Entries: []model.ScoreEntry{
			{Ticker: "XYZ", Name: "Xyz <Robotics>", Recent: 5, Score: 5, Tier: "emerging",
				Evidence: []model.Evidence{{Subreddit: "pennystocks", Title: "XYZ & friends"}}},
			{Ticker: "ABC", Recent: 5, Old: 3, Score: 4.644, Tier: "warming"},
		},
		Stats: pipeline.Stats{
			Units: 10, Candidates: 14, Confirmed: 11, Records: 2, Ranked: 2,
			Rejections: map[model.RejectReason]int{model.ReasonETF: 2, model.ReasonADR: 1},
		},
	}
}

func TestFormatRankedReport(t *testing.T) {
	msg := FormatRankedReport(sampleResult(), 1)
	assert.Contains(t, msg, "1. <b>$XYZ</b> Xyz &lt;Robotics&gt;")
	assert.Contains(t, msg, "score=5.00 [emerging]")
	assert.Contains(t, msg, "r/pennystocks: XYZ &amp; friends")
	assert.NotContains(t, msg, "$ABC")
	assert.Contains(t, msg, "and 1 more")

	empty := FormatRankedReport(&pipeline.Result{Now: time.Now()}, 10)
	assert.Contains(t, empty, "No emerging tickers")
}

func TestFormatRunStats(t *testing.T) {
	msg := FormatRunStats(sampleResult(), time.Date(2024, 6, 30, 12, 5, 0, 0, time.UTC))
	assert.Contains(t, msg, "Units: 10")
	assert.Contains(t, msg, "Confirmed: 11 (out of horizon 0)")
	assert.Less(t, strings.Index(msg, "ADR: 1"), strings.Index(msg, "ETF: 2"))
}
