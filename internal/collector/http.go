package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"PrebloomScout/internal/model"
)

// HTTPSource reads units from a JSON export service.
//
//	GET {BaseURL}/api/v1/units?subreddit=X&since=<unix>&limit=N[&after=cursor]
//
// returns {"units": [...], "next": "cursor"}. Pages are followed until next is
// empty or MaxPages is reached.
type HTTPSource struct {
	BaseURL    string
	APIKey     string
	Subreddits []string // one query per subreddit; empty queries all
	PageSize   int
	MaxPages   int
	Client     *http.Client
}

// NewHTTPSource creates a source with optional proxy support.
func NewHTTPSource(baseURL, apiKey, proxyURL string, subreddits []string) *HTTPSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPSource{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Subreddits: subreddits,
		PageSize:   500,
		MaxPages:   20,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (s *HTTPSource) Name() string { return "http" }

// httpUnit is the expected JSON shape from the export service.
type httpUnit struct {
	ID         string `json:"id"`
	Subreddit  string `json:"subreddit"`
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	CreatedUTC int64  `json:"created_utc"`
	Permalink  string `json:"permalink"`
}

type httpPage struct {
	Units []httpUnit `json:"units"`
	Next  string     `json:"next"`
}

func (s *HTTPSource) FetchUnits(ctx context.Context, since time.Time) ([]model.TextUnit, error) {
	subs := s.Subreddits
	if len(subs) == 0 {
		subs = []string{""}
	}
	var out []model.TextUnit
	for _, sub := range subs {
		units, err := s.fetchSubreddit(ctx, sub, since)
		if err != nil {
			if sub != "" {
				return nil, fmt.Errorf("r/%s: %w", sub, err)
			}
			return nil, err
		}
		out = append(out, units...)
	}
	return out, nil
}

func (s *HTTPSource) fetchSubreddit(ctx context.Context, sub string, since time.Time) ([]model.TextUnit, error) {
	var out []model.TextUnit
	cursor := ""
	for page := 0; page < max(1, s.MaxPages); page++ {
		p, err := s.fetchPage(ctx, sub, since, cursor)
		if err != nil {
			return nil, err
		}
		for _, hu := range p.Units {
			out = append(out, hu.toModel())
		}
		if p.Next == "" {
			break
		}
		cursor = p.Next
	}
	return out, nil
}

func (s *HTTPSource) fetchPage(ctx context.Context, sub string, since time.Time, cursor string) (*httpPage, error) {
	q := url.Values{}
	if sub != "" {
		q.Set("subreddit", sub)
	}
	if !since.IsZero() {
		q.Set("since", strconv.FormatInt(since.Unix(), 10))
	}
	if s.PageSize > 0 {
		q.Set("limit", strconv.Itoa(s.PageSize))
	}
	if cursor != "" {
		q.Set("after", cursor)
	}
	endpoint := s.BaseURL + "/api/v1/units?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch units: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch units: status %d, body: %s", resp.StatusCode, string(body))
	}
	var p httpPage
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode units: %w", err)
	}
	return &p, nil
}

func (hu httpUnit) toModel() model.TextUnit {
	return model.TextUnit{
		ID:        hu.ID,
		Subreddit: hu.Subreddit,
		Kind:      model.ParseKind(hu.Kind, hu.ID, hu.Title),
		Title:     hu.Title,
		Text:      hu.Text,
		CreatedAt: time.Unix(hu.CreatedUTC, 0).UTC(),
		Permalink: hu.Permalink,
	}
}
