package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"PrebloomScout/internal/model"
)

// Fetcher retrieves raw security rows from an authoritative source.
type Fetcher interface {
	FetchSecurities(ctx context.Context) ([]model.ExchangeSecurity, error)
	Name() string
}

// NasdaqTraderFetcher downloads the Nasdaq Trader symbol directory files.
type NasdaqTraderFetcher struct {
	NasdaqListedURL string
	OtherListedURL  string
	Client          *http.Client
}

// NewNasdaqTraderFetcher creates a fetcher with optional proxy support.
func NewNasdaqTraderFetcher(nasdaqURL, otherURL, proxyURL string) *NasdaqTraderFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if nasdaqURL == "" {
		nasdaqURL = NasdaqListedURL
	}
	if otherURL == "" {
		otherURL = OtherListedURL
	}
	return &NasdaqTraderFetcher{
		NasdaqListedURL: nasdaqURL,
		OtherListedURL:  otherURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *NasdaqTraderFetcher) Name() string { return "nasdaqtrader" }

// FetchSecurities returns Nasdaq-listed rows followed by other-listed rows, so
// the Nasdaq record is kept when both files list a symbol.
func (f *NasdaqTraderFetcher) FetchSecurities(ctx context.Context) ([]model.ExchangeSecurity, error) {
	nasdaq, err := f.fetchFile(ctx, f.NasdaqListedURL, ParseNasdaqListed)
	if err != nil {
		return nil, fmt.Errorf("nasdaqlisted: %w", err)
	}
	other, err := f.fetchFile(ctx, f.OtherListedURL, ParseOtherListed)
	if err != nil {
		return nil, fmt.Errorf("otherlisted: %w", err)
	}
	return append(nasdaq, other...), nil
}

func (f *NasdaqTraderFetcher) fetchFile(ctx context.Context, u string, parse func(io.Reader) ([]model.ExchangeSecurity, error)) ([]model.ExchangeSecurity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return parse(resp.Body)
}
