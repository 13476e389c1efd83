package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"StockReporter/internal/model"
)

// ErrNoData is returned by fetchers when the upstream answered but had no bars.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching minute bars.
type Fetcher interface {
	FetchMinuteBars(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error)
	Name() string
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
