package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockReporter/internal/model"
)

// MinuteAPIFetcher implements Fetcher against the minute-bar REST API.
type MinuteAPIFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewMinuteAPIFetcher creates a new fetcher with optional proxy support.
func NewMinuteAPIFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *MinuteAPIFetcher {
	return &MinuteAPIFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *MinuteAPIFetcher) Name() string { return "minute-api" }

// apiBar is the expected JSON shape of one element of the "data" array.
type apiBar struct {
	Timestamp flexTime `json:"timestamp"`
	Open      float64  `json:"open"`
	High      float64  `json:"high"`
	Low       float64  `json:"low"`
	Close     float64  `json:"close"`
	Volume    float64  `json:"volume"`
}

type apiResponse struct {
	Data []apiBar `json:"data"`
}

func (f *MinuteAPIFetcher) FetchMinuteBars(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("start_date", start.Format("2006-01-02"))
	q.Set("end_date", end.Format("2006-01-02"))
	q.Set("interval", "1min")
	q.Set("api_key", f.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/minute?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.Bar, len(payload.Data))
	for i, b := range payload.Data {
		bars[i] = model.Bar{
			Time:   b.Timestamp.Time,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: int64(b.Volume),
		}
	}
	// Ensure chronological order
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// flexTime accepts the timestamp encodings seen from minute-bar providers:
// RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", or unix seconds/millis.
type flexTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '"' {
		return t.setUnix(string(data))
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	if err := t.setUnix(s); err == nil {
		return nil
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

func (t *flexTime) setUnix(s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("unrecognised timestamp %q", s)
	}
	// Anything past year 2286 in seconds is really milliseconds.
	if n > 9_999_999_999 {
		t.Time = time.UnixMilli(n)
	} else {
		t.Time = time.Unix(n, 0)
	}
	return nil
}
