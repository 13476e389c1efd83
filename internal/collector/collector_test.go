package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockReporter/internal/logging"
	"StockReporter/internal/model"
)

func quietLogger() logrus.FieldLogger {
	return logging.Discard()
}

func TestMinuteAPIFetcher_QueryAndDecode(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/minute", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{
			"symbol":     q.Get("symbol"),
			"start_date": q.Get("start_date"),
			"end_date":   q.Get("end_date"),
			"interval":   q.Get("interval"),
			"api_key":    q.Get("api_key"),
		}
		w.Header().Set("Content-Type", "application/json")
		// Out of order on purpose.
		fmt.Fprint(w, `{"data":[
			{"timestamp":"2024-03-01 09:32:00","open":10.1,"high":10.3,"low":10.0,"close":10.2,"volume":1500},
			{"timestamp":"2024-03-01 09:31:00","open":10.0,"high":10.2,"low":9.9,"close":10.1,"volume":1200.0}
		]}`)
	}))
	defer srv.Close()

	f := NewMinuteAPIFetcher(srv.URL+"/", "secret", "", 5*time.Second)
	start := time.Date(2024, 2, 29, 15, 0, 0, 0, time.Local)
	end := time.Date(2024, 3, 1, 15, 0, 0, 0, time.Local)

	bars, err := f.FetchMinuteBars(context.Background(), "600519", start, end)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, map[string]string{
		"symbol":     "600519",
		"start_date": "2024-02-29",
		"end_date":   "2024-03-01",
		"interval":   "1min",
		"api_key":    "secret",
	}, gotQuery)

	assert.True(t, bars[0].Time.Before(bars[1].Time))
	assert.Equal(t, 10.0, bars[0].Open)
	assert.Equal(t, int64(1200), bars[0].Volume)
	assert.Equal(t, int64(1500), bars[1].Volume)
}

func TestMinuteAPIFetcher_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewMinuteAPIFetcher(srv.URL, "", "", time.Second)
	_, err := f.FetchMinuteBars(context.Background(), "000001", time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFlexTime(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", `"2024-03-01T09:31:00+08:00"`, time.Date(2024, 3, 1, 1, 31, 0, 0, time.UTC)},
		{"space seconds", `"2024-03-01 09:31:00"`, time.Date(2024, 3, 1, 9, 31, 0, 0, time.Local)},
		{"space minutes", `"2024-03-01 09:31"`, time.Date(2024, 3, 1, 9, 31, 0, 0, time.Local)},
		{"unix seconds", `1709256660`, time.Unix(1709256660, 0)},
		{"unix millis", `1709256660000`, time.Unix(1709256660, 0)},
		{"unix string", `"1709256660"`, time.Unix(1709256660, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ft flexTime
			require.NoError(t, ft.UnmarshalJSON([]byte(tc.in)))
			assert.True(t, tc.want.Equal(ft.Time), "got %v want %v", ft.Time, tc.want)
		})
	}

	var ft flexTime
	assert.Error(t, ft.UnmarshalJSON([]byte(`"yesterday"`)))
	assert.NoError(t, ft.UnmarshalJSON([]byte(`null`)))
	assert.True(t, ft.IsZero())
}

func TestYahooSymbol(t *testing.T) {
	assert.Equal(t, "600519.SS", YahooSymbol("600519"))
	assert.Equal(t, "510300.SS", YahooSymbol("510300"))
	assert.Equal(t, "000001.SZ", YahooSymbol("000001"))
	assert.Equal(t, "300750.SZ", YahooSymbol("300750"))
	assert.Equal(t, "AAPL.US", YahooSymbol("AAPL.US"))
}

func TestYahooFetcher_SkipsNullBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/600519.SS", r.URL.Path)
		assert.Equal(t, "1m", r.URL.Query().Get("interval"))
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1709256720,1709256660,1709256780],
			"indicators":{"quote":[{"open":[10.1,10.0,null],"high":[10.3,10.2,null],
			"low":[10.0,9.9,null],"close":[10.2,10.1,null],"volume":[1500,1200,null]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher("", time.Second)
	f.BaseURL = srv.URL

	bars, err := f.FetchMinuteBars(context.Background(), "600519", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, int64(1709256660), bars[0].Time.Unix())
	assert.Equal(t, 10.2, bars[1].Close)
}

func TestCollector_FetchErrorBecomesEmpty(t *testing.T) {
	c := NewCollector(&MockFetcher{Err: errors.New("connection refused")}, quietLogger(), 0)

	series := c.Fetch(context.Background(), "000001", time.Time{}, time.Time{})
	assert.True(t, series.Empty())
	assert.Equal(t, "000001", series.Symbol)
}

type recordingFetcher struct {
	starts, ends []time.Time
	bars         []model.Bar
}

func (r *recordingFetcher) Name() string { return "recording" }

func (r *recordingFetcher) FetchMinuteBars(_ context.Context, _ string, start, end time.Time) ([]model.Bar, error) {
	r.starts = append(r.starts, start)
	r.ends = append(r.ends, end)
	return r.bars, nil
}

func TestCollector_DefaultWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 15, 0, 0, time.UTC)
	rf := &recordingFetcher{}
	c := NewCollector(rf, quietLogger(), 0)
	c.now = func() time.Time { return now }

	c.Fetch(context.Background(), "600519", time.Time{}, time.Time{})
	require.Len(t, rf.starts, 1)
	assert.Equal(t, now, rf.ends[0])
	assert.Equal(t, now.Add(-24*time.Hour), rf.starts[0])
}

func TestCollector_FetchMany(t *testing.T) {
	bars := GenerateMockBars(10, 5, time.Now())
	c := NewCollector(&MockFetcher{Bars: bars}, quietLogger(), time.Millisecond)

	out := c.FetchMany(context.Background(), []string{"600519", "000001"})
	require.Len(t, out, 2)
	assert.Equal(t, 5, out["600519"].Len())
	assert.Equal(t, 5, out["000001"].Len())
}

type panickingFetcher struct{}

func (panickingFetcher) Name() string { return "panicking" }

func (panickingFetcher) FetchMinuteBars(context.Context, string, time.Time, time.Time) ([]model.Bar, error) {
	var m map[string]int
	m["boom"] = 1
	return nil, nil
}

func TestCollector_FetcherPanicBecomesEmpty(t *testing.T) {
	c := NewCollector(panickingFetcher{}, quietLogger(), 0)

	var out map[string]model.BarSeries
	require.NotPanics(t, func() {
		out = c.FetchMany(context.Background(), []string{"600519", "000001"})
	})
	require.Len(t, out, 2)
	assert.True(t, out["600519"].Empty())
	assert.Equal(t, "000001", out["000001"].Symbol)
}

func TestCollector_FetchManyKeepsFailures(t *testing.T) {
	c := NewCollector(&MockFetcher{Err: ErrNoData}, quietLogger(), 0)

	out := c.FetchMany(context.Background(), []string{"600519"})
	require.Contains(t, out, "600519")
	assert.True(t, out["600519"].Empty())
}
