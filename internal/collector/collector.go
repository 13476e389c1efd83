package collector

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"StockReporter/internal/model"
)

// DefaultLookback is the fetch window used when the caller leaves start and
// end unset.
const DefaultLookback = 24 * time.Hour

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Count int
	Bars  []model.Bar
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchMinuteBars(_ context.Context, _ string, _, end time.Time) ([]model.Bar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return GenerateMockBars(m.Price, m.Count, end), nil
}

// GenerateMockBars produces count one-minute bars ending at end, drifting
// slowly upward around basePrice.
func GenerateMockBars(basePrice float64, count int, end time.Time) []model.Bar {
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:   end.Add(-time.Duration(count-i) * time.Minute),
			Open:   p * 0.999,
			High:   p * 1.002,
			Low:    p * 0.997,
			Close:  p,
			Volume: 10000 + int64(i%7)*500,
		}
	}
	return bars
}

// Collector wraps a Fetcher and turns every failure into an empty series.
type Collector struct {
	Fetcher Fetcher
	Log     logrus.FieldLogger
	// Pacing is the minimum gap between requests in FetchMany. Zero disables it.
	Pacing time.Duration

	now func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, log logrus.FieldLogger, pacing time.Duration) *Collector {
	return &Collector{Fetcher: fetcher, Log: log, Pacing: pacing, now: time.Now}
}

// Fetch returns the minute bars for symbol between start and end. A zero end
// means now and a zero start means end minus DefaultLookback. Errors are
// logged and reported as an empty series.
func (c *Collector) Fetch(ctx context.Context, symbol string, start, end time.Time) (series model.BarSeries) {
	if end.IsZero() {
		end = c.clock()
	}
	if start.IsZero() {
		start = end.Add(-DefaultLookback)
	}

	series = model.BarSeries{Symbol: symbol, FetchedAt: c.clock()}
	defer func() {
		if r := recover(); r != nil {
			c.Log.WithFields(logrus.Fields{
				"symbol": symbol,
				"source": c.Fetcher.Name(),
				"panic":  r,
			}).Error("fetcher panicked")
			series.Bars = nil
		}
	}()

	bars, err := c.Fetcher.FetchMinuteBars(ctx, symbol, start, end)
	if err != nil {
		entry := c.Log.WithFields(logrus.Fields{"symbol": symbol, "source": c.Fetcher.Name()})
		if errors.Is(err, ErrNoData) {
			entry.Info("no bars returned")
		} else {
			entry.WithError(err).Error("fetch minute bars failed")
		}
		return series
	}
	series.Bars = bars
	c.Log.WithFields(logrus.Fields{
		"symbol": symbol,
		"source": c.Fetcher.Name(),
		"bars":   len(bars),
	}).Debug("fetched minute bars")
	return series
}

// FetchMany fetches each symbol in turn with the default window, waiting at
// least Pacing between requests. Every symbol appears in the result, empty
// when nothing was fetched.
func (c *Collector) FetchMany(ctx context.Context, symbols []string) map[string]model.BarSeries {
	limit := rate.Inf
	if c.Pacing > 0 {
		limit = rate.Every(c.Pacing)
	}
	limiter := rate.NewLimiter(limit, 1)

	out := make(map[string]model.BarSeries, len(symbols))
	for _, symbol := range symbols {
		if err := limiter.Wait(ctx); err != nil {
			out[symbol] = model.BarSeries{Symbol: symbol}
			continue
		}
		out[symbol] = c.Fetch(ctx, symbol, time.Time{}, time.Time{})
	}
	return out
}

func (c *Collector) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}
