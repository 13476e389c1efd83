package calculator

import "StockReporter/internal/model"

const (
	// TrendWindowBars is the size of one trend window. At one bar per minute
	// this is one trading hour.
	TrendWindowBars = 60
	// MaxTrendWindows caps how many trailing windows are reported.
	MaxTrendWindows = 4
)

// Stats summarises a bar series.
type Stats struct {
	Latest      float64
	Open        float64
	High        float64
	Low         float64
	ChangePct   float64
	TotalVolume int64
	Bars        int
}

// WindowChange is the percent change inside one trailing window.
// Ago counts whole windows back from the end of the series, starting at 1.
type WindowChange struct {
	Ago       int
	ChangePct float64
}

// Summarize computes the headline statistics of bars. ok is false for an
// empty series.
func Summarize(bars []model.Bar) (Stats, bool) {
	if len(bars) == 0 {
		return Stats{}, false
	}
	high, low, _ := Range(bars)
	var volume int64
	for _, b := range bars {
		volume += b.Volume
	}
	latest := bars[len(bars)-1].Close
	open := bars[0].Open
	return Stats{
		Latest:      latest,
		Open:        open,
		High:        high,
		Low:         low,
		ChangePct:   PercentChange(open, latest),
		TotalVolume: volume,
		Bars:        len(bars),
	}, true
}

// TrendWindows splits the tail of bars into trailing windows of
// TrendWindowBars bars, most recent first. Only complete windows are
// counted, up to MaxTrendWindows.
func TrendWindows(bars []model.Bar) []WindowChange {
	n := len(bars)
	count := n / TrendWindowBars
	if count > MaxTrendWindows {
		count = MaxTrendWindows
	}
	out := make([]WindowChange, 0, count)
	for i := 0; i < count; i++ {
		start := max(0, n-(i+1)*TrendWindowBars)
		end := max(0, n-i*TrendWindowBars)
		if start >= end {
			continue
		}
		out = append(out, WindowChange{
			Ago:       i + 1,
			ChangePct: PercentChange(bars[start].Open, bars[end-1].Close),
		})
	}
	return out
}
