package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockReporter/internal/model"
)

// linearBars builds n bars whose first open is first and last close is last.
func linearBars(n int, first, last float64) []model.Bar {
	bars := make([]model.Bar, n)
	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	step := (last - first) / float64(n)
	for i := range bars {
		open := first + step*float64(i)
		cls := open + step
		bars[i] = model.Bar{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   open,
			High:   cls + 0.5,
			Low:    open - 0.5,
			Close:  cls,
			Volume: 1000,
		}
	}
	return bars
}

func TestSummarize_Empty(t *testing.T) {
	_, ok := Summarize(nil)
	assert.False(t, ok)
}

func TestSummarize_OneHundredTwentyBars(t *testing.T) {
	bars := linearBars(120, 100, 105)

	st, ok := Summarize(bars)
	require.True(t, ok)
	assert.InDelta(t, 105.0, st.Latest, 1e-9)
	assert.InDelta(t, 100.0, st.Open, 1e-9)
	assert.InDelta(t, 5.0, st.ChangePct, 1e-9)
	assert.InDelta(t, 105.5, st.High, 1e-9)
	assert.InDelta(t, 99.5, st.Low, 1e-9)
	assert.Equal(t, int64(120000), st.TotalVolume)
	assert.Equal(t, 120, st.Bars)
}

func TestTrendWindows_Count(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{59, 0},
		{60, 1},
		{120, 2},
		{179, 2},
		{240, 4},
		{1000, 4},
	}
	for _, tt := range tests {
		got := TrendWindows(linearBars(tt.n, 100, 110))
		assert.Len(t, got, tt.want, "n=%d", tt.n)
		for i, w := range got {
			assert.Equal(t, i+1, w.Ago)
		}
	}
}

func TestTrendWindows_MostRecentFirst(t *testing.T) {
	bars := linearBars(120, 100, 105)
	// Make the last hour flat and the first hour carry the whole move.
	for i := 60; i < 120; i++ {
		bars[i].Open, bars[i].Close = 105, 105
	}
	bars[59].Close = 105

	got := TrendWindows(bars)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.0, got[0].ChangePct, 1e-9)
	assert.InDelta(t, 5.0, got[1].ChangePct, 1e-9)
}

func TestPercentChange_ZeroBase(t *testing.T) {
	assert.Equal(t, 0.0, PercentChange(0, 10))
	assert.InDelta(t, -10.0, PercentChange(10, 9), 1e-9)
}
