package calculator

import (
	"math"

	"StockReporter/internal/model"
)

// Range returns the highest high and lowest low across bars.
// ok is false when bars is empty.
func Range(bars []model.Bar) (high, low float64, ok bool) {
	if len(bars) == 0 {
		return 0, 0, false
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, true
}

// PercentChange returns (to - from) / from * 100, or 0 when from is zero.
func PercentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}
