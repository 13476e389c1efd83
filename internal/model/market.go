package model

import "time"

// Bar represents one traded minute.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Up reports whether the bar closed at or above its open.
func (b Bar) Up() bool { return b.Close >= b.Open }

// BarSeries holds the chronologically ordered bars fetched for one symbol.
// An empty series means no data was available and is not an error.
type BarSeries struct {
	Symbol    string
	Bars      []Bar
	FetchedAt time.Time
}

// Empty reports whether the series carries no bars.
func (s BarSeries) Empty() bool { return len(s.Bars) == 0 }

// Len returns the number of bars.
func (s BarSeries) Len() int { return len(s.Bars) }
