package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"StockReporter/internal/calculator"
	"StockReporter/internal/model"
)

const (
	chartWidth  = 1200
	chartHeight = 600

	marginLeft   = 80.0
	marginRight  = 30.0
	marginTop    = 50.0
	marginBottom = 60.0

	gridLines = 5
)

// A-share convention: red for a rising bar, green for a falling one.
var (
	upColor   = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	downColor = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	gridColor = color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
	textColor = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
)

var errNoBars = errors.New("no bars to draw")

// DrawCandles renders bars as a candlestick PNG at path.
func DrawCandles(bars []model.Bar, symbol, path string) error {
	if len(bars) == 0 {
		return errNoBars
	}
	high, low, _ := calculator.Range(bars)
	if high == low {
		high += 0.01
		low -= 0.01
	}
	pad := (high - low) * 0.05
	high += pad
	low -= pad

	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	plotW := chartWidth - marginLeft - marginRight
	plotH := chartHeight - marginTop - marginBottom
	yOf := func(price float64) float64 {
		return marginTop + (high-price)/(high-low)*plotH
	}

	// Grid and price labels.
	dc.SetLineWidth(1)
	for i := 0; i <= gridLines; i++ {
		price := low + (high-low)*float64(i)/gridLines
		y := yOf(price)
		dc.SetColor(gridColor)
		dc.DrawLine(marginLeft, y, marginLeft+plotW, y)
		dc.Stroke()
		dc.SetColor(textColor)
		dc.DrawStringAnchored(fmt.Sprintf("%.2f", price), marginLeft-8, y, 1, 0.5)
	}

	step := plotW / float64(len(bars))
	bodyW := math.Max(1, step*0.6)

	for i, b := range bars {
		cx := marginLeft + step*(float64(i)+0.5)
		if b.Up() {
			dc.SetColor(upColor)
		} else {
			dc.SetColor(downColor)
		}
		dc.SetLineWidth(1)
		dc.DrawLine(cx, yOf(b.High), cx, yOf(b.Low))
		dc.Stroke()

		top, bottom := yOf(math.Max(b.Open, b.Close)), yOf(math.Min(b.Open, b.Close))
		dc.DrawRectangle(cx-bodyW/2, top, bodyW, math.Max(1, bottom-top))
		dc.Fill()
	}

	// Time labels, about eight across the axis.
	dc.SetColor(textColor)
	every := len(bars)/8 + 1
	for i := 0; i < len(bars); i += every {
		cx := marginLeft + step*(float64(i)+0.5)
		dc.DrawStringAnchored(bars[i].Time.Format("15:04"), cx, chartHeight-marginBottom+18, 0.5, 0.5)
	}

	dc.DrawStringAnchored(symbol+" 1-minute candlestick", chartWidth/2, marginTop/2, 0.5, 0.5)

	dc.SetColor(textColor)
	dc.DrawRectangle(marginLeft, marginTop, plotW, plotH)
	dc.Stroke()

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}
