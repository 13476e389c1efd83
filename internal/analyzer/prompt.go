package analyzer

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"StockReporter/internal/calculator"
	"StockReporter/internal/model"
)

// SystemPrompt is the persona sent as the system message.
const SystemPrompt = "You are a professional equity analyst who reads markets through Wyckoff method price and volume behaviour."

const promptTemplate = `%s
Analyse the following 1-minute candlestick data for this stock, focusing on:
1. Supply and demand balance
2. Key Wyckoff events: Spring, Upthrust (UT) and Last Point of Support (LPS)
3. Footprints of institutional accumulation or distribution
4. Short-term direction

Stock data:
%s

Return a detailed report with these sections:
- Key Behaviors
- Market Structure
- Action Recommendation
- Risk Disclosure
`

// BuildDataSummary renders the statistics block that is embedded in the
// prompt. The output depends only on its inputs.
func BuildDataSummary(symbol string, bars []model.Bar) string {
	stats, ok := calculator.Summarize(bars)
	if !ok {
		return fmt.Sprintf("Symbol: %s\nNo data", symbol)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Symbol: %s\n", symbol)
	fmt.Fprintf(&b, "Latest price: %.2f\n", stats.Latest)
	fmt.Fprintf(&b, "Open price: %.2f\n", stats.Open)
	fmt.Fprintf(&b, "High: %.2f\n", stats.High)
	fmt.Fprintf(&b, "Low: %.2f\n", stats.Low)
	fmt.Fprintf(&b, "Change: %.2f%%\n", stats.ChangePct)
	fmt.Fprintf(&b, "Total volume: %s\n", humanize.Comma(stats.TotalVolume))
	fmt.Fprintf(&b, "Bars: %d\n", stats.Bars)
	b.WriteString("Recent trend:")
	for _, w := range calculator.TrendWindows(bars) {
		unit := "windows"
		if w.Ago == 1 {
			unit = "window"
		}
		fmt.Fprintf(&b, "\n%d %s ago: %.2f%%", w.Ago, unit, w.ChangePct)
	}
	return b.String()
}

// BuildPrompt wraps a data summary in the fixed analyst instructions.
func BuildPrompt(summary string) string {
	return fmt.Sprintf(promptTemplate, SystemPrompt, summary)
}
