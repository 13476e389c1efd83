package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"

	"StockReporter/internal/calculator"
	"StockReporter/internal/model"
)

const (
	pageMargin = 20.0
	chartW     = 160.0
	chartH     = 80.0

	unicodeFamily = "report-utf8"
)

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// Renderer produces the PDF report for one symbol.
type Renderer struct {
	Log logrus.FieldLogger
	// FontPath optionally points at a UTF-8 TrueType font. Without it the
	// core Helvetica font is used and non cp1252 text is lost.
	FontPath string

	now func() time.Time
}

// NewRenderer creates a Renderer.
func NewRenderer(log logrus.FieldLogger, fontPath string) *Renderer {
	return &Renderer{Log: log, FontPath: fontPath, now: time.Now}
}

// ReportPath returns <dir>/<symbol>_report_<YYYYMMDD_HHMMSS>.pdf.
func ReportPath(dir, symbol string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_report_%s.pdf", symbol, at.Format("20060102_150405")))
}

// ChartPath returns the transient chart image path for a report.
func ChartPath(reportPath string) string {
	return strings.TrimSuffix(reportPath, filepath.Ext(reportPath)) + ".png"
}

// Render writes the report to outPath. It returns false, leaving no files
// behind, when the document cannot be produced. The chart image never
// outlives the call.
func (r *Renderer) Render(series model.BarSeries, analysis *model.AnalysisResult, symbol, outPath string) (ok bool) {
	log := r.Log.WithFields(logrus.Fields{"symbol": symbol, "path": outPath})
	chartPath := ChartPath(outPath)
	written := false

	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("panic", rec).Error("render panicked")
			ok = false
		}
		removeQuietly(log, chartPath)
		// Only a partial document of our own is removed.
		if !ok && written {
			removeQuietly(log, outPath)
		}
	}()

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.WithError(err).Error("create report dir failed")
		return false
	}

	chartOK := false
	if !series.Empty() {
		if err := DrawCandles(series.Bars, symbol, chartPath); err != nil {
			log.WithError(err).Warn("chart rendering failed, omitting chart section")
		} else {
			chartOK = true
		}
	}

	doc := r.newDocument()
	if err := doc.Err(); err != nil {
		log.WithError(err).Error("init pdf failed")
		return false
	}
	w := &writer{pdf: doc.pdf, family: doc.family, tr: doc.tr}

	w.title(fmt.Sprintf("Stock Analysis Report - %s", symbol))
	w.line(fmt.Sprintf("Generated: %s", r.clock().Format("2006-01-02 15:04:05")))
	w.pdf.Ln(6)

	if stats, has := calculator.Summarize(series.Bars); has {
		w.heading("1. Data Summary")
		w.table([][2]string{
			{"Latest price", fmt.Sprintf("%.2f", stats.Latest)},
			{"Open price", fmt.Sprintf("%.2f", stats.Open)},
			{"High", fmt.Sprintf("%.2f", stats.High)},
			{"Low", fmt.Sprintf("%.2f", stats.Low)},
			{"Change", fmt.Sprintf("%.2f%%", stats.ChangePct)},
			{"Total volume", humanize.Comma(stats.TotalVolume)},
		})
	}

	if chartOK {
		w.heading("2. Candlestick Chart")
		w.image(chartPath)
	}

	if analysis != nil {
		w.heading("3. AI Analysis")
		w.line("Engine: " + analysis.Engine)
		w.pdf.Ln(2)
		for _, p := range Paragraphs(analysis.Text) {
			w.paragraph(p)
		}
	}

	written = true
	if err := w.pdf.OutputFileAndClose(outPath); err != nil {
		log.WithError(err).Error("write pdf failed")
		return false
	}
	log.Info("report rendered")
	return true
}

// Paragraphs splits narrative text on blank lines, dropping empty blocks.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range paragraphSplit.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type document struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
}

func (d document) Err() error { return d.pdf.Error() }

func (r *Renderer) newDocument() document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)

	d := document{pdf: pdf, family: "Helvetica", tr: pdf.UnicodeTranslatorFromDescriptor("")}
	if r.FontPath != "" {
		if _, err := os.Stat(r.FontPath); err == nil {
			pdf.AddUTF8Font(unicodeFamily, "", r.FontPath)
			pdf.AddUTF8Font(unicodeFamily, "B", r.FontPath)
			d.family = unicodeFamily
			d.tr = func(s string) string { return s }
		} else {
			r.Log.WithError(err).Warn("report font unavailable, using Helvetica")
		}
	}
	pdf.AddPage()
	pdf.SetFont(d.family, "", 11)
	return d
}

func (r *Renderer) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}

func removeQuietly(log logrus.FieldLogger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.WithError(err).WithField("file", path).Warn("remove file failed")
	}
}
