package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"StockReporter/internal/calculator"
	"StockReporter/internal/model"
	"StockReporter/internal/notifier"
	"StockReporter/internal/recorder"
	"StockReporter/internal/report"
	"StockReporter/internal/trace"
)

// Fetcher returns bars for a symbol; an empty series means no data.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time) model.BarSeries
}

// Analyzer returns a narrative, or false when none is available.
type Analyzer interface {
	Analyze(ctx context.Context, series model.BarSeries) (model.AnalysisResult, bool)
}

// Renderer writes the report file and reports success.
type Renderer interface {
	Render(series model.BarSeries, analysis *model.AnalysisResult, symbol, outPath string) bool
}

// Notifier delivers the acknowledgement and the report file.
type Notifier interface {
	Send(text string) error
	SendDocument(path, caption string) error
}

// Pipeline runs fetch, analyze, render and notify for each symbol in turn.
type Pipeline struct {
	Fetcher   Fetcher
	Analyzer  Analyzer
	Renderer  Renderer
	Notifier  Notifier
	Recorder  recorder.Recorder
	Log       logrus.FieldLogger
	ReportDir string
	// Pacing is the pause after each delivered symbol.
	Pacing time.Duration

	now func() time.Time
}

// Summary counts the outcomes of one Run.
type Summary struct {
	RunID  string
	Counts map[model.RunStatus]int
}

// Run processes symbols sequentially. A failure on one symbol never stops
// the others. It returns early only when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, trigger model.Trigger, symbols []string) Summary {
	runID := uuid.NewString()
	log := p.Log.WithFields(logrus.Fields{"run_id": runID, "trigger": trigger})
	summary := Summary{RunID: runID, Counts: map[model.RunStatus]int{}}

	ctx, span := trace.StartSpan(ctx, "pipeline.Run")
	defer span.End()
	span.SetAttributes(attribute.String("trigger", string(trigger)), attribute.Int("symbols", len(symbols)))

	if len(symbols) == 0 {
		log.Info("watchlist empty, nothing to analyze")
		return summary
	}
	log.WithField("symbols", len(symbols)).Info("analysis run started")

	for i, symbol := range symbols {
		if ctx.Err() != nil {
			log.Warn("analysis run cancelled")
			break
		}
		rec := p.processSymbol(ctx, runID, trigger, symbol)
		summary.Counts[rec.Status]++

		if analyzed(rec.Status) && i < len(symbols)-1 {
			p.pause(ctx)
		}
	}

	log.WithFields(logrus.Fields{
		"delivered": summary.Counts[model.StatusDelivered],
		"skipped":   len(symbols) - summary.Counts[model.StatusDelivered],
	}).Info("analysis run finished")
	return summary
}

// processSymbol never panics; the returned record has already been stored.
func (p *Pipeline) processSymbol(ctx context.Context, runID string, trigger model.Trigger, symbol string) (rec model.RunRecord) {
	rec = model.RunRecord{RunID: runID, Trigger: trigger, Symbol: symbol}
	log := p.Log.WithFields(logrus.Fields{"run_id": runID, "symbol": symbol})

	ctx, span := trace.StartSpan(ctx, "pipeline.symbol")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("symbol processing panicked")
			rec.Status = model.StatusFailed
			rec.Error = fmt.Sprint(r)
		}
		span.SetAttributes(attribute.String("status", string(rec.Status)))
		p.record(log, &rec)
	}()

	series := p.Fetcher.Fetch(ctx, symbol, time.Time{}, time.Time{})
	rec.Bars = series.Len()
	if series.Empty() {
		log.Warn("no data, skipping")
		rec.Status = model.StatusNoData
		return rec
	}
	if stats, ok := calculator.Summarize(series.Bars); ok {
		rec.ChangePct = stats.ChangePct
	}

	analysis, ok := p.Analyzer.Analyze(ctx, series)
	if !ok {
		log.Warn("no analysis, skipping")
		rec.Status = model.StatusNoAnalysis
		return rec
	}
	rec.Engine = analysis.Engine

	outPath := report.ReportPath(p.ReportDir, symbol, p.clock())
	if !p.Renderer.Render(series, &analysis, symbol, outPath) {
		log.Error("report rendering failed")
		rec.Status = model.StatusRenderFailed
		return rec
	}
	rec.ReportPath = outPath

	if err := p.Notifier.Send(notifier.FormatReportAck(symbol, trigger, analysis.Engine)); err != nil {
		log.WithError(err).Error("send acknowledgement failed")
	}
	if err := p.Notifier.SendDocument(outPath, fmt.Sprintf("%s analysis report", symbol)); err != nil {
		log.WithError(err).Error("send report document failed")
		rec.Error = err.Error()
	}
	rec.Status = model.StatusDelivered
	log.WithField("report", outPath).Info("report delivered")
	return rec
}

func (p *Pipeline) record(log logrus.FieldLogger, rec *model.RunRecord) {
	if p.Recorder == nil {
		return
	}
	if err := p.Recorder.RecordRun(rec); err != nil {
		log.WithError(err).Error("record run failed")
	}
}

// analyzed reports whether a provider was called for the symbol.
func analyzed(status model.RunStatus) bool {
	return status == model.StatusDelivered || status == model.StatusRenderFailed
}

func (p *Pipeline) pause(ctx context.Context) {
	if p.Pacing <= 0 {
		return
	}
	t := time.NewTimer(p.Pacing)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (p *Pipeline) clock() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}
