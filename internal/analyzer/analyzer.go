package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"StockReporter/internal/model"
	"StockReporter/internal/trace"
)

// Analyzer asks each provider in order for a narrative and keeps the first
// non-empty answer.
type Analyzer struct {
	Providers []Provider
	Log       logrus.FieldLogger
	// Timeout bounds each provider call. Zero means no extra bound.
	Timeout time.Duration
}

// NewAnalyzer creates an Analyzer over providers, in priority order.
func NewAnalyzer(log logrus.FieldLogger, timeout time.Duration, providers ...Provider) *Analyzer {
	return &Analyzer{Providers: providers, Log: log, Timeout: timeout}
}

// Analyze returns the first narrative produced for series. ok is false when
// the series is empty or every provider came back with nothing.
func (a *Analyzer) Analyze(ctx context.Context, series model.BarSeries) (model.AnalysisResult, bool) {
	if series.Empty() {
		return model.AnalysisResult{}, false
	}

	ctx, span := trace.StartSpan(ctx, "analyzer.Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", series.Symbol), attribute.Int("bars", series.Len()))

	prompt := BuildPrompt(BuildDataSummary(series.Symbol, series.Bars))
	result, ok := a.firstAvailable(ctx, series.Symbol, prompt)
	if !ok {
		span.SetStatus(codes.Error, "no provider produced analysis")
		a.Log.WithField("symbol", series.Symbol).Warn("no analysis available from any provider")
		return model.AnalysisResult{}, false
	}
	span.SetAttributes(attribute.String("engine", result.Engine))
	return result, true
}

func (a *Analyzer) firstAvailable(ctx context.Context, symbol, prompt string) (model.AnalysisResult, bool) {
	for _, p := range a.Providers {
		entry := a.Log.WithFields(logrus.Fields{"symbol": symbol, "engine": p.Name()})
		if !p.Configured() {
			entry.Warn("provider not configured, skipping")
			continue
		}
		text, err := a.call(ctx, p, prompt)
		if err != nil {
			entry.WithError(err).Error("analysis request failed")
			continue
		}
		if strings.TrimSpace(text) == "" {
			entry.Warn("provider returned empty analysis")
			continue
		}
		entry.Info("analysis completed")
		return model.AnalysisResult{
			Engine:      p.Name(),
			Text:        text,
			GeneratedAt: time.Now(),
		}, true
	}
	return model.AnalysisResult{}, false
}

// call invokes one provider, converting a panic into an error.
func (a *Analyzer) call(ctx context.Context, p Provider, prompt string) (text string, err error) {
	ctx, span := trace.StartSpan(ctx, "analyzer.provider")
	defer span.End()
	span.SetAttributes(attribute.String("engine", p.Name()))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}
	return p.Generate(ctx, SystemPrompt, prompt)
}
