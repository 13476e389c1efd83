package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"StockReporter/internal/analyzer"
	"StockReporter/internal/collector"
	"StockReporter/internal/config"
	"StockReporter/internal/logging"
	"StockReporter/internal/model"
	"StockReporter/internal/notifier"
	"StockReporter/internal/pipeline"
	"StockReporter/internal/recorder"
	"StockReporter/internal/report"
	"StockReporter/internal/scheduler"
	"StockReporter/internal/trace"
	"StockReporter/internal/watchlist"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("config validation")
	}

	log, logCloser, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		logrus.WithError(err).Fatal("init logger")
	}
	defer logCloser.Close()
	log.Info("StockReporter starting...")

	if err := trace.Init(cfg.Tracing.Enabled); err != nil {
		log.WithError(err).Warn("init tracing failed, continuing without spans")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = trace.Shutdown(ctx)
	}()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init fetcher
	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewMinuteAPIFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Timeout)
	}
	log.WithField("source", fetcher.Name()).Info("data source selected")
	col := collector.NewCollector(fetcher, log, cfg.Pacing.Fetch)

	// Init analysis providers, in priority order
	an := cfg.Analysis
	gemini, err := analyzer.NewGeminiProvider(ctx, an.Gemini.APIKey, an.Gemini.Model, an.Gemini.BaseURL)
	if err != nil {
		log.WithError(err).Warn("gemini provider unavailable")
	}
	providers := []analyzer.Provider{
		gemini,
		analyzer.NewOpenAIProvider(an.OpenAI.APIKey, an.OpenAI.Model, an.OpenAI.BaseURL, an.Timeout),
	}
	if an.Claude.APIKey != "" {
		providers = append(providers, analyzer.NewClaudeProvider(an.Claude.APIKey, an.Claude.Model, an.Claude.BaseURL, an.Claude.MaxTokens, an.Timeout))
	}
	for _, p := range providers {
		log.WithFields(logrus.Fields{"engine": p.Name(), "configured": p.Configured()}).Info("analysis provider")
	}
	az := analyzer.NewAnalyzer(log, an.Timeout, providers...)

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.APIBase, cfg.Proxy, log)
	if !tn.Configured() {
		log.Warn("telegram bot token or chat id missing, notifications disabled")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.WithError(err).Warn("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	store := watchlist.NewStore(cfg.Watchlist.File, log)

	pl := &pipeline.Pipeline{
		Fetcher:   col,
		Analyzer:  az,
		Renderer:  report.NewRenderer(log, cfg.Report.FontPath),
		Notifier:  tn,
		Recorder:  rec,
		Log:       log,
		ReportDir: cfg.Report.Dir,
		Pacing:    cfg.Pacing.Symbol,
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, pl, store, rec, log, cfg.Location())
	if err := sched.RegisterAll(cfg.Schedule.MiddayCron, cfg.Schedule.CloseCron, cfg.Schedule.RefreshCron); err != nil {
		log.WithError(err).Fatal("register cron tasks")
	}
	sched.Start()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, running analysis now")
		go sched.RunNow(model.TriggerManual)
	}

	log.WithFields(logrus.Fields{
		"symbols":  len(store.List()),
		"timezone": cfg.Schedule.Timezone,
	}).Info("StockReporter is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping...")
	cancel()
	sched.Stop()
	log.Info("StockReporter stopped")
}
