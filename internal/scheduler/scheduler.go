package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"StockReporter/internal/logging"
	"StockReporter/internal/model"
	"StockReporter/internal/pipeline"
	"StockReporter/internal/recorder"
)

// Runner executes one analysis pass over a list of symbols.
type Runner interface {
	Run(ctx context.Context, trigger model.Trigger, symbols []string) pipeline.Summary
}

// Watchlist is the symbol store shared with chat commands.
type Watchlist interface {
	Add(symbol string) (bool, error)
	Remove(symbol string) (bool, error)
	List() []string
	Reload() []string
}

// Scheduler manages all cron tasks and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Runner    Runner
	Watchlist Watchlist
	Recorder  recorder.Recorder
	Log       logrus.FieldLogger
	Ctx       context.Context

	// runMu serialises analysis runs; manual runs refuse instead of queueing.
	runMu sync.Mutex
	wg    sync.WaitGroup
}

// NewScheduler creates a new Scheduler evaluating cron specs in loc.
func NewScheduler(ctx context.Context, runner Runner, wl Watchlist, rec recorder.Recorder, log logrus.FieldLogger, loc *time.Location) *Scheduler {
	cl := logging.CronLogger{Log: log}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Runner:    runner,
		Watchlist: wl,
		Recorder:  rec,
		Log:       log,
		Ctx:       ctx,
	}
}

// RegisterAll registers the midday and close analyses and the watch-list refresh.
func (s *Scheduler) RegisterAll(middayCron, closeCron, refreshCron string) error {
	if _, err := s.Cron.AddFunc(middayCron, func() { s.analysisTask(model.TriggerMidday) }); err != nil {
		return fmt.Errorf("register midday task: %w", err)
	}
	if _, err := s.Cron.AddFunc(closeCron, func() { s.analysisTask(model.TriggerClose) }); err != nil {
		return fmt.Errorf("register close task: %w", err)
	}
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.WithField("jobs", len(s.Cron.Entries())).Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs, including
// manual runs started from chat.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.wg.Wait()
	s.Log.Info("scheduler stopped")
}

// RunNow executes a full analysis immediately (for RUN_ON_START).
func (s *Scheduler) RunNow(trigger model.Trigger) {
	s.analysisTask(trigger)
}

func (s *Scheduler) analysisTask(trigger model.Trigger) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.runAnalysis(trigger)
}

// runAnalysis must be called with runMu held.
func (s *Scheduler) runAnalysis(trigger model.Trigger) {
	log := s.Log.WithField("trigger", trigger)
	log.Info("running analysis task")
	symbols := s.Watchlist.Reload()
	summary := s.Runner.Run(s.Ctx, trigger, symbols)
	log.WithFields(logrus.Fields{
		"run_id":    summary.RunID,
		"delivered": summary.Counts[model.StatusDelivered],
	}).Info("analysis task finished")
}

func (s *Scheduler) refreshTask() {
	symbols := s.Watchlist.Reload()
	s.Log.WithField("count", len(symbols)).Debug("watchlist refreshed")
}

// startManualRun launches an analysis in the background. It reports false
// when another run holds the lock.
func (s *Scheduler) startManualRun() bool {
	if !s.runMu.TryLock() {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.runMu.Unlock()
		defer func() {
			if r := recover(); r != nil {
				s.Log.WithField("panic", r).Error("manual run panicked")
			}
		}()
		s.runAnalysis(model.TriggerManual)
	}()
	return true
}
