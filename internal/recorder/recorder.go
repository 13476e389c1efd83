package recorder

import "StockReporter/internal/model"

// Recorder persists per-symbol pipeline outcomes.
type Recorder interface {
	RecordRun(rec *model.RunRecord) error
	// RecentRuns returns up to limit records, newest first.
	RecentRuns(limit int) ([]model.RunRecord, error)
	Close() error
}
