package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"StockReporter/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log logrus.FieldLogger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log logrus.FieldLogger) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets /history read while a run is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pipeline_runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			run_id       TEXT NOT NULL,
			trigger_type TEXT NOT NULL,
			symbol       TEXT NOT NULL,
			status       TEXT NOT NULL,
			engine       TEXT,
			bars         INTEGER,
			change_pct   REAL,
			report_path  TEXT,
			error_msg    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON pipeline_runs(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol ON pipeline_runs(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(rec *model.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	res, err := r.db.Exec(`INSERT INTO pipeline_runs
		(timestamp, run_id, trigger_type, symbol, status, engine, bars, change_pct, report_path, error_msg)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rec.CreatedAt.UnixMilli(), rec.RunID, string(rec.Trigger), rec.Symbol, string(rec.Status),
		rec.Engine, rec.Bars, rec.ChangePct, rec.ReportPath, rec.Error,
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

func (r *SQLiteRecorder) RecentRuns(limit int) ([]model.RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, run_id, trigger_type, symbol, status,
		engine, bars, change_pct, report_path, error_msg
		FROM pipeline_runs ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RunRecord
	for rows.Next() {
		var (
			rec     model.RunRecord
			ts      int64
			trigger string
			status  string
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.RunID, &trigger, &rec.Symbol, &status,
			&rec.Engine, &rec.Bars, &rec.ChangePct, &rec.ReportPath, &rec.Error); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.UnixMilli(ts)
		rec.Trigger = model.Trigger(trigger)
		rec.Status = model.RunStatus(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
