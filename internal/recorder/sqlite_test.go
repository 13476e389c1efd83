package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockReporter/internal/model"
)

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), l)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	r := newTestRecorder(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first := &model.RunRecord{RunID: "run-1", Trigger: model.TriggerMidday, Symbol: "600519",
		Status: model.StatusDelivered, Engine: "Gemini", Bars: 120, ChangePct: 1.25,
		ReportPath: "reports/600519_report_20240301_120000.pdf", CreatedAt: base}
	second := &model.RunRecord{RunID: "run-2", Trigger: model.TriggerClose, Symbol: "000001",
		Status: model.StatusNoData, CreatedAt: base.Add(3 * time.Hour)}

	require.NoError(t, r.RecordRun(first))
	require.NoError(t, r.RecordRun(second))
	assert.Positive(t, first.ID)

	got, err := r.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "000001", got[0].Symbol)
	assert.Equal(t, model.StatusNoData, got[0].Status)
	assert.Equal(t, "600519", got[1].Symbol)
	assert.Equal(t, model.TriggerMidday, got[1].Trigger)
	assert.Equal(t, "Gemini", got[1].Engine)
	assert.Equal(t, 120, got[1].Bars)
	assert.InDelta(t, 1.25, got[1].ChangePct, 1e-9)
	assert.True(t, base.Equal(got[1].CreatedAt))
}

func TestSQLiteRecorder_Limit(t *testing.T) {
	r := newTestRecorder(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, r.RecordRun(&model.RunRecord{RunID: "r", Trigger: model.TriggerManual,
			Symbol: "600519", Status: model.StatusDelivered}))
	}
	got, err := r.RecentRuns(3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordRun(&model.RunRecord{}))
	got, err := r.RecentRuns(10)
	assert.NoError(t, err)
	assert.Empty(t, got)
}
