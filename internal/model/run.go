package model

import "time"

// Trigger identifies what started a pipeline run.
type Trigger string

const (
	TriggerMidday Trigger = "MIDDAY"
	TriggerClose  Trigger = "CLOSE"
	TriggerManual Trigger = "MANUAL"
)

// RunStatus is the outcome of processing one symbol.
type RunStatus string

const (
	StatusNoData       RunStatus = "NO_DATA"
	StatusNoAnalysis   RunStatus = "NO_ANALYSIS"
	StatusRenderFailed RunStatus = "RENDER_FAILED"
	StatusDelivered    RunStatus = "DELIVERED"
	StatusFailed       RunStatus = "FAILED"
)

// RunRecord is the persisted outcome of one symbol in one pipeline run.
type RunRecord struct {
	ID         int64
	RunID      string
	Trigger    Trigger
	Symbol     string
	Status     RunStatus
	Engine     string
	Bars       int
	ChangePct  float64
	ReportPath string
	Error      string
	CreatedAt  time.Time
}
