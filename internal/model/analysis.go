package model

import "time"

// AnalysisResult is the narrative returned by one text-generation provider.
// It lives only for the duration of a pipeline run.
type AnalysisResult struct {
	Engine      string
	Text        string
	GeneratedAt time.Time
}
