package model

import "time"

// RunStatus represents the current state of a lead-generation run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusEmpty    RunStatus = "empty"
	RunStatusFailed   RunStatus = "failed"
)

// SourceStatus is the terminal status an adapter reports for one run.
type SourceStatus string

const (
	SourceStatusSuccess SourceStatus = "success"
	SourceStatusPartial SourceStatus = "partial"
	SourceStatusFailed  SourceStatus = "failed"
)

// SourceReport records one adapter's outcome within a run.
type SourceReport struct {
	Source  SourceID     `json:"source"`
	Status  SourceStatus `json:"status"`
	Records int          `json:"records"`
	Error   string       `json:"error,omitempty"`
}

// RunSummary holds the diagnostic outcome of a completed run.
type RunSummary struct {
	Leads       int            `json:"leads"`
	RawRecords  int            `json:"raw_records"`
	Dropped     int            `json:"dropped"`
	Merged      int            `json:"merged"`
	AvgScore    float64        `json:"avg_score"`
	HighQuality int            `json:"high_quality"` // score >= 70
	Reports     []SourceReport `json:"reports"`
	DurationMS  int64          `json:"duration_ms"`
	Outputs     []string       `json:"outputs,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Run is one persisted lead-generation run.
type Run struct {
	ID        string      `json:"id"`
	Keywords  []string    `json:"keywords"`
	Status    RunStatus   `json:"status"`
	Summary   *RunSummary `json:"summary,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
