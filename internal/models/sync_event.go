package models

import "time"

// LogType classifies a sync log line.
type LogType string

const (
	LogInfo    LogType = "info"
	LogSuccess LogType = "success"
	LogWarning LogType = "warning"
	LogError   LogType = "error"
)

// LogLine is one line printed to the sync terminal.
type LogLine struct {
	Message   string    `json:"message"`
	Type      LogType   `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncEvent is a single update emitted while an archive sync run plays.
type SyncEvent struct {
	RunID          string   `json:"run_id"`
	Seq            int      `json:"seq"`
	Phase          string   `json:"phase"`
	Line           *LogLine `json:"line,omitempty"`
	Progress       float64  `json:"progress"`
	FilesProcessed int      `json:"files_processed"`
	Done           bool     `json:"done"`
}

// SyncRun is a snapshot of an archive sync run.
type SyncRun struct {
	ID             string      `json:"id"`
	StartedBy      string      `json:"started_by"`
	StartedAt      time.Time   `json:"started_at"`
	FinishedAt     *time.Time  `json:"finished_at,omitempty"`
	Status         string      `json:"status"`
	Phase          string      `json:"phase"`
	Progress       float64     `json:"progress"`
	FilesProcessed int         `json:"files_processed"`
	Events         []SyncEvent `json:"events,omitempty"`
}

// SyncRun status values.
const (
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusCancelled = "cancelled"
)
