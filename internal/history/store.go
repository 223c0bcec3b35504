// Package history records each scheduled run in a local SQLite database so
// `worklog history` can show what the tool did and when, independent of the
// log files the scheduler collects.
package history

import (
	"database/sql"
	"time"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Run is one invocation of the tool.
type Run struct {
	ID         int64
	Operation  string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Status     string
	Created    int
	Moved      int
	Skipped    int
	Failed     int
}

// Counts are the per-unit outcome tallies of a run.
type Counts struct {
	Created int
	Moved   int
	Skipped int
	Failed  int
}

// Store persists run records.
type Store interface {
	// CreateRun records the start of a run and returns it with its ID set.
	CreateRun(operation string) (*Run, error)

	// FinishRun stamps the end of a run with its status and counts.
	FinishRun(id int64, status string, counts Counts) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*Run, error)

	// Close closes the underlying database.
	Close() error
}
