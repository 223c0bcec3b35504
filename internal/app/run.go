package app

import "worklog-go/internal/history"

// RunRecord tracks a CLI invocation that may end up in the run history.
// Records are created in memory with ID=0; only remote-mutating commands
// persist them (giving them an auto-increment ID from the store).
type RunRecord struct {
	ID        int64
	Operation string
	Status    string
	Counts    history.Counts
}

// NewRunRecord creates a new in-memory run record.
func NewRunRecord(operation string) *RunRecord {
	return &RunRecord{
		Operation: operation,
		Status:    history.StatusSuccess,
	}
}

// Persisted returns true if this record has been saved to the store.
func (r *RunRecord) Persisted() bool {
	return r.ID != 0
}
