// Package record keeps per-run outcome records for a sweep and exports them
// as a manifest. It stores plain data and knows nothing about launching.
package record

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ns3-sweep/ccsweep/sweep"
)

// Run statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// RunRecord captures one run of a sweep.
type RunRecord struct {
	SweepID    string
	Campaign   string
	Index      int
	Instance   string
	CC1        string
	CC2        string
	LossRate   int
	Folder     string
	Status     string // "ok", "failed", "skipped"
	ExitCode   int
	Error      string
	StartedAt  time.Time
	DurationMs int64
}

// Recorder collects run records (goroutine-safe).
type Recorder struct {
	sweepID string

	mu      sync.Mutex
	records []RunRecord
}

// NewRecorder creates a recorder stamped with a fresh sweep ID.
func NewRecorder() *Recorder {
	return &Recorder{sweepID: uuid.NewString()}
}

// SweepID identifies every record produced by this recorder.
func (r *Recorder) SweepID() string {
	return r.sweepID
}

// Hook is a sweep.OutcomeHook that records every outcome. It never aborts.
func (r *Recorder) Hook(o sweep.RunOutcome) error {
	r.Record(FromOutcome(r.sweepID, o))
	return nil
}

// Record appends one record.
func (r *Recorder) Record(rec RunRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// Records returns a copy of all records in arrival order.
func (r *Recorder) Records() []RunRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]RunRecord, len(r.records))
	copy(result, r.records)
	return result
}

// FromOutcome converts a run outcome into a record.
func FromOutcome(sweepID string, o sweep.RunOutcome) RunRecord {
	status := StatusOK
	switch {
	case o.Skipped:
		status = StatusSkipped
	case o.Failed():
		status = StatusFailed
	}
	return RunRecord{
		SweepID:    sweepID,
		Campaign:   o.Campaign,
		Index:      o.Index,
		Instance:   o.Config.Instance,
		CC1:        o.Config.CC1,
		CC2:        o.Config.CC2,
		LossRate:   o.Config.LossRate,
		Folder:     o.Config.OutputFolder(),
		Status:     status,
		ExitCode:   o.ExitCode,
		Error:      o.Err,
		StartedAt:  o.StartedAt,
		DurationMs: o.Duration().Milliseconds(),
	}
}
