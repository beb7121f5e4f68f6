package recorder

import (
	"time"

	"PrebloomScout/internal/pipeline"
)

// RunSnapshot holds all data for one completed scan.
type RunSnapshot struct {
	ID         string // assigned by the recorder when empty
	StartedAt  time.Time
	FinishedAt time.Time
	Result     *pipeline.Result
}

// Recorder persists scan history for analysis.
type Recorder interface {
	RecordRun(snap *RunSnapshot) error
	Close() error
}
