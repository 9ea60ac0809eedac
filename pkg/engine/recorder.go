package engine

import "time"

// Query outcomes reported to a Recorder.
const (
	OutcomeHit   = "hit"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Recorder receives query and function call measurements.
type Recorder interface {
	RecordQuery(parameter, outcome string, duration time.Duration, rows int)
	RecordFunction(name, outcome string, duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RecordQuery(string, string, time.Duration, int) {}
func (noopRecorder) RecordFunction(string, string, time.Duration)   {}
