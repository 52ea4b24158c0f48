package metrics

import "time"

// Outcome labels recorded for each operation.
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "validation_error"
	OutcomeNotFound     = "not_found"
	OutcomeStoreFailure = "store_unavailable"
	OutcomeError        = "error"
)

// Recorder receives one observation per task service operation.
type Recorder interface {
	ObserveOperation(operation, outcome string, d time.Duration)
}

// Nop discards every observation.
type Nop struct{}

// ObserveOperation does nothing.
func (Nop) ObserveOperation(string, string, time.Duration) {}
