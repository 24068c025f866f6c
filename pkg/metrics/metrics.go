package metrics

import "time"

// Call statuses.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
	StatusError  = "error"
)

// ContractMetrics defines the interface for recording contract
// metrics.
type ContractMetrics interface {
	// RecordCall records one instrumented call and how long the
	// target ran.
	RecordCall(function, status string, duration time.Duration)
	// RecordParam records the verdict of one parameter check.
	RecordParam(function, param string, passed bool)
	// RecordDelivery records one sink delivery attempt.
	RecordDelivery(sink string, ok bool)
	// SetPending sets the gauge of queued deferred validations.
	SetPending(count int)
}

// NoopMetrics is a no-op implementation of ContractMetrics
// useful for testing or when metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordCall(_, _ string, _ time.Duration) {}
func (NoopMetrics) RecordParam(_, _ string, _ bool)         {}
func (NoopMetrics) RecordDelivery(_ string, _ bool)         {}
func (NoopMetrics) SetPending(_ int)                        {}
