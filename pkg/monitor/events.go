package monitor

import (
	"time"
)

// EventType represents the type of lifecycle event.
type EventType string

const (
	EventInvoked        EventType = "invoked"
	EventExecuting      EventType = "executing"
	EventCompleted      EventType = "completed"
	EventValidating     EventType = "validating"
	EventReported       EventType = "reported"
	EventDeliveryFailed EventType = "delivery_failed"
)

// Event represents one lifecycle transition of an instrumented
// call.
type Event struct {
	Type      EventType     `json:"type"`
	RecordID  string        `json:"record_id"`
	Function  string        `json:"function"`
	Passed    bool          `json:"passed,omitempty"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
