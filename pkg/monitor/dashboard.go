package monitor

import (
	"sync"
	"time"
)

// Dashboard provides a real-time per-function view of
// instrumented calls.
type Dashboard struct {
	mu        sync.RWMutex
	RunID     string                   `json:"run_id"`
	StartTime time.Time                `json:"start_time"`
	Functions map[string]FunctionState `json:"functions"`
	Summary   DashboardSummary         `json:"summary"`
}

// FunctionState aggregates the calls of one function.
type FunctionState struct {
	Name         string        `json:"name"`
	Calls        int           `json:"calls"`
	Passed       int           `json:"passed"`
	Failed       int           `json:"failed"`
	Pending      int           `json:"pending"`
	LastDuration time.Duration `json:"last_duration,omitempty"`
	LastMessage  string        `json:"last_message,omitempty"`
}

// DashboardSummary holds aggregate stats for the dashboard.
type DashboardSummary struct {
	Functions int     `json:"functions"`
	Calls     int     `json:"calls"`
	Passed    int     `json:"passed"`
	Failed    int     `json:"failed"`
	Pending   int     `json:"pending"`
	PassRate  float64 `json:"pass_rate"`
	Elapsed   string  `json:"elapsed"`
}

// NewDashboard creates a new dashboard.
func NewDashboard(runID string) *Dashboard {
	return &Dashboard{
		RunID:     runID,
		StartTime: time.Now(),
		Functions: make(map[string]FunctionState),
	}
}

// UpdateFromEvent updates dashboard state from an event.
func (d *Dashboard) UpdateFromEvent(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state, exists := d.Functions[event.Function]
	if !exists {
		state = FunctionState{Name: event.Function}
	}

	switch event.Type {
	case EventInvoked:
		state.Calls++
		state.Pending++
	case EventCompleted:
		state.LastDuration = event.Duration
	case EventReported:
		if state.Pending > 0 {
			state.Pending--
		}
		if event.Passed {
			state.Passed++
		} else {
			state.Failed++
			state.LastMessage = event.Message
		}
	case EventDeliveryFailed:
		state.LastMessage = event.Message
	}

	d.Functions[event.Function] = state
	d.recalcSummary()
}

func (d *Dashboard) recalcSummary() {
	s := DashboardSummary{}
	for _, fn := range d.Functions {
		s.Functions++
		s.Calls += fn.Calls
		s.Passed += fn.Passed
		s.Failed += fn.Failed
		s.Pending += fn.Pending
	}
	if completed := s.Passed + s.Failed; completed > 0 {
		s.PassRate = float64(s.Passed) / float64(completed) * 100
	}
	s.Elapsed = time.Since(d.StartTime).Round(time.Millisecond).String()
	d.Summary = s
}

// Snapshot returns a copy of the current dashboard state.
func (d *Dashboard) Snapshot() *Dashboard {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snap := &Dashboard{
		RunID:     d.RunID,
		StartTime: d.StartTime,
		Functions: make(map[string]FunctionState, len(d.Functions)),
		Summary:   d.Summary,
	}
	for k, v := range d.Functions {
		snap.Functions[k] = v
	}
	return snap
}

// BuildDashboard creates a Dashboard by replaying every event
// retained by collector.
func BuildDashboard(
	collector *EventCollector,
) *Dashboard {
	data := NewDashboard("snapshot")
	for _, event := range collector.Events() {
		data.UpdateFromEvent(event)
	}
	return data
}
