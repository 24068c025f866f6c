package metrics

import (
	"sort"
	"sync"
	"time"
)

// MemoryMetrics implements ContractMetrics with in-memory
// counters. Export to a metrics backend is left to the host
// application.
type MemoryMetrics struct {
	mu         sync.RWMutex
	calls      map[string]int
	params     map[string]int
	deliveries map[string]int
	durations  map[string][]time.Duration
	pending    int
	maxPending int
}

// NewMemoryMetrics creates a new MemoryMetrics instance.
func NewMemoryMetrics() *MemoryMetrics {
	return &MemoryMetrics{
		calls:      make(map[string]int),
		params:     make(map[string]int),
		deliveries: make(map[string]int),
		durations:  make(map[string][]time.Duration),
	}
}

func (m *MemoryMetrics) RecordCall(function, status string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[function+":"+status]++
	m.durations[function] = append(m.durations[function], duration)
}

func (m *MemoryMetrics) RecordParam(function, param string, passed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params[function+":"+param+":"+statusOf(passed)]++
}

func (m *MemoryMetrics) RecordDelivery(sink string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries[sink+":"+statusOf(ok)]++
}

func (m *MemoryMetrics) SetPending(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = count
	if count > m.maxPending {
		m.maxPending = count
	}
}

// CallCount returns the count for a function+status combination.
func (m *MemoryMetrics) CallCount(function, status string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[function+":"+status]
}

// ParamCount returns how often a parameter passed or failed.
func (m *MemoryMetrics) ParamCount(function, param string, passed bool) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.params[function+":"+param+":"+statusOf(passed)]
}

// DeliveryCount returns how often a sink succeeded or failed.
func (m *MemoryMetrics) DeliveryCount(sink string, ok bool) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deliveries[sink+":"+statusOf(ok)]
}

// Pending returns the current pending gauge.
func (m *MemoryMetrics) Pending() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pending
}

// MaxPending returns the highest pending value seen.
func (m *MemoryMetrics) MaxPending() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxPending
}

// Functions returns the names of every function with a
// recorded call, sorted.
func (m *MemoryMetrics) Functions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.durations))
	for name := range m.durations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MeanDuration returns the mean target duration of a function.
func (m *MemoryMetrics) MeanDuration(function string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ds := m.durations[function]
	if len(ds) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range ds {
		total += d
	}
	return total / time.Duration(len(ds))
}

func statusOf(ok bool) string {
	if ok {
		return StatusPassed
	}
	return StatusFailed
}
