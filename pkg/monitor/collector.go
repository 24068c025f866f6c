package monitor

import (
	"sync"
	"time"
)

// EventCollector captures lifecycle events and timing data.
type EventCollector struct {
	mu       sync.RWMutex
	events   []Event
	handlers []func(Event)
	stats    CollectorStats
	limit    int
}

// CollectorStats holds aggregate statistics.
type CollectorStats struct {
	Total     int               `json:"total"`
	ByType    map[EventType]int `json:"by_type"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	StartTime time.Time         `json:"start_time"`
	Duration  time.Duration     `json:"duration"`
}

// NewEventCollector creates a new event collector. A positive
// limit bounds how many events are retained; statistics keep
// counting past it.
func NewEventCollector(limit int) *EventCollector {
	return &EventCollector{
		events: make([]Event, 0, 64),
		stats:  newStats(),
		limit:  limit,
	}
}

func newStats() CollectorStats {
	return CollectorStats{
		ByType:    make(map[EventType]int),
		StartTime: time.Now(),
	}
}

// OnEvent registers a handler to be called for each event.
func (c *EventCollector) OnEvent(handler func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Emit records an event and notifies all handlers.
func (c *EventCollector) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	if c.limit > 0 && len(c.events) > c.limit {
		c.events = append(c.events[:0], c.events[len(c.events)-c.limit:]...)
	}
	c.stats.Total++
	c.stats.ByType[event.Type]++
	if event.Type == EventReported {
		if event.Passed {
			c.stats.Passed++
		} else {
			c.stats.Failed++
		}
	}
	handlers := make([]func(Event), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// Events returns a copy of all retained events.
func (c *EventCollector) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Event, len(c.events))
	copy(result, c.events)
	return result
}

// EventsFor returns the retained events of one record, in
// emission order.
func (c *EventCollector) EventsFor(recordID string) []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var result []Event
	for _, e := range c.events {
		if e.RecordID == recordID {
			result = append(result, e)
		}
	}
	return result
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.ByType = make(map[EventType]int, len(c.stats.ByType))
	for k, v := range c.stats.ByType {
		s.ByType[k] = v
	}
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.stats = newStats()
}
