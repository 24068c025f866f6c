package sink

import (
	"context"
	"errors"
	"sync"

	"digital.vasic.contracts/pkg/record"
)

// MultiSink delivers every record to all of its sinks, in
// order. One failing sink does not stop the others.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a sink fanning out to sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Name() string { return "multi" }

// Sinks returns the wrapped sinks.
func (m *MultiSink) Sinks() []Sink {
	return append([]Sink(nil), m.sinks...)
}

func (m *MultiSink) Deliver(ctx context.Context, rec *record.FunctionTestRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Deliver(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FallbackSink keeps the records its inner sink failed to
// deliver, up to a fixed capacity, for an external collaborator
// to drain. When full, the oldest record is dropped.
type FallbackSink struct {
	inner    Sink
	capacity int

	mu      sync.Mutex
	failed  []*record.FunctionTestRecord
	dropped int
}

// NewFallbackSink wraps inner with a failure queue of capacity
// records.
func NewFallbackSink(inner Sink, capacity int) *FallbackSink {
	return &FallbackSink{inner: inner, capacity: capacity}
}

func (f *FallbackSink) Name() string { return f.inner.Name() }

// Deliver forwards rec and queues it when delivery fails. The
// delivery error is still returned.
func (f *FallbackSink) Deliver(ctx context.Context, rec *record.FunctionTestRecord) error {
	err := f.inner.Deliver(ctx, rec)
	if err == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.capacity > 0 && len(f.failed) >= f.capacity {
		f.failed = f.failed[1:]
		f.dropped++
	}
	f.failed = append(f.failed, rec)
	return err
}

// Failed returns the queued records without removing them.
func (f *FallbackSink) Failed() []*record.FunctionTestRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*record.FunctionTestRecord(nil), f.failed...)
}

// Drain removes and returns the queued records.
func (f *FallbackSink) Drain() []*record.FunctionTestRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.failed
	f.failed = nil
	return out
}

// Dropped returns how many queued records were discarded
// because the queue was full.
func (f *FallbackSink) Dropped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}

func (f *FallbackSink) Close() error {
	return f.inner.Close()
}
