// Package sink delivers finished function test records to their
// destinations: the log, a Redis channel, a WebSocket endpoint
// or the in-process result cache.
package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"digital.vasic.contracts/pkg/record"
)

// Sink is a destination for finished records. Deliver may be
// called from a single goroutine at a time.
type Sink interface {
	// Name identifies the sink in logs and errors.
	Name() string
	// Deliver hands one record to the destination.
	Deliver(ctx context.Context, rec *record.FunctionTestRecord) error
	// Close releases any connection held by the sink.
	Close() error
}

// DeliveryError reports a record a sink could not deliver.
type DeliveryError struct {
	Sink     string
	RecordID string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("sink %s: deliver record %s: %v", e.Sink, e.RecordID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func deliveryError(sink string, rec *record.FunctionTestRecord, err error) error {
	return &DeliveryError{Sink: sink, RecordID: rec.ID, Err: err}
}

// Encode serializes a record as JSON.
func Encode(rec *record.FunctionTestRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return data, nil
}

// Discard accepts and drops every record.
type Discard struct{}

func (Discard) Name() string { return "none" }

func (Discard) Deliver(context.Context, *record.FunctionTestRecord) error { return nil }

func (Discard) Close() error { return nil }
