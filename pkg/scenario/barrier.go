package scenario

import (
	"context"
	"fmt"
	"sync"
)

// Barrier waits for one completion signal per expected key.
// Keys form a multiset: a key expected twice needs two signals.
// Signals for keys that are not (or no longer) expected are
// ignored, so the count only moves towards completion.
type Barrier struct {
	mu        sync.Mutex
	expected  map[string]int
	arrived   map[string]int
	remaining int
	done      chan struct{}
	closed    bool
}

// NewBarrier creates a barrier expecting keys.
func NewBarrier(keys ...string) *Barrier {
	b := &Barrier{
		expected: make(map[string]int),
		arrived:  make(map[string]int),
		done:     make(chan struct{}),
	}
	b.Expect(keys...)
	return b
}

// Expect adds keys to the expected multiset.
func (b *Barrier) Expect(keys ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		b.expected[k]++
		b.remaining++
	}
}

// Signal records the completion of one call for key.
func (b *Barrier) Signal(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.arrived[key] >= b.expected[key] {
		return
	}
	b.arrived[key]++
	b.remaining--
	b.release()
}

// Forget withdraws one expectation of key, for a call that
// never started.
func (b *Barrier) Forget(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.expected[key] <= b.arrived[key] {
		return
	}
	b.expected[key]--
	b.remaining--
	b.release()
}

// release closes done once nothing remains. Callers hold mu.
func (b *Barrier) release() {
	if b.remaining == 0 && !b.closed {
		b.closed = true
		close(b.done)
	}
}

// Remaining returns the number of signals still awaited.
func (b *Barrier) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

// Wait blocks until every expected signal arrived or ctx ends.
// A barrier expecting nothing is already complete.
func (b *Barrier) Wait(ctx context.Context) error {
	b.mu.Lock()
	b.release()
	done := b.done
	b.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("awaiting %d completions: %w", b.Remaining(), ctx.Err())
	}
}
