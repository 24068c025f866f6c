package sink

import (
	"context"
	"errors"

	"digital.vasic.contracts/pkg/record"
)

// Store is where CacheSink keeps records.
type Store interface {
	Store(key string, rec *record.FunctionTestRecord)
}

// CacheSink stores each record under its cache key, then calls
// the completion signal with that key. The store always
// happens before the signal.
type CacheSink struct {
	store  Store
	signal func(key string)
}

// NewCacheSink creates a cache sink. signal may be nil.
func NewCacheSink(store Store, signal func(key string)) *CacheSink {
	return &CacheSink{store: store, signal: signal}
}

func (s *CacheSink) Name() string { return "cache" }

func (s *CacheSink) Deliver(_ context.Context, rec *record.FunctionTestRecord) error {
	if rec.CacheKey == "" {
		return deliveryError(s.Name(), rec, errors.New("record has no cache key"))
	}
	s.store.Store(rec.CacheKey, rec)
	if s.signal != nil {
		s.signal(rec.CacheKey)
	}
	return nil
}

func (s *CacheSink) Close() error { return nil }
