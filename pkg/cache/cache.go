// Package cache holds completed records keyed by a content hash
// of the call's input values. Entries expire after a fixed TTL
// and the least recently used entry is evicted when full.
package cache

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"digital.vasic.contracts/pkg/record"
)

// Cache is a fixed-size TTL store of function test records.
type Cache struct {
	lru *expirable.LRU[string, *record.FunctionTestRecord]
}

// New creates a cache holding at most size records for ttl.
func New(size int, ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, *record.FunctionTestRecord](size, nil, ttl),
	}
}

// Key derives the cache key of a list of input values: the hex
// xxhash64 of their canonical JSON. Values are sanitized first
// so cycles and deep nesting hash deterministically. A nil list
// hashes like an empty one.
func Key(values []any) (string, error) {
	if values == nil {
		values = []any{}
	}
	data, err := json.Marshal(record.Sanitize(values, record.DefaultDepth))
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	return strconv.FormatUint(xxhash.Sum64(data), 16), nil
}

// Store saves rec under key, replacing any previous entry.
func (c *Cache) Store(key string, rec *record.FunctionTestRecord) {
	c.lru.Add(key, rec)
}

// Get returns the record stored under key.
func (c *Cache) Get(key string) (*record.FunctionTestRecord, bool) {
	return c.lru.Get(key)
}

// Remove deletes the entry under key.
func (c *Cache) Remove(key string) bool {
	return c.lru.Remove(key)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Keys returns the live keys, oldest first.
func (c *Cache) Keys() []string {
	return c.lru.Keys()
}

// Purge removes every entry.
func (c *Cache) Purge() {
	c.lru.Purge()
}
