// Package cache abstracts the external key/value store used for tenant
// lookups, OTP codes, refresh tokens and rate-limit counters. All keys
// live under a colon-delimited namespace and carry their own TTL;
// nothing here is durable.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key does not exist or has expired.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache is the contract every cache-backed component depends on.
// Implementations must serialize operations on a single key; the
// cross-request coordination in this service relies on that, not on
// in-process locks.
type Cache interface {
	// Get returns the value stored at key, or ErrCacheMiss.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key with the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every key under the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Increment atomically increments the integer counter at key,
	// setting the TTL on the first hit, and returns the updated count.
	// Get on a counter key returns the count as a decimal string.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
