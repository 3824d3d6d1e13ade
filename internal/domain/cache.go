package domain

import (
	"context"
	"time"
)

// CacheError is returned by Cache implementations for expected conditions.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss means the key is absent or has expired.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the key/value store the job board writes through.
// Values are opaque strings; the board stores JSON job records.
type Cache interface {
	// Get returns ErrCacheMiss for unknown or expired keys.
	Get(ctx context.Context, key string) (string, error)
	// Set overwrites key. A zero ttl keeps the value until it is overwritten.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Ping(ctx context.Context) error
}
