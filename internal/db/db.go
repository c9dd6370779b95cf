// Package db declares the key-value contract behind the embedding cache.
package db

import (
	"context"
	"time"
)

// Store is a connected key-value backend. Values are opaque byte strings.
type Store interface {
	Ping(ctx context.Context) error
	WaitForReady(ctx context.Context, timeout time.Duration) error
	Close()

	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetWithTTL with ttl <= 0 behaves like Set.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
