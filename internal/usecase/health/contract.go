package health

import (
	"context"

	"github.com/kailas-cloud/remedex/internal/vectorindex"
)

// Pinger checks cache or broker availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks embedding or LLM provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// IndexReader exposes the published snapshot.
type IndexReader interface {
	Current() *vectorindex.Snapshot
}
