// Package indexstore persists vector index snapshots together with their entries.
package indexstore

import (
	"context"
	"time"

	"github.com/kailas-cloud/remedex/internal/vectorindex"
)

// Meta describes how a persisted snapshot was built.
type Meta struct {
	Model   string
	Dim     int
	Count   int
	BuiltAt time.Time
}

// Store saves and restores snapshots. Load returns an error wrapping
// domain.ErrIndexUnavailable when nothing usable is persisted.
type Store interface {
	Save(ctx context.Context, snap *vectorindex.Snapshot, meta Meta) error
	Load(ctx context.Context) (*vectorindex.Snapshot, Meta, error)
}
