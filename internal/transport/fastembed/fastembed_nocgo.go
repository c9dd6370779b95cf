//go:build !cgo

package fastembed

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/domain"
)

// Embedder is a stub for builds without cgo.
type Embedder struct{}

// New always fails without cgo.
func New(_ Config, _ *zap.Logger) (*Embedder, error) {
	return nil, ErrUnavailable
}

// Dimension returns 0 without cgo.
func (e *Embedder) Dimension() int { return 0 }

// Embed always fails without cgo.
func (e *Embedder) Embed(_ context.Context, _ string) (domain.Embedding, error) {
	return domain.Embedding{}, ErrUnavailable
}

// EmbedBatch always fails without cgo.
func (e *Embedder) EmbedBatch(_ context.Context, _ []string) ([]domain.Embedding, error) {
	return nil, ErrUnavailable
}

// HealthCheck always fails without cgo.
func (e *Embedder) HealthCheck(_ context.Context) error { return ErrUnavailable }

// Close is a no-op without cgo.
func (e *Embedder) Close() error { return nil }
