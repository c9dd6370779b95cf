package knowledge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/domain"
	domkn "github.com/kailas-cloud/remedex/internal/domain/knowledge"
)

// Chain tries sources in order and returns the first non-empty result.
// A failing source is logged and skipped.
type Chain struct {
	sources []Source
	logger  *zap.Logger
}

// NewChain creates a chain over sources.
func NewChain(logger *zap.Logger, sources ...Source) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{sources: sources, logger: logger}
}

// Name implements Source.
func (c *Chain) Name() string { return "chain" }

// Load returns entries from the first source that has any.
func (c *Chain) Load(ctx context.Context) ([]domkn.Entry, error) {
	for _, s := range c.sources {
		entries, err := s.Load(ctx)
		if err != nil {
			c.logger.Warn("Knowledge source failed, trying next",
				zap.String("source", s.Name()),
				zap.Error(err),
			)
			continue
		}
		if len(entries) == 0 {
			continue
		}
		c.logger.Info("Using knowledge source",
			zap.String("source", s.Name()),
			zap.Int("entries", len(entries)),
		)
		return domkn.Renumber(entries), nil
	}
	return nil, fmt.Errorf("%d sources tried: %w", len(c.sources), domain.ErrKnowledgeEmpty)
}
