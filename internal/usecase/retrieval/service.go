// Package retrieval finds the knowledge entries nearest to an incident description.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/domain"
	"github.com/kailas-cloud/remedex/internal/domain/knowledge"
	"github.com/kailas-cloud/remedex/internal/domain/textnorm"
	"github.com/kailas-cloud/remedex/internal/vectorindex"
)

// DefaultK is the number of neighbours retrieved per query.
const DefaultK = 5

// Result carries the candidates, or the reason there are none.
type Result struct {
	Candidates []knowledge.Candidate
	Diagnostic string
}

// Service embeds queries and searches the published snapshot.
type Service struct {
	holder *vectorindex.Holder
	loader IndexLoader
	embed  domain.Embedder
	logger *zap.Logger
}

// New creates a retriever. loader may be nil when snapshots are only built in-process.
func New(holder *vectorindex.Holder, loader IndexLoader, embed domain.Embedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{holder: holder, loader: loader, embed: embed, logger: logger}
}

// Retrieve returns up to k candidates nearest to query, closest first. Index or
// embedding failures yield no candidates and a Diagnostic, never an error.
func (s *Service) Retrieve(ctx context.Context, query string, k int) Result {
	if k <= 0 {
		k = DefaultK
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return s.degrade("index not loaded", err)
	}

	text := textnorm.Normalize(query)
	if strings.TrimSpace(text) == "" {
		return s.degrade("query has no searchable text", domain.ErrInvalidInput)
	}

	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return s.degrade("embed query", err)
	}

	cands, err := snap.Nearest(emb.Vector, k)
	if err != nil {
		return s.degrade("search index", fmt.Errorf("%w: %w", domain.ErrVectorDimMismatch, err))
	}
	return Result{Candidates: cands}
}

func (s *Service) snapshot(ctx context.Context) (*vectorindex.Snapshot, error) {
	if snap := s.holder.Current(); snap != nil {
		return snap, nil
	}
	if s.loader == nil {
		return nil, domain.ErrIndexUnavailable
	}
	if err := s.loader.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	snap := s.holder.Current()
	if snap == nil {
		return nil, domain.ErrIndexUnavailable
	}
	return snap, nil
}

func (s *Service) degrade(stage string, err error) Result {
	diag := fmt.Sprintf("%s: %v", stage, err)
	s.logger.Warn("Retrieval returned no candidates", zap.String("stage", stage), zap.Error(err))
	return Result{Diagnostic: diag}
}
