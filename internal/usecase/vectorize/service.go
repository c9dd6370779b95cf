// Package vectorize builds, persists and publishes knowledge base snapshots.
package vectorize

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/domain"
	"github.com/kailas-cloud/remedex/internal/repository/indexstore"
	"github.com/kailas-cloud/remedex/internal/metrics"
	"github.com/kailas-cloud/remedex/internal/vectorindex"
)

// DefaultBatchSize is the number of texts embedded per provider call.
const DefaultBatchSize = 100

// Stats summarizes a completed rebuild.
type Stats struct {
	Source   string
	Entries  int
	Dim      int
	Duration time.Duration
}

// Service rebuilds the index from a knowledge source and swaps it into the holder.
type Service struct {
	source    KnowledgeSource
	embed     domain.Embedder
	store     SnapshotStore
	holder    *vectorindex.Holder
	model     string
	batchSize int
	logger    *zap.Logger

	rebuildMu sync.Mutex
	loadMu    sync.Mutex
}

// New creates a Service. store may be nil to keep snapshots in memory only.
func New(
	source KnowledgeSource, embed domain.Embedder, store SnapshotStore,
	holder *vectorindex.Holder, model string, batchSize int, logger *zap.Logger,
) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:    source,
		embed:     embed,
		store:     store,
		holder:    holder,
		model:     model,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Vectorize embeds every knowledge entry, persists the snapshot and then publishes it.
// Concurrent calls fail fast with domain.ErrRebuildInProgress. On failure the
// previously published snapshot stays in place.
func (s *Service) Vectorize(ctx context.Context) (Stats, error) {
	if !s.rebuildMu.TryLock() {
		return Stats{}, domain.ErrRebuildInProgress
	}
	defer s.rebuildMu.Unlock()

	stats, err := s.rebuild(ctx)
	if err != nil {
		metrics.IndexRebuildsTotal.WithLabelValues("error").Inc()
		s.logger.Error("Vectorization failed", zap.Error(err))
		return Stats{}, err
	}
	metrics.IndexRebuildsTotal.WithLabelValues("ok").Inc()
	s.logger.Info("Vector index created",
		zap.String("source", stats.Source),
		zap.Int("entries", stats.Entries),
		zap.Int("dim", stats.Dim),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}

func (s *Service) rebuild(ctx context.Context) (Stats, error) {
	start := time.Now()

	entries, err := s.source.Load(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("load knowledge: %w", err)
	}
	if len(entries) == 0 {
		return Stats{}, domain.ErrKnowledgeEmpty
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.IndexText()
	}

	vectors := make([][]float32, 0, len(texts))
	for offset := 0; offset < len(texts); offset += s.batchSize {
		end := min(offset+s.batchSize, len(texts))
		embs, err := domain.EmbedAll(ctx, s.embed, texts[offset:end])
		if err != nil {
			return Stats{}, fmt.Errorf("embed batch at %d: %w", offset, err)
		}
		for _, e := range embs {
			vectors = append(vectors, e.Vector)
		}
	}

	idx, err := vectorindex.Build(vectors)
	if err != nil {
		return Stats{}, fmt.Errorf("build index: %w", err)
	}
	snap := vectorindex.NewSnapshot(idx, entries)

	if s.store != nil {
		meta := indexstore.Meta{Model: s.model, Dim: idx.Dim(), Count: idx.Len(), BuiltAt: time.Now().UTC()}
		if err := s.store.Save(ctx, snap, meta); err != nil {
			return Stats{}, fmt.Errorf("persist index: %w", err)
		}
	}

	s.holder.Swap(snap)
	metrics.IndexEntries.Set(float64(snap.Len()))

	return Stats{
		Source:   s.source.Name(),
		Entries:  snap.Len(),
		Dim:      idx.Dim(),
		Duration: time.Since(start),
	}, nil
}

// EnsureLoaded publishes the persisted snapshot if the holder is empty.
// A snapshot built with a different embedding model is reported as unavailable.
func (s *Service) EnsureLoaded(ctx context.Context) error {
	if s.holder.Current() != nil {
		return nil
	}
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if s.holder.Current() != nil {
		return nil
	}
	if s.store == nil {
		return domain.ErrIndexUnavailable
	}

	snap, meta, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	if s.model != "" && meta.Model != "" && meta.Model != s.model {
		return domain.NewIndexUnavailable(meta.Model,
			fmt.Errorf("index built with model %q, configured %q", meta.Model, s.model))
	}

	s.holder.Swap(snap)
	metrics.IndexEntries.Set(float64(snap.Len()))
	s.logger.Info("Vector index loaded",
		zap.String("model", meta.Model),
		zap.Int("entries", meta.Count),
		zap.Time("built_at", meta.BuiltAt),
	)
	return nil
}
