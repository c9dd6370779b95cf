//go:build cgo

package fastembed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	fastembed "github.com/anush008/fastembed-go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/domain"
	"github.com/kailas-cloud/remedex/internal/metrics"
)

const providerName = "fastembed"

// Embedder implements domain.Embedder with a local ONNX model.
type Embedder struct {
	model     *fastembed.FlagEmbedding
	name      string
	dim       int
	batchSize int
	timeout   time.Duration
	mu        sync.Mutex
}

// New loads the model from CacheDir, downloading it when it is not cached yet.
func New(cfg Config, logger *zap.Logger) (*Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := lookupModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(".", "local_cache")
	}
	maxLength := cfg.MaxLength
	if maxLength == 0 {
		maxLength = 512
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 256
	}

	if _, err := os.Stat(filepath.Join(cacheDir, info.name)); err == nil {
		logger.Info("Loading local embedding model", zap.String("model", cfg.Model), zap.String("cache_dir", cacheDir))
	} else {
		logger.Info("Embedding model not cached, downloading", zap.String("model", cfg.Model), zap.String("cache_dir", cacheDir))
	}

	showProgress := false
	flag, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                fastembed.EmbeddingModel(info.name),
		CacheDir:             cacheDir,
		MaxLength:            maxLength,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("init fastembed %s: %w", cfg.Model, err)
	}

	return &Embedder{model: flag, name: cfg.Model, dim: info.dim, batchSize: batchSize, timeout: cfg.Timeout}, nil
}

// Dimension returns the model vector size.
func (e *Embedder) Dimension() int { return e.dim }

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.Embedding, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return domain.Embedding{}, err
	}
	if len(out) != 1 {
		return domain.Embedding{}, fmt.Errorf("fastembed: empty output: %w", domain.ErrEmbeddingProviderError)
	}
	return out[0], nil
}

// HealthCheck runs one inference and checks the vector size.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.Embed(ctx, "health check"); err != nil {
		return fmt.Errorf("fastembed health check: %w", err)
	}
	return nil
}

// EmbedBatch implements domain.BatchEmbedder. Inputs are embedded without a query/passage prefix
// so index text and queries share one vector space.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([]domain.Embedding, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fastembed: %w", err)
	}

	start := time.Now()
	vectors, err := e.run(ctx, texts)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.name, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.name, "inference").Inc()
		return nil, fmt.Errorf("fastembed: %v: %w", err, domain.ErrEmbeddingProviderError)
	}
	out, err := toEmbeddings(vectors, len(texts), e.dim)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.name, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.name, "malformed_output").Inc()
		return nil, err
	}
	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.name, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.name).Observe(time.Since(start).Seconds())
	return out, nil
}

// run executes inference, bounded by timeout. ONNX sessions are not cancellable,
// so on timeout the call keeps running in the background and its result is dropped.
func (e *Embedder) run(ctx context.Context, texts []string) ([][]float32, error) {
	type result struct {
		vectors [][]float32
		err     error
	}
	done := make(chan result, 1)
	go func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		v, err := e.model.Embed(texts, e.batchSize)
		done <- result{v, err}
	}()

	var timeout <-chan time.Time
	if e.timeout > 0 {
		timer := time.NewTimer(e.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case r := <-done:
		return r.vectors, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout:
		return nil, fmt.Errorf("inference exceeded %s", e.timeout)
	}
}

// Close releases the ONNX session.
func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model != nil {
		return e.model.Destroy()
	}
	return nil
}
