package domain

import (
	"context"
	"fmt"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (Embedding, error)
}

// BatchEmbedder vectorizes multiple texts in a single provider call.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Embedding is a single vector plus the tokens the provider billed for it.
type Embedding struct {
	Vector []float32
	Tokens int
}

// EmbedAll vectorizes texts with the native batch call when the embedder supports it,
// otherwise one text at a time.
func EmbedAll(ctx context.Context, e Embedder, texts []string) ([]Embedding, error) {
	if be, ok := e.(BatchEmbedder); ok {
		out, err := be.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch: %w", err)
		}
		if len(out) != len(texts) {
			return nil, fmt.Errorf("embed batch: got %d vectors for %d texts: %w",
				len(out), len(texts), ErrEmbeddingProviderError)
		}
		return out, nil
	}

	out := make([]Embedding, len(texts))
	for i, text := range texts {
		res, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed [%d]: %w", i, err)
		}
		out[i] = res
	}
	return out, nil
}

// PrefixEmbedder prepends a fixed prefix (e.g. "query: ") before embedding.
type PrefixEmbedder struct {
	inner  Embedder
	prefix string
}

// NewPrefixEmbedder wraps inner. An empty prefix returns inner unchanged.
func NewPrefixEmbedder(inner Embedder, prefix string) Embedder {
	if prefix == "" {
		return inner
	}
	return &PrefixEmbedder{inner: inner, prefix: prefix}
}

// Embed prepends the prefix and delegates to the inner embedder.
func (e *PrefixEmbedder) Embed(ctx context.Context, text string) (Embedding, error) {
	res, err := e.inner.Embed(ctx, e.prefix+text)
	if err != nil {
		return Embedding{}, fmt.Errorf("prefix embed: %w", err)
	}
	return res, nil
}

// EmbedBatch prefixes every text and goes through EmbedAll on the inner embedder.
func (e *PrefixEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]Embedding, error) {
	prefixed := make([]string, len(texts))
	for i, t := range texts {
		prefixed[i] = e.prefix + t
	}
	return EmbedAll(ctx, e.inner, prefixed)
}
