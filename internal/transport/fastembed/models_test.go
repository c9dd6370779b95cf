package fastembed

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/remedex/internal/domain"
)

func TestDimension(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"BAAI/bge-base-en-v1.5", 768},
		{"fast-bge-small-en-v1.5", 384},
		{"sentence-transformers/all-MiniLM-L6-v2", 384},
		{"unknown/model", 0},
	}
	for _, tc := range tests {
		if got := Dimension(tc.model); got != tc.want {
			t.Errorf("Dimension(%q) = %d, want %d", tc.model, got, tc.want)
		}
	}
}

// Embedder is registered as the health service's embedding checker.
var _ interface {
	HealthCheck(ctx context.Context) error
} = (*Embedder)(nil)

func TestToEmbeddings(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float32
		inputs  int
		dim     int
		wantErr bool
	}{
		{"matching", [][]float32{{1, 2}, {3, 4}}, 2, 2, false},
		{"no output", nil, 1, 2, true},
		{"fewer vectors", [][]float32{{1, 2}}, 2, 2, true},
		{"wrong size", [][]float32{{1, 2, 3}}, 1, 2, true},
		{"size unchecked", [][]float32{{1, 2, 3}}, 1, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := toEmbeddings(tc.vectors, tc.inputs, tc.dim)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrEmbeddingProviderError) {
					t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(out) != tc.inputs {
				t.Errorf("got %d embeddings, want %d", len(out), tc.inputs)
			}
		})
	}
}
