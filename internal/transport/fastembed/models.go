// Package fastembed runs local ONNX embedding models through fastembed-go.
package fastembed

import (
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/remedex/internal/domain"
)

// ErrUnavailable is returned when the binary is built without cgo.
var ErrUnavailable = errors.New("fastembed: not available (binary built without cgo, use the openai provider)")

// Config configures the local embedder.
type Config struct {
	// Model is a Hugging Face style name, e.g. "BAAI/bge-base-en-v1.5".
	Model string
	// CacheDir holds downloaded model files. Defaults to ./local_cache.
	CacheDir  string
	MaxLength int
	BatchSize int
	// Timeout bounds a single batch. Zero means no limit.
	Timeout time.Duration
}

type modelInfo struct {
	name string // fastembed model identifier, also the cache subdirectory
	dim  int
}

var knownModels = map[string]modelInfo{
	"BAAI/bge-small-en-v1.5":                 {"fast-bge-small-en-v1.5", 384},
	"BAAI/bge-small-en":                      {"fast-bge-small-en", 384},
	"BAAI/bge-base-en-v1.5":                  {"fast-bge-base-en-v1.5", 768},
	"BAAI/bge-base-en":                       {"fast-bge-base-en", 768},
	"sentence-transformers/all-MiniLM-L6-v2": {"fast-all-MiniLM-L6-v2", 384},
}

func lookupModel(name string) (modelInfo, error) {
	if info, ok := knownModels[name]; ok {
		return info, nil
	}
	for _, info := range knownModels {
		if info.name == name {
			return info, nil
		}
	}
	return modelInfo{}, fmt.Errorf("fastembed: unsupported model %q", name)
}

// Dimension returns the vector size of a known model, or 0.
func Dimension(model string) int {
	info, err := lookupModel(model)
	if err != nil {
		return 0
	}
	return info.dim
}

// toEmbeddings checks the inference output against the request: one vector per
// input, each of the model dimension (dim <= 0 skips the size check).
func toEmbeddings(vectors [][]float32, inputs, dim int) ([]domain.Embedding, error) {
	if len(vectors) != inputs {
		return nil, fmt.Errorf("fastembed: got %d vectors for %d inputs: %w",
			len(vectors), inputs, domain.ErrEmbeddingProviderError)
	}
	out := make([]domain.Embedding, len(vectors))
	for i, v := range vectors {
		if dim > 0 && len(v) != dim {
			return nil, fmt.Errorf("fastembed: vector %d has %d dims, want %d: %w",
				i, len(v), dim, domain.ErrEmbeddingProviderError)
		}
		out[i] = domain.Embedding{Vector: v}
	}
	return out, nil
}
