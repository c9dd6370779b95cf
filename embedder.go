package remedex

import "context"

// Embedder converts text to a vector. Required.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder vectorizes multiple texts in a single call.
// Optional: if the Embedder also implements it, vectorization uses it.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel answers a single prompt.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Incident is a known failure with its remediation.
type Incident struct {
	Failure   string
	RootCause string
	Solution  string
}

// KnowledgeSource supplies the incidents to index. The built-in reference
// incidents are used when none is configured.
type KnowledgeSource interface {
	Load(ctx context.Context) ([]Incident, error)
}
