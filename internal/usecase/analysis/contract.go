package analysis

import (
	"context"

	"github.com/kailas-cloud/remedex/internal/domain/knowledge"
	"github.com/kailas-cloud/remedex/internal/usecase/pipelinelog"
	"github.com/kailas-cloud/remedex/internal/usecase/retrieval"
	"github.com/kailas-cloud/remedex/internal/usecase/scoring"
)

// QueryRewriter swaps pipeline URLs for their console error lines.
type QueryRewriter interface {
	MaybeRewrite(ctx context.Context, input string) pipelinelog.Result
}

// Retriever returns nearest knowledge entries for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) retrieval.Result
}

// Scorer runs the LLM relevance pass over candidates.
type Scorer interface {
	Score(ctx context.Context, issue string, candidates []knowledge.Candidate) scoring.Result
	Threshold() float64
}

// Notifier receives every completed report. Errors are logged by the engine.
type Notifier interface {
	Notify(ctx context.Context, r Report) error
}
