package remedex

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/domain"
	"github.com/kailas-cloud/remedex/internal/domain/knowledge"
	"github.com/kailas-cloud/remedex/internal/domain/solution"
	"github.com/kailas-cloud/remedex/internal/repository/indexstore"
	kbrepo "github.com/kailas-cloud/remedex/internal/repository/knowledge"
	"github.com/kailas-cloud/remedex/internal/transport/ci"
	"github.com/kailas-cloud/remedex/internal/usecase/analysis"
	"github.com/kailas-cloud/remedex/internal/usecase/pipelinelog"
	"github.com/kailas-cloud/remedex/internal/usecase/retrieval"
	"github.com/kailas-cloud/remedex/internal/usecase/scoring"
	"github.com/kailas-cloud/remedex/internal/usecase/vectorize"
	"github.com/kailas-cloud/remedex/internal/vectorindex"
)

// ErrRebuildInProgress is returned by Vectorize while another rebuild runs.
var ErrRebuildInProgress = domain.ErrRebuildInProgress

// ErrKnowledgeEmpty is returned by Vectorize when the knowledge source has no incidents.
var ErrKnowledgeEmpty = domain.ErrKnowledgeEmpty

// Client is the remedex SDK entry point.
type Client struct {
	vectorizer *vectorize.Service
	engine     *analysis.Service
	holder     *vectorindex.Holder
}

// New wires an engine in-process. It does not touch the index: call Vectorize,
// or rely on Analyze loading the index persisted under WithIndexDir.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder == nil {
		return nil, errors.New("remedex: embedder required (use WithEmbedder)")
	}
	if cfg.threshold < 0 || cfg.threshold >= 1 {
		return nil, fmt.Errorf("remedex: threshold must be in [0, 1), got %v", cfg.threshold)
	}
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ciClient, err := ci.NewClient(ci.Config{
		User:               cfg.pipelineUser,
		Password:           cfg.pipelinePassword,
		CABundle:           cfg.caBundle,
		InsecureSkipVerify: cfg.insecureTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("remedex: create pipeline client: %w", err)
	}

	return wireClient(cfg, ciClient, logger), nil
}

func wireClient(cfg *clientConfig, fetcher pipelinelog.ConsoleFetcher, logger *zap.Logger) *Client {
	embedder := adaptEmbedder(cfg.embedder)

	var source vectorize.KnowledgeSource = kbrepo.NewBuiltin()
	if cfg.source != nil {
		source = &sourceAdapter{inner: cfg.source}
	}

	// nil interface, not a typed nil pointer, keeps the vectorizer in memory-only mode
	var store vectorize.SnapshotStore
	if cfg.indexDir != "" {
		store = indexstore.NewFileStore(cfg.indexDir)
	}

	var llm domain.ChatModel
	if cfg.llm != nil {
		llm = cfg.llm
	}

	holder := vectorindex.NewHolder()
	vec := vectorize.New(source, embedder, store, holder, cfg.model, 0, logger)
	engine := analysis.New(
		pipelinelog.New(fetcher, 0, logger),
		retrieval.New(holder, vec, embedder, logger),
		scoring.New(llm, scoring.Config{ChunkSize: cfg.chunkSize, Threshold: cfg.threshold}, logger),
		analysis.NewLogNotifier(logger),
		logger,
	)
	return &Client{vectorizer: vec, engine: engine, holder: holder}
}

// Close releases all resources.
func (c *Client) Close() {
	c.holder.Swap(nil)
}

// Vectorize rebuilds the index from the knowledge source and persists it when
// an index directory is configured.
func (c *Client) Vectorize(ctx context.Context) (VectorizeStats, error) {
	stats, err := c.vectorizer.Vectorize(ctx)
	if err != nil {
		return VectorizeStats{}, fmt.Errorf("remedex: vectorize: %w", err)
	}
	return VectorizeStats{Entries: stats.Entries, Dim: stats.Dim, Duration: stats.Duration}, nil
}

// Analyze returns ranked remediations for issue. It never fails: unavailable
// dependencies show up in Report.Diagnostic, Report.Source and Report.Outcome.
func (c *Client) Analyze(ctx context.Context, issue string, opts ...AnalyzeOption) Report {
	o := analysis.DefaultOptions()
	for _, opt := range opts {
		opt.applyAnalyze(&o)
	}
	return toReport(c.engine.Analyze(ctx, issue, o))
}

func toReport(r analysis.Report) Report {
	out := Report{
		ID:             r.ID.String(),
		Query:          r.Query,
		EffectiveQuery: r.EffectiveQuery,
		Source:         string(r.Source),
		PipelineURL:    r.PipelineURL,
		Outcome:        string(r.Outcome),
		Candidates:     r.Candidates,
		Diagnostic:     r.Diagnostic,
		Suggestions:    make([]Suggestion, len(r.Solutions)),
		Duration:       r.Duration,
	}
	for i, sc := range r.Solutions {
		out.Suggestions[i] = toSuggestion(sc)
	}
	return out
}

func toSuggestion(sc solution.Scored) Suggestion {
	return Suggestion{
		Failure:     sc.Failure(),
		RootCause:   sc.RootCause(),
		Solution:    sc.Solution(),
		Confidence:  sc.Confidence(),
		Reason:      sc.Reason(),
		GlobalIndex: sc.GlobalIndex(),
		Fallback:    sc.IsFallback(),
	}
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.Embedding, error) {
	v, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.Embedding{}, fmt.Errorf("embed: %w", err)
	}
	return domain.Embedding{Vector: v}, nil
}

// batchEmbedderAdapter additionally forwards batch calls.
type batchEmbedderAdapter struct {
	embedderAdapter
	batch BatchEmbedder
}

func (a *batchEmbedderAdapter) EmbedBatch(ctx context.Context, texts []string) ([]domain.Embedding, error) {
	vs, err := a.batch.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	out := make([]domain.Embedding, len(vs))
	for i, v := range vs {
		out[i] = domain.Embedding{Vector: v}
	}
	return out, nil
}

func adaptEmbedder(e Embedder) domain.Embedder {
	base := embedderAdapter{inner: e}
	if be, ok := e.(BatchEmbedder); ok {
		return &batchEmbedderAdapter{embedderAdapter: base, batch: be}
	}
	return &base
}

// sourceAdapter validates caller incidents into knowledge entries.
type sourceAdapter struct {
	inner KnowledgeSource
}

func (s *sourceAdapter) Name() string { return "sdk" }

func (s *sourceAdapter) Load(ctx context.Context) ([]knowledge.Entry, error) {
	incidents, err := s.inner.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load incidents: %w", err)
	}
	entries := make([]knowledge.Entry, 0, len(incidents))
	for i, inc := range incidents {
		e, err := knowledge.New(i, inc.Failure, inc.RootCause, inc.Solution)
		if err != nil {
			return nil, fmt.Errorf("incident %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
