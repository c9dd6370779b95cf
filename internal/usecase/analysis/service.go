// Package analysis runs the full remediation pipeline for one incident description.
package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/domain/solution"
	"github.com/kailas-cloud/remedex/internal/usecase/pipelinelog"
	"github.com/kailas-cloud/remedex/internal/usecase/ranking"
	"github.com/kailas-cloud/remedex/internal/usecase/retrieval"
)

// Options tune a single analysis. Zero values select the defaults.
type Options struct {
	K          int
	Threshold  float64
	MaxResults int
}

// DefaultOptions returns K=5, Threshold=0.6, MaxResults=5.
func DefaultOptions() Options {
	return Options{K: retrieval.DefaultK, Threshold: solution.DefaultThreshold, MaxResults: ranking.DefaultMaxResults}
}

// Report is the result of one analysis.
type Report struct {
	ID             uuid.UUID
	Query          string
	EffectiveQuery string
	Source         pipelinelog.Source
	PipelineURL    string
	Candidates     int
	Outcome        solution.Outcome
	Solutions      []solution.Scored
	Diagnostic     string
	Duration       time.Duration
}

// Service wires rewrite, retrieval, scoring and ranking together.
type Service struct {
	rewriter  QueryRewriter
	retriever Retriever
	scorer    Scorer
	notifier  Notifier
	logger    *zap.Logger
}

// New creates the engine. A nil notifier logs completions instead.
func New(rewriter QueryRewriter, retriever Retriever, scorer Scorer, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Service{
		rewriter:  rewriter,
		retriever: retriever,
		scorer:    scorer,
		notifier:  notifier,
		logger:    logger,
	}
}

// Analyze returns ranked remediation suggestions for issue. It never fails: missing
// indexes, embedding or LLM outages and CI fetch errors are reported through
// Diagnostic, Source and Outcome.
func (s *Service) Analyze(ctx context.Context, issue string, opts Options) Report {
	start := time.Now()
	opts = s.normalize(opts)

	report := Report{
		ID:             uuid.New(),
		Query:          issue,
		EffectiveQuery: issue,
		Source:         pipelinelog.SourceDirect,
		Outcome:        solution.OutcomeNoCandidates,
	}

	if strings.TrimSpace(issue) == "" {
		report.Diagnostic = "empty issue"
		return s.finish(ctx, report, start)
	}

	rewritten := s.rewriter.MaybeRewrite(ctx, issue)
	report.EffectiveQuery = rewritten.EffectiveQuery
	report.Source = rewritten.Source
	report.PipelineURL = rewritten.URL

	retrieved := s.retriever.Retrieve(ctx, report.EffectiveQuery, opts.K)
	report.Candidates = len(retrieved.Candidates)
	report.Diagnostic = retrieved.Diagnostic

	scored := s.scorer.Score(ctx, report.EffectiveQuery, retrieved.Candidates)
	report.Outcome = scored.Outcome

	ranked := ranking.Aggregate(scored.Chunks, opts.MaxResults)
	report.Solutions = narrow(ranked, opts.Threshold)

	return s.finish(ctx, report, start)
}

// normalize fills defaults. The caller threshold can only be stricter than the scorer's.
func (s *Service) normalize(opts Options) Options {
	def := DefaultOptions()
	if opts.K <= 0 {
		opts.K = def.K
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = def.MaxResults
	}
	opts.Threshold = max(opts.Threshold, s.scorer.Threshold())
	return opts
}

func narrow(in []solution.Scored, threshold float64) []solution.Scored {
	out := make([]solution.Scored, 0, len(in))
	for _, sc := range in {
		if solution.Admit(sc.Confidence(), threshold) {
			out = append(out, sc)
		}
	}
	return out
}

func (s *Service) finish(ctx context.Context, r Report, start time.Time) Report {
	r.Duration = time.Since(start)

	s.logger.Info("Analysis completed",
		zap.String("analysis_id", r.ID.String()),
		zap.String("source", string(r.Source)),
		zap.String("outcome", string(r.Outcome)),
		zap.Int("candidates", r.Candidates),
		zap.Int("solutions", len(r.Solutions)),
		zap.String("diagnostic", r.Diagnostic),
		zap.Duration("duration", r.Duration),
	)

	if err := s.notifier.Notify(ctx, r); err != nil {
		s.logger.Warn("Notification failed", zap.String("analysis_id", r.ID.String()), zap.Error(err))
	}
	return r
}
