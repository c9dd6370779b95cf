// Package scoring asks the LLM which retrieved candidates actually fit the issue.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/remedex/internal/domain"
	"github.com/kailas-cloud/remedex/internal/domain/knowledge"
	"github.com/kailas-cloud/remedex/internal/domain/solution"
	"github.com/kailas-cloud/remedex/internal/metrics"
)

const (
	// DefaultWorkers bounds concurrent chunk scoring.
	DefaultWorkers = 4
	// DefaultCallTimeout bounds a single LLM call.
	DefaultCallTimeout = 60 * time.Second
)

var errNoModel = errors.New("no chat model configured")

// Config tunes the scorer. Zero values select defaults.
type Config struct {
	ChunkSize   int
	Threshold   float64
	Workers     int
	RatePerSec  float64
	CallTimeout time.Duration
}

// Result is the scorer output: per-chunk suggestions and the combined outcome.
type Result struct {
	Chunks  []solution.ChunkResult
	Outcome solution.Outcome
}

// Service scores candidates chunk by chunk on a bounded worker pool.
type Service struct {
	llm       domain.ChatModel
	chunkSize int
	threshold float64
	workers   int
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// New creates a scorer. A nil llm makes every chunk use the fallback response.
func New(llm domain.ChatModel, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		llm:       llm,
		chunkSize: cfg.ChunkSize,
		threshold: cfg.Threshold,
		workers:   cfg.Workers,
		timeout:   cfg.CallTimeout,
		logger:    logger,
	}
	if s.chunkSize <= 0 {
		s.chunkSize = DefaultChunkSize
	}
	if s.threshold <= 0 {
		s.threshold = solution.DefaultThreshold
	}
	if s.workers <= 0 {
		s.workers = DefaultWorkers
	}
	if s.timeout <= 0 {
		s.timeout = DefaultCallTimeout
	}
	if cfg.RatePerSec > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), s.workers)
	}
	return s
}

// Threshold returns the admission threshold in effect.
func (s *Service) Threshold() float64 { return s.threshold }

// Score partitions candidates and scores every chunk. It never fails: an LLM error
// turns the affected chunk into a fallback selection. An empty candidate list
// makes no LLM calls.
func (s *Service) Score(ctx context.Context, issue string, candidates []knowledge.Candidate) Result {
	if len(candidates) == 0 {
		metrics.ScoringOutcomesTotal.WithLabelValues(string(solution.OutcomeNoCandidates)).Inc()
		return Result{Outcome: solution.OutcomeNoCandidates}
	}

	chunks := Partition(candidates, s.chunkSize)
	results := make([]solution.ChunkResult, len(chunks))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, c := range chunks {
		g.Go(func() error {
			results[i] = s.scoreChunk(ctx, issue, c)
			return nil
		})
	}
	_ = g.Wait()

	outcomes := make([]solution.Outcome, len(results))
	for i, r := range results {
		outcomes[i] = r.Outcome
	}
	outcome := solution.Combine(outcomes)
	metrics.ScoringOutcomesTotal.WithLabelValues(string(outcome)).Inc()

	return Result{Chunks: results, Outcome: outcome}
}

func (s *Service) scoreChunk(ctx context.Context, issue string, c Chunk) solution.ChunkResult {
	outcome := solution.OutcomeLLMScored
	raw, err := s.complete(ctx, BuildPrompt(issue, c))
	if err != nil {
		s.logger.Warn("LLM unavailable, using fallback selection",
			zap.Int("chunk", c.Index),
			zap.Int("candidates", len(c.Candidates)),
			zap.Error(err),
		)
		raw = solution.FallbackResponse
		outcome = solution.OutcomeFallbackScored
	}

	var admitted []solution.Scored
	for _, sel := range Parse(raw) {
		if !solution.Admit(sel.Confidence, s.threshold) {
			continue
		}
		if sel.LocalIndex < 0 || sel.LocalIndex >= len(c.Candidates) {
			continue
		}
		admitted = append(admitted, solution.NewScored(
			c.Candidates[sel.LocalIndex].Entry(), sel.Confidence, sel.Reason, c.Start+sel.LocalIndex,
		))
	}

	s.logger.Debug("Chunk scored",
		zap.Int("chunk", c.Index),
		zap.String("outcome", string(outcome)),
		zap.Int("admitted", len(admitted)),
	)
	return solution.ChunkResult{Chunk: c.Index, Solutions: admitted, Outcome: outcome}
}

func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, errNoModel)
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.llm.Complete(callCtx, prompt)
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	return raw, nil
}
