// Package pipelinelog replaces CI/CD job URLs in a query with the error lines of the job's console.
package pipelinelog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/domain"
	"github.com/kailas-cloud/remedex/internal/metrics"
)

// DefaultMaxLines caps the error lines forwarded to retrieval.
const DefaultMaxLines = 100

// Source tells where the effective query came from.
type Source string

const (
	// SourceDirect means the input had no pipeline URL and is used unchanged.
	SourceDirect Source = "direct"
	// SourcePipeline means the console was fetched with status 200.
	SourcePipeline Source = "pipeline"
	// SourceUnauthorized means the CI server answered 401.
	SourceUnauthorized Source = "unauthorized"
	// SourceHTTPError means the CI server answered another non-200 status.
	SourceHTTPError Source = "http_error"
	// SourceTimeout means the fetch exceeded its deadline.
	SourceTimeout Source = "timeout"
	// SourceConnectionError means any other transport failure.
	SourceConnectionError Source = "connection_error"
)

// Result is the outcome of MaybeRewrite.
type Result struct {
	Source         Source
	EffectiveQuery string
	URL            string
	StatusCode     int
	ErrorLines     int
}

// Service detects pipeline URLs and fetches their console logs.
type Service struct {
	fetcher  ConsoleFetcher
	maxLines int
	logger   *zap.Logger
}

// New creates a Service. A nil fetcher disables pipeline detection.
func New(fetcher ConsoleFetcher, maxLines int, logger *zap.Logger) *Service {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{fetcher: fetcher, maxLines: maxLines, logger: logger}
}

// MaybeRewrite returns the query that retrieval should use for input.
// Fetch failures become a descriptive query text and a Source marker; it never fails.
func (s *Service) MaybeRewrite(ctx context.Context, input string) Result {
	if s.fetcher == nil {
		return Result{Source: SourceDirect, EffectiveQuery: input}
	}
	url, ok := DetectURL(input)
	if !ok {
		return Result{Source: SourceDirect, EffectiveQuery: input}
	}

	res := s.fetch(ctx, url)
	metrics.PipelineFetchTotal.WithLabelValues(string(res.Source)).Inc()
	s.logger.Info("Pipeline query detected",
		zap.String("url", url),
		zap.String("source", string(res.Source)),
		zap.Int("status", res.StatusCode),
		zap.Int("error_lines", res.ErrorLines),
	)
	return res
}

func (s *Service) fetch(ctx context.Context, url string) Result {
	res := Result{URL: url}

	status, body, err := s.fetcher.FetchConsole(ctx, ConsoleURL(url))
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamTimeout) || errors.Is(err, context.DeadlineExceeded) {
			res.Source = SourceTimeout
			res.EffectiveQuery = "Pipeline API timeout for " + url
			return res
		}
		res.Source = SourceConnectionError
		res.EffectiveQuery = fmt.Sprintf("Pipeline connection error: %v", err)
		return res
	}
	res.StatusCode = status

	switch status {
	case http.StatusOK:
		lines := FilterErrorLines(body, s.maxLines)
		res.Source = SourcePipeline
		res.ErrorLines = len(lines)
		if len(lines) == 0 {
			res.EffectiveQuery = "No specific error logs found in pipeline console output from " + url
			return res
		}
		res.EffectiveQuery = strings.Join(lines, "\n")
	case http.StatusUnauthorized:
		res.Source = SourceUnauthorized
		res.EffectiveQuery = "Pipeline access denied for " + url + ". Please check credentials."
	default:
		res.Source = SourceHTTPError
		res.EffectiveQuery = "Could not fetch pipeline logs from " + url
	}
	return res
}
