package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/domain"
	"github.com/kailas-cloud/remedex/internal/domain/solution"
	logpkg "github.com/kailas-cloud/remedex/internal/logger"
	"github.com/kailas-cloud/remedex/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/remedex/internal/usecase/health"
	"github.com/kailas-cloud/remedex/internal/usecase/vectorize"
	"github.com/kailas-cloud/remedex/internal/version"
)

const (
	analysisMethod = "AI + Vector Search + Confidence Scoring"
	maxBodyBytes   = 1 << 20
)

// Analyzer runs one incident analysis.
type Analyzer interface {
	Analyze(ctx context.Context, issue string, opts analysis.Options) analysis.Report
}

// Vectorizer rebuilds the knowledge index.
type Vectorizer interface {
	Vectorize(ctx context.Context) (vectorize.Stats, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the DevOps analysis API.
type Server struct {
	analyzer      Analyzer
	vectorizer    Vectorizer
	health        HealthChecker
	defaults      analysis.Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(analyzer Analyzer, vectorizer Vectorizer, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		analyzer:   analyzer,
		vectorizer: vectorizer,
		health:     health,
		defaults:   analysis.DefaultOptions(),
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrRebuildInProgress, http.StatusConflict, CodeRebuildInProgress),
		sentinelHandler(domain.ErrKnowledgeEmpty, http.StatusUnprocessableEntity, CodeKnowledgeEmpty),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrUpstreamTimeout, http.StatusGatewayTimeout, CodeUpstreamTimeout),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, CodeIndexUnavailable),
	}
	return s
}

// WithDefaultOptions sets the options used when a request does not override them.
func (s *Server) WithDefaultOptions(opts analysis.Options) *Server {
	def := analysis.DefaultOptions()
	if opts.K > 0 {
		def.K = opts.K
	}
	if opts.MaxResults > 0 {
		def.MaxResults = opts.MaxResults
	}
	def.Threshold = max(def.Threshold, opts.Threshold)
	s.defaults = def
	return s
}

type analyzeRequest struct {
	Issue             string `json:"issue"`
	IncludeConfidence *bool  `json:"include_confidence,omitempty"`
	MaxSolutions      *int   `json:"max_solutions,omitempty"`
}

type solutionJSON struct {
	Failure     string  `json:"failure"`
	RootCause   string  `json:"root_cause"`
	Solution    string  `json:"solution"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
	GlobalIndex int     `json:"global_index"`
}

type analyzeResponse struct {
	Status         string         `json:"status"`
	Message        string         `json:"message"`
	Query          string         `json:"query"`
	EffectiveQuery string         `json:"effective_query"`
	Source         string         `json:"source"`
	AnalysisID     string         `json:"analysis_id"`
	Outcome        string         `json:"outcome"`
	Diagnostic     string         `json:"diagnostic,omitempty"`
	Solutions      []solutionJSON `json:"solutions"`
	TotalSolutions int            `json:"total_solutions"`
	AnalysisMethod string         `json:"analysis_method"`
}

type quickSolutionJSON struct {
	Failure    string `json:"failure"`
	Solution   string `json:"solution"`
	Confidence string `json:"confidence"`
}

type quickAnalyzeResponse struct {
	Status         string              `json:"status"`
	Message        string              `json:"message"`
	Query          string              `json:"query"`
	SolutionsCount int                 `json:"solutions_count"`
	Solutions      []quickSolutionJSON `json:"solutions"`
	Note           string              `json:"note"`
}

type vectorizeResponse struct {
	Status     string `json:"status"`
	Source     string `json:"source"`
	Entries    int    `json:"entries"`
	Dim        int    `json:"dim"`
	DurationMs int64  `json:"duration_ms"`
}

type healthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Checks       map[string]string `json:"checks"`
	IndexEntries int               `json:"index_entries"`
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "remedex DevOps remediation assistant",
		"status":  "running",
		"version": version.Version,
		"endpoints": map[string]string{
			"analyze":   "/devops/analyze",
			"vectorize": "/devops/vectorize",
			"health":    "/health",
			"metrics":   "/metrics",
		},
	})
}

// Analyze handles POST /devops/analyze.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	opts, err := analyzeOptions(req, s.defaults)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	report := s.analyzer.Analyze(r.Context(), req.Issue, opts)
	logpkg.FromContext(r.Context()).Debug("analysis served",
		zap.String("analysis_id", report.ID.String()),
		zap.Int("solutions", len(report.Solutions)),
	)
	writeJSON(w, http.StatusOK, toAnalyzeResponse(report))
}

// QuickAnalyze handles GET /devops/analyze?issue=...
func (s *Server) QuickAnalyze(w http.ResponseWriter, r *http.Request) {
	var issue string
	if err := runtime.BindQueryParameter("form", true, true, "issue", r.URL.Query(), &issue); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(issue) == "" {
		s.handleDomainError(w, fmt.Errorf("%w: issue must not be empty", domain.ErrInvalidInput))
		return
	}

	full := toAnalyzeResponse(s.analyzer.Analyze(r.Context(), issue, s.defaults))

	quick := make([]quickSolutionJSON, len(full.Solutions))
	for i, sol := range full.Solutions {
		quick[i] = quickSolutionJSON{
			Failure:    sol.Failure,
			Solution:   sol.Solution,
			Confidence: formatPercent(sol.Confidence),
		}
	}
	writeJSON(w, http.StatusOK, quickAnalyzeResponse{
		Status:         full.Status,
		Message:        full.Message,
		Query:          full.Query,
		SolutionsCount: full.TotalSolutions,
		Solutions:      quick,
		Note:           "Use POST /devops/analyze for full structured response",
	})
}

// Vectorize handles POST /devops/vectorize.
func (s *Server) Vectorize(w http.ResponseWriter, r *http.Request) {
	stats, err := s.vectorizer.Vectorize(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vectorizeResponse{
		Status:     "success",
		Source:     stats.Source,
		Entries:    stats.Entries,
		Dim:        stats.Dim,
		DurationMs: stats.Duration.Milliseconds(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:       string(report.Status),
		Version:      version.Version,
		Checks:       checks,
		IndexEntries: report.IndexEntries,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// analyzeOptions maps request flags onto engine options. The engine threshold is
// always applied, so include_confidence=false cannot admit weaker suggestions.
func analyzeOptions(req analyzeRequest, opts analysis.Options) (analysis.Options, error) {
	if strings.TrimSpace(req.Issue) == "" {
		return analysis.Options{}, fmt.Errorf("%w: issue must not be empty", domain.ErrInvalidInput)
	}
	if req.MaxSolutions != nil {
		if *req.MaxSolutions < 1 {
			return analysis.Options{}, fmt.Errorf("%w: max_solutions must be at least 1", domain.ErrInvalidInput)
		}
		opts.MaxResults = *req.MaxSolutions
	}
	if req.IncludeConfidence != nil && !*req.IncludeConfidence {
		opts.Threshold = 0
	}
	return opts, nil
}

func toAnalyzeResponse(r analysis.Report) analyzeResponse {
	sols := make([]solutionJSON, len(r.Solutions))
	for i, sc := range r.Solutions {
		sols[i] = toSolutionJSON(sc)
	}

	msg := "No specific solutions found, but analysis completed"
	if len(sols) > 0 {
		msg = fmt.Sprintf("Found %d AI-powered solutions for your DevOps issue", len(sols))
	}

	return analyzeResponse{
		Status:         "success",
		Message:        msg,
		Query:          r.Query,
		EffectiveQuery: r.EffectiveQuery,
		Source:         string(r.Source),
		AnalysisID:     r.ID.String(),
		Outcome:        string(r.Outcome),
		Diagnostic:     r.Diagnostic,
		Solutions:      sols,
		TotalSolutions: len(sols),
		AnalysisMethod: analysisMethod,
	}
}

func toSolutionJSON(sc solution.Scored) solutionJSON {
	return solutionJSON{
		Failure:     sc.Failure(),
		RootCause:   sc.RootCause(),
		Solution:    sc.Solution(),
		Confidence:  sc.Confidence(),
		Reason:      sc.Reason(),
		GlobalIndex: sc.GlobalIndex(),
	}
}

// formatPercent renders 0.95 as "95.0%".
func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Invalid input keeps its detail since it only echoes the request.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidInput) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrRebuildInProgress,
		domain.ErrKnowledgeEmpty,
		domain.ErrEmbeddingProviderError,
		domain.ErrUpstreamTimeout,
		domain.ErrIndexUnavailable,
		domain.ErrVectorDimMismatch,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
