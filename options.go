package remedex

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/usecase/analysis"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	embedder Embedder
	llm      ChatModel
	source   KnowledgeSource

	indexDir  string
	model     string
	chunkSize int
	threshold float64

	pipelineUser     string
	pipelinePassword string
	caBundle         string
	insecureTLS      bool

	logger *zap.Logger
}

// WithEmbedder sets the text embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithEmbeddingModel names the embedding model. A persisted index built with a
// different model is ignored on load.
func WithEmbeddingModel(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.model = name
	})
}

// WithLLM sets the chat model used to score candidates.
// Without it every chunk falls back to keyword scoring.
func WithLLM(m ChatModel) Option {
	return optionFunc(func(c *clientConfig) {
		c.llm = m
	})
}

// WithKnowledgeSource replaces the built-in incidents.
func WithKnowledgeSource(s KnowledgeSource) Option {
	return optionFunc(func(c *clientConfig) {
		c.source = s
	})
}

// WithIndexDir persists the index under dir. Without it the index lives in memory only.
func WithIndexDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexDir = dir
	})
}

// WithChunkSize sets how many candidates go into one LLM prompt. Default: 10.
func WithChunkSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.chunkSize = n
	})
}

// WithThreshold sets the confidence a suggestion must exceed. Default: 0.6.
func WithThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.threshold = t
	})
}

// WithPipelineCredentials sets the basic auth used to fetch CI console logs.
func WithPipelineCredentials(user, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.pipelineUser = user
		c.pipelinePassword = password
	})
}

// WithPipelineTLS trusts caBundle for CI servers, or skips verification entirely.
func WithPipelineTLS(caBundle string, insecureSkipVerify bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.caBundle = caBundle
		c.insecureTLS = insecureSkipVerify
	})
}

// WithLogger enables structured logging. Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// AnalyzeOption tunes a single Analyze call.
type AnalyzeOption interface {
	applyAnalyze(*analysis.Options)
}

type analyzeOptionFunc func(*analysis.Options)

func (f analyzeOptionFunc) applyAnalyze(o *analysis.Options) { f(o) }

// WithCandidates sets how many nearest incidents are retrieved. Default: 5.
func WithCandidates(k int) AnalyzeOption {
	return analyzeOptionFunc(func(o *analysis.Options) {
		o.K = k
	})
}

// WithMinConfidence raises the confidence a suggestion must exceed for this call.
// It cannot go below the client threshold.
func WithMinConfidence(t float64) AnalyzeOption {
	return analyzeOptionFunc(func(o *analysis.Options) {
		o.Threshold = t
	})
}

// WithMaxResults caps the number of suggestions. Default: 5.
func WithMaxResults(n int) AnalyzeOption {
	return analyzeOptionFunc(func(o *analysis.Options) {
		o.MaxResults = n
	})
}
