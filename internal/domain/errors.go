package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput signals a malformed request (blank issue, bad limits).
	ErrInvalidInput = errors.New("invalid input")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLLMUnavailable signals a failed or timed out chat completion.
	ErrLLMUnavailable = errors.New("llm unavailable")
	// ErrKnowledgeEmpty signals that no knowledge source produced entries.
	ErrKnowledgeEmpty = errors.New("knowledge base is empty")
	// ErrIndexUnavailable signals a missing, unreadable or inconsistent persisted index.
	ErrIndexUnavailable = errors.New("index unavailable")
	// ErrRebuildInProgress signals that another vectorization is already running.
	ErrRebuildInProgress = errors.New("rebuild in progress")
	// ErrUpstreamTimeout signals that a remote dependency did not answer in time.
	ErrUpstreamTimeout = errors.New("upstream timeout")
)

// IndexUnavailableError wraps ErrIndexUnavailable with the artifact that failed.
type IndexUnavailableError struct {
	Path  string
	Cause error
}

func (e *IndexUnavailableError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", ErrIndexUnavailable.Error(), e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", ErrIndexUnavailable.Error(), e.Path, e.Cause)
}

func (e *IndexUnavailableError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrIndexUnavailable}
	}
	return []error{ErrIndexUnavailable, e.Cause}
}

// NewIndexUnavailable creates an index unavailable error for path.
func NewIndexUnavailable(path string, cause error) error {
	return &IndexUnavailableError{Path: path, Cause: cause}
}
