package retrieval

import "context"

// IndexLoader publishes a persisted snapshot when none is loaded yet.
type IndexLoader interface {
	EnsureLoaded(ctx context.Context) error
}
