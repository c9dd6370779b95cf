// Package knowledge supplies knowledge-base entries from SQLite or the built-in set.
package knowledge

import (
	"context"

	domkn "github.com/kailas-cloud/remedex/internal/domain/knowledge"
)

// Source loads the current knowledge base. An absent backing store yields
// an empty slice and no error.
type Source interface {
	Load(ctx context.Context) ([]domkn.Entry, error)
	Name() string
}
