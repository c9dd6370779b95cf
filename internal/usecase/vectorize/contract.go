package vectorize

import (
	"context"

	"github.com/kailas-cloud/remedex/internal/domain/knowledge"
	"github.com/kailas-cloud/remedex/internal/repository/indexstore"
	"github.com/kailas-cloud/remedex/internal/vectorindex"
)

// KnowledgeSource supplies the entries to index.
type KnowledgeSource interface {
	Load(ctx context.Context) ([]knowledge.Entry, error)
	Name() string
}

// SnapshotStore persists snapshots across restarts.
type SnapshotStore interface {
	Save(ctx context.Context, snap *vectorindex.Snapshot, meta indexstore.Meta) error
	Load(ctx context.Context) (*vectorindex.Snapshot, indexstore.Meta, error)
}
