package vectorindex

import (
	"fmt"

	"github.com/kailas-cloud/remedex/internal/domain/knowledge"
)

// Snapshot pairs an index with the entries its positions refer to.
// Position i of the index always corresponds to Entries()[i].
type Snapshot struct {
	index   *Flat
	entries []knowledge.Entry
}

// NewSnapshot binds index and entries. It panics if their lengths differ;
// loaders must check counts before calling.
func NewSnapshot(index *Flat, entries []knowledge.Entry) *Snapshot {
	if index.Len() != len(entries) {
		panic(fmt.Sprintf("vectorindex: %d vectors for %d entries", index.Len(), len(entries)))
	}
	return &Snapshot{index: index, entries: entries}
}

// Index returns the vector index.
func (s *Snapshot) Index() *Flat { return s.index }

// Entries returns the entries in index order.
func (s *Snapshot) Entries() []knowledge.Entry { return s.entries }

// Len returns the number of indexed entries.
func (s *Snapshot) Len() int { return len(s.entries) }

// Nearest returns up to k candidates for query, nearest first. NoMatch slots are dropped.
func (s *Snapshot) Nearest(query []float32, k int) ([]knowledge.Candidate, error) {
	hits, err := s.index.Search(query, k)
	if err != nil {
		return nil, err
	}
	out := make([]knowledge.Candidate, 0, len(hits))
	for _, h := range hits {
		if h.Position == NoMatch || h.Position >= len(s.entries) {
			continue
		}
		out = append(out, knowledge.NewCandidate(s.entries[h.Position], h.Distance))
	}
	return out, nil
}
