// Package ranking merges per-chunk scoring results into the final suggestion list.
package ranking

import (
	"sort"

	"github.com/kailas-cloud/remedex/internal/domain/solution"
)

// DefaultMaxResults caps the suggestions returned to the caller.
const DefaultMaxResults = 5

// Aggregate concatenates chunk results ordered by (chunk, candidate index), then
// stable-sorts by confidence descending and truncates to maxResults. Ties keep
// candidate order whatever order the LLM answered in. Duplicates are kept.
// maxResults <= 0 means no limit.
func Aggregate(chunks []solution.ChunkResult, maxResults int) []solution.Scored {
	ordered := make([]solution.ChunkResult, len(chunks))
	copy(ordered, chunks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Chunk < ordered[j].Chunk
	})

	var all []solution.Scored
	for _, c := range ordered {
		start := len(all)
		all = append(all, c.Solutions...)
		part := all[start:]
		sort.SliceStable(part, func(i, j int) bool {
			return part[i].GlobalIndex() < part[j].GlobalIndex()
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence() > all[j].Confidence()
	})

	if maxResults > 0 && len(all) > maxResults {
		all = all[:maxResults]
	}
	return all
}
