package scoring

import "github.com/kailas-cloud/remedex/internal/domain/knowledge"

// DefaultChunkSize is the number of candidates shown to the LLM per prompt.
const DefaultChunkSize = 10

// Chunk is a contiguous slice of the candidate list.
type Chunk struct {
	Index      int
	Start      int
	Candidates []knowledge.Candidate
}

// Partition splits candidates into order-preserving chunks of at most size elements.
// Together the chunks cover every position exactly once.
func Partition(candidates []knowledge.Candidate, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([]Chunk, 0, (len(candidates)+size-1)/size)
	for start := 0; start < len(candidates); start += size {
		end := min(start+size, len(candidates))
		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Start:      start,
			Candidates: candidates[start:end],
		})
	}
	return chunks
}
