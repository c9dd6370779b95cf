package knowledge

// Candidate is a knowledge entry retrieved for a specific query.
type Candidate struct {
	entry    Entry
	distance float64
}

// NewCandidate pairs an entry with its distance from the query vector.
func NewCandidate(entry Entry, distance float64) Candidate {
	return Candidate{entry: entry, distance: distance}
}

// Entry returns the matched knowledge entry.
func (c Candidate) Entry() Entry { return c.entry }

// Distance returns the L2 distance between the query and the entry embedding.
func (c Candidate) Distance() float64 { return c.distance }
