// Package knowledge holds the incident knowledge base aggregate.
package knowledge

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/remedex/internal/domain/textnorm"
)

// Entry is a single known incident with its remediation (immutable value object).
type Entry struct {
	id        int
	failure   string
	rootCause string
	solution  string
}

// New validates and creates an Entry.
// ID must be non-negative; failure and solution must be non-blank.
func New(id int, failure, rootCause, solution string) (Entry, error) {
	if id < 0 {
		return Entry{}, fmt.Errorf("entry ID must be non-negative, got %d", id)
	}
	if strings.TrimSpace(failure) == "" {
		return Entry{}, fmt.Errorf("entry %d: failure is required", id)
	}
	if strings.TrimSpace(solution) == "" {
		return Entry{}, fmt.Errorf("entry %d: solution is required", id)
	}
	return Entry{id: id, failure: failure, rootCause: rootCause, solution: solution}, nil
}

// Reconstruct creates an Entry without validation (storage hydration).
func Reconstruct(id int, failure, rootCause, solution string) Entry {
	return Entry{id: id, failure: failure, rootCause: rootCause, solution: solution}
}

// ID returns the entry identifier, unique within one load.
func (e Entry) ID() int { return e.id }

// Failure returns the failure description.
func (e Entry) Failure() string { return e.failure }

// RootCause returns the root cause description.
func (e Entry) RootCause() string { return e.rootCause }

// Solution returns the remediation steps.
func (e Entry) Solution() string { return e.solution }

// IndexText is the normalized text that gets embedded for this entry and shown to the LLM.
func (e Entry) IndexText() string {
	return fmt.Sprintf("failure: %s, root_cause: %s, solution: %s",
		textnorm.Normalize(e.failure),
		textnorm.Normalize(e.rootCause),
		textnorm.Normalize(e.solution),
	)
}

// Renumber assigns positional IDs 0..n-1 in order. Sources that do not own stable IDs
// use it so that IDs are unique within a load.
func Renumber(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{id: i, failure: e.failure, rootCause: e.rootCause, solution: e.solution}
	}
	return out
}
