// Package solution models LLM selections and the ranked remediation suggestions built from them.
package solution

import "github.com/kailas-cloud/remedex/internal/domain/knowledge"

// DefaultThreshold is the confidence a selection must strictly exceed to be admitted.
const DefaultThreshold = 0.6

// FallbackReason marks selections synthesized when the LLM could not be reached.
const FallbackReason = "fallback keyword match"

// FallbackResponse is the raw response substituted for a failed LLM call.
const FallbackResponse = "0 0.8 " + FallbackReason

// Selection is one parsed line of an LLM response: a chunk-local candidate index,
// a confidence and a free-form rationale.
type Selection struct {
	LocalIndex int
	Confidence float64
	Reason     string
}

// Scored is a remediation suggestion admitted by the relevance scorer.
type Scored struct {
	entry       knowledge.Entry
	confidence  float64
	reason      string
	globalIndex int
}

// NewScored creates a Scored suggestion for the candidate at globalIndex.
func NewScored(entry knowledge.Entry, confidence float64, reason string, globalIndex int) Scored {
	return Scored{entry: entry, confidence: confidence, reason: reason, globalIndex: globalIndex}
}

// Entry returns the knowledge entry behind the suggestion.
func (s Scored) Entry() knowledge.Entry { return s.entry }

// Failure returns the failure text of the suggested entry.
func (s Scored) Failure() string { return s.entry.Failure() }

// RootCause returns the root cause text of the suggested entry.
func (s Scored) RootCause() string { return s.entry.RootCause() }

// Solution returns the remediation text of the suggested entry.
func (s Scored) Solution() string { return s.entry.Solution() }

// Confidence returns the LLM confidence in (threshold, 1].
func (s Scored) Confidence() float64 { return s.confidence }

// Reason returns the LLM rationale, or FallbackReason.
func (s Scored) Reason() string { return s.reason }

// GlobalIndex returns the position of the entry in the retrieved candidate list.
func (s Scored) GlobalIndex() int { return s.globalIndex }

// IsFallback reports whether the suggestion came from the fallback path.
func (s Scored) IsFallback() bool { return s.reason == FallbackReason }

// Admit reports whether confidence passes the exclusive threshold.
func Admit(confidence, threshold float64) bool {
	return confidence > threshold
}
