package remedex

import "time"

// Scoring outcomes reported in Report.Outcome.
const (
	OutcomeNoCandidates   = "no_candidates"
	OutcomeLLMScored      = "llm_scored"
	OutcomeFallbackScored = "fallback_scored"
	OutcomeMixed          = "mixed"
)

// Report is the result of one analysis.
type Report struct {
	ID string
	// Query is the caller's text; EffectiveQuery is what was searched after
	// pipeline URL rewriting.
	Query          string
	EffectiveQuery string
	Source         string
	PipelineURL    string
	Outcome        string
	Candidates     int
	Diagnostic     string
	Suggestions    []Suggestion
	Duration       time.Duration
}

// Suggestion is one ranked remediation.
type Suggestion struct {
	Failure     string
	RootCause   string
	Solution    string
	Confidence  float64
	Reason      string
	GlobalIndex int
	Fallback    bool
}

// VectorizeStats summarizes an index rebuild.
type VectorizeStats struct {
	Entries  int
	Dim      int
	Duration time.Duration
}
