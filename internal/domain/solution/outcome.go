package solution

// Outcome tells which scoring path produced a result.
type Outcome string

const (
	// OutcomeNoCandidates means retrieval returned nothing and no LLM call was made.
	OutcomeNoCandidates Outcome = "no_candidates"
	// OutcomeLLMScored means every chunk was scored by the LLM.
	OutcomeLLMScored Outcome = "llm_scored"
	// OutcomeFallbackScored means every chunk used the fallback response.
	OutcomeFallbackScored Outcome = "fallback_scored"
	// OutcomeMixed means some chunks were scored by the LLM and some fell back.
	OutcomeMixed Outcome = "mixed"
)

// Combine folds per-chunk outcomes into the outcome of the whole request.
func Combine(outcomes []Outcome) Outcome {
	if len(outcomes) == 0 {
		return OutcomeNoCandidates
	}
	var llm, fallback bool
	for _, o := range outcomes {
		switch o {
		case OutcomeLLMScored:
			llm = true
		case OutcomeFallbackScored:
			fallback = true
		}
	}
	switch {
	case llm && fallback:
		return OutcomeMixed
	case fallback:
		return OutcomeFallbackScored
	case llm:
		return OutcomeLLMScored
	default:
		return OutcomeNoCandidates
	}
}

// ChunkResult holds the admitted suggestions of one scoring chunk, in LLM response order.
type ChunkResult struct {
	Chunk     int
	Solutions []Scored
	Outcome   Outcome
}
