package solution

import (
	"testing"

	"github.com/kailas-cloud/remedex/internal/domain/knowledge"
)

func TestAdmit_ExclusiveThreshold(t *testing.T) {
	tests := []struct {
		confidence float64
		want       bool
	}{
		{0.0, false},
		{0.5, false},
		{0.6, false},
		{0.6000001, true},
		{0.8, true},
		{1.0, true},
	}
	for _, tc := range tests {
		if got := Admit(tc.confidence, DefaultThreshold); got != tc.want {
			t.Errorf("Admit(%v) = %v, want %v", tc.confidence, got, tc.want)
		}
	}
}

func TestScored_Fallback(t *testing.T) {
	e := knowledge.Reconstruct(0, "f", "r", "s")
	if !NewScored(e, 0.8, FallbackReason, 0).IsFallback() {
		t.Error("expected fallback suggestion")
	}
	if NewScored(e, 0.9, "matches docker error", 0).IsFallback() {
		t.Error("expected LLM suggestion")
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name string
		in   []Outcome
		want Outcome
	}{
		{"empty", nil, OutcomeNoCandidates},
		{"all llm", []Outcome{OutcomeLLMScored, OutcomeLLMScored}, OutcomeLLMScored},
		{"all fallback", []Outcome{OutcomeFallbackScored}, OutcomeFallbackScored},
		{"mixed", []Outcome{OutcomeLLMScored, OutcomeFallbackScored}, OutcomeMixed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Combine(tc.in); got != tc.want {
				t.Errorf("Combine() = %s, want %s", got, tc.want)
			}
		})
	}
}
