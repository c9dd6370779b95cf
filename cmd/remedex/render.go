package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kailas-cloud/remedex/internal/usecase/analysis"
)

// confidenceBar renders confidence as ten cells, e.g. 0.8 -> "████████░░".
func confidenceBar(confidence float64) string {
	filled := min(max(int(confidence*10), 0), 10)
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
}

func printReport(w io.Writer, r analysis.Report) {
	if r.EffectiveQuery != r.Query {
		fmt.Fprintf(w, "Pipeline query (%s): %s\n", r.Source, r.PipelineURL)
	}
	if r.Diagnostic != "" {
		fmt.Fprintf(w, "Diagnostic: %s\n", r.Diagnostic)
	}
	fmt.Fprintf(w, "Total solutions found: %d (%s, %d candidates)\n", len(r.Solutions), r.Outcome, r.Candidates)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	for i, sc := range r.Solutions {
		fmt.Fprintf(w, "\nSOLUTION #%d\n", i+1)
		fmt.Fprintln(w, strings.Repeat("─", 60))
		fmt.Fprintf(w, "Confidence:  %.1f%% [%s]\n", sc.Confidence()*100, confidenceBar(sc.Confidence()))
		fmt.Fprintf(w, "Issue type:  %s\n", sc.Failure())
		fmt.Fprintf(w, "Root cause:  %s\n", sc.RootCause())
		fmt.Fprintf(w, "Fix:         %s\n", sc.Solution())
		fmt.Fprintf(w, "Reasoning:   %s\n", sc.Reason())
	}
}

type reportJSON struct {
	ID             string         `json:"analysis_id"`
	Query          string         `json:"query"`
	EffectiveQuery string         `json:"effective_query"`
	Source         string         `json:"source"`
	PipelineURL    string         `json:"pipeline_url,omitempty"`
	Outcome        string         `json:"outcome"`
	Candidates     int            `json:"candidates"`
	Diagnostic     string         `json:"diagnostic,omitempty"`
	Solutions      []solutionJSON `json:"solutions"`
}

type solutionJSON struct {
	Failure     string  `json:"failure"`
	RootCause   string  `json:"root_cause"`
	Solution    string  `json:"solution"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
	GlobalIndex int     `json:"global_index"`
}

func writeReportJSON(w io.Writer, r analysis.Report) error {
	out := reportJSON{
		ID:             r.ID.String(),
		Query:          r.Query,
		EffectiveQuery: r.EffectiveQuery,
		Source:         string(r.Source),
		PipelineURL:    r.PipelineURL,
		Outcome:        string(r.Outcome),
		Candidates:     r.Candidates,
		Diagnostic:     r.Diagnostic,
		Solutions:      make([]solutionJSON, len(r.Solutions)),
	}
	for i, sc := range r.Solutions {
		out.Solutions[i] = solutionJSON{
			Failure:     sc.Failure(),
			RootCause:   sc.RootCause(),
			Solution:    sc.Solution(),
			Confidence:  sc.Confidence(),
			Reason:      sc.Reason(),
			GlobalIndex: sc.GlobalIndex(),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
