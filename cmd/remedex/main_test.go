package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/remedex/internal/domain/knowledge"
	"github.com/kailas-cloud/remedex/internal/domain/solution"
	kbrepo "github.com/kailas-cloud/remedex/internal/repository/knowledge"
	"github.com/kailas-cloud/remedex/internal/usecase/analysis"
	"github.com/kailas-cloud/remedex/internal/usecase/pipelinelog"
)

func sampleReport(issue string) analysis.Report {
	e := knowledge.Reconstruct(0, "Docker Build Failure - Permission Denied", "No daemon access", "Add user to docker group")
	return analysis.Report{
		ID:             uuid.New(),
		Query:          issue,
		EffectiveQuery: issue,
		Source:         pipelinelog.SourceDirect,
		Outcome:        solution.OutcomeFallbackScored,
		Candidates:     5,
		Solutions:      []solution.Scored{solution.NewScored(e, 0.8, solution.FallbackReason, 0)},
	}
}

func TestConfidenceBar(t *testing.T) {
	assert.Equal(t, "████████░░", confidenceBar(0.8))
	assert.Equal(t, "██████████", confidenceBar(1))
	assert.Equal(t, "░░░░░░░░░░", confidenceBar(0))
	assert.Equal(t, "░░░░░░░░░░", confidenceBar(-0.5))
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, sampleReport("docker permission denied"))

	out := buf.String()
	assert.Contains(t, out, "Total solutions found: 1")
	assert.Contains(t, out, "SOLUTION #1")
	assert.Contains(t, out, "80.0% [████████░░]")
	assert.Contains(t, out, "fallback keyword match")
	assert.NotContains(t, out, "Pipeline query")
}

func TestWriteReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReportJSON(&buf, sampleReport("x")))

	var got reportJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "fallback_scored", got.Outcome)
	require.Len(t, got.Solutions, 1)
	assert.Equal(t, 0.8, got.Solutions[0].Confidence)
}

func TestRunChat(t *testing.T) {
	var issues []string
	analyze := func(_ context.Context, issue string) analysis.Report {
		issues = append(issues, issue)
		return sampleReport(issue)
	}

	in := strings.NewReader("\n  docker permission denied  \n   \nBYE\nnever analyzed\n")
	var out bytes.Buffer
	require.NoError(t, runChat(context.Background(), in, &out, analyze))

	assert.Equal(t, []string{"docker permission denied"}, issues)
	assert.Equal(t, 2, strings.Count(out.String(), "Please provide a valid DevOps issue description."))
	assert.Contains(t, out.String(), "Session ended")
}

func TestRunChat_ExitWords(t *testing.T) {
	for _, word := range []string{"exit", "quit", "bye", "end", "Quit"} {
		called := false
		analyze := func(context.Context, string) analysis.Report {
			called = true
			return analysis.Report{}
		}
		var out bytes.Buffer
		require.NoError(t, runChat(context.Background(), strings.NewReader(word+"\n"), &out, analyze))
		assert.False(t, called, word)
	}
}

func TestRunChat_EOFAndCancel(t *testing.T) {
	noop := func(context.Context, string) analysis.Report { return analysis.Report{} }

	var out bytes.Buffer
	require.NoError(t, runChat(context.Background(), strings.NewReader(""), &out, noop))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out.Reset()
	require.NoError(t, runChat(ctx, strings.NewReader("docker\n"), &out, noop))
	assert.Contains(t, out.String(), "Session interrupted")
}

func TestSeedCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb", "devops_issues.db")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"seed", "--db", path})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "Seeded 10 incidents")

	entries, err := kbrepo.NewSQLite(path, nil).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 10)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.True(t, strings.HasPrefix(out.String(), "remedex dev"))
}
