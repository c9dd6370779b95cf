package pipelinelog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/remedex/internal/domain"
	"github.com/kailas-cloud/remedex/internal/transport/ci"
)

type fakeFetcher struct {
	status int
	body   string
	err    error
	urls   []string
}

func (f *fakeFetcher) FetchConsole(_ context.Context, url string) (int, string, error) {
	f.urls = append(f.urls, url)
	return f.status, f.body, f.err
}

func TestDetectURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"jenkins host", "build broke https://jenkins.corp/job/api/42 please help",
			"https://jenkins.corp/job/api/42", true},
		{"case insensitive", "see HTTPS://CI.JENKINS.io/x", "HTTPS://CI.JENKINS.io/x", true},
		{"gitlab pipeline", "https://gitlab.example.com/grp/app/-/pipelines/991",
			"https://gitlab.example.com/grp/app/-/pipelines/991", true},
		{"job path", "https://ci.example.com/job/deploy/7/", "https://ci.example.com/job/deploy/7/", true},
		{"build path", "https://ci.example.com/build/7", "https://ci.example.com/build/7", true},
		{"console path", "https://ci.example.com/x/console", "https://ci.example.com/x/console", true},
		{"generic with keyword", "https://ci.example.com/pipeline-77", "https://ci.example.com/pipeline-77", true},
		{"generic without keyword", "read https://docs.example.com/faq", "", false},
		{"plain http ignored", "http://jenkins.local/job/x", "", false},
		{"no url", "docker permission denied", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DetectURL(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetectURL_FirstPatternWins(t *testing.T) {
	// The jenkins pattern is checked before the job pattern even though the job URL comes first.
	got, ok := DetectURL("https://ci.example.com/job/a https://jenkins.example.com/b")
	require.True(t, ok)
	assert.Equal(t, "https://jenkins.example.com/b", got)
}

func TestConsoleURL(t *testing.T) {
	assert.Equal(t, "https://j/job/x/1/consoleText", ConsoleURL("https://j/job/x/1"))
	assert.Equal(t, "https://j/job/x/1/consoleText", ConsoleURL("https://j/job/x/1/"))
	assert.Equal(t, "https://j/job/x/1/consoleText", ConsoleURL("https://j/job/x/1/consoleText"))
}

func TestFilterErrorLines(t *testing.T) {
	console := "Started by user admin\n  ERROR: compilation Failed  \nall good\nFATAL: exit 1\n"
	assert.Equal(t, []string{"ERROR: compilation Failed", "FATAL: exit 1"}, FilterErrorLines(console, 100))

	var b strings.Builder
	for i := range 150 {
		fmt.Fprintf(&b, "error line %d\n", i)
	}
	lines := FilterErrorLines(b.String(), 100)
	require.Len(t, lines, 100)
	assert.Equal(t, "error line 50", lines[0])
	assert.Equal(t, "error line 149", lines[99])
}

func TestMaybeRewrite_Direct(t *testing.T) {
	f := &fakeFetcher{}
	svc := New(f, 0, nil)

	res := svc.MaybeRewrite(context.Background(), "Jenkins build failed with timeout error")
	assert.Equal(t, SourceDirect, res.Source)
	assert.Equal(t, "Jenkins build failed with timeout error", res.EffectiveQuery)
	assert.Empty(t, f.urls)
}

func TestMaybeRewrite_NilFetcher(t *testing.T) {
	res := New(nil, 0, nil).MaybeRewrite(context.Background(), "https://jenkins.local/job/x")
	assert.Equal(t, SourceDirect, res.Source)
	assert.Equal(t, "https://jenkins.local/job/x", res.EffectiveQuery)
}

func TestMaybeRewrite_Statuses(t *testing.T) {
	const url = "https://jenkins.local/job/api/12"
	tests := []struct {
		name       string
		fetcher    *fakeFetcher
		wantSource Source
		wantQuery  string
	}{
		{
			name:       "error lines",
			fetcher:    &fakeFetcher{status: 200, body: "ok\nBuild FAILED: exit 2\n"},
			wantSource: SourcePipeline,
			wantQuery:  "Build FAILED: exit 2",
		},
		{
			name:       "no error lines",
			fetcher:    &fakeFetcher{status: 200, body: "Finished: SUCCESS"},
			wantSource: SourcePipeline,
			wantQuery:  "No specific error logs found in pipeline console output from " + url,
		},
		{
			name:       "unauthorized",
			fetcher:    &fakeFetcher{status: 401},
			wantSource: SourceUnauthorized,
			wantQuery:  "Pipeline access denied for " + url + ". Please check credentials.",
		},
		{
			name:       "not found",
			fetcher:    &fakeFetcher{status: 404},
			wantSource: SourceHTTPError,
			wantQuery:  "Could not fetch pipeline logs from " + url,
		},
		{
			name:       "timeout",
			fetcher:    &fakeFetcher{err: fmt.Errorf("get: %w", domain.ErrUpstreamTimeout)},
			wantSource: SourceTimeout,
			wantQuery:  "Pipeline API timeout for " + url,
		},
		{
			name:       "connection",
			fetcher:    &fakeFetcher{err: errors.New("dial tcp: connection refused")},
			wantSource: SourceConnectionError,
			wantQuery:  "Pipeline connection error: dial tcp: connection refused",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := New(tc.fetcher, 0, nil).MaybeRewrite(context.Background(), "check "+url)
			assert.Equal(t, tc.wantSource, res.Source)
			assert.Equal(t, tc.wantQuery, res.EffectiveQuery)
			assert.Equal(t, url, res.URL)
			require.Len(t, tc.fetcher.urls, 1)
			assert.Equal(t, url+"/consoleText", tc.fetcher.urls[0])
		})
	}
}

func TestMaybeRewrite_HTTPErrorRecordsStatus(t *testing.T) {
	res := New(&fakeFetcher{status: 503}, 0, nil).MaybeRewrite(context.Background(), "https://jenkins.local/x")
	assert.Equal(t, SourceHTTPError, res.Source)
	assert.Equal(t, 503, res.StatusCode)
}

func TestMaybeRewrite_CIClientIntegration(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/consoleText") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("[Pipeline] sh\nERROR: permission denied while connecting to docker.sock\n"))
	}))
	defer server.Close()

	client, err := ci.NewClient(ci.Config{InsecureSkipVerify: true})
	require.NoError(t, err)

	res := New(client, 0, nil).MaybeRewrite(context.Background(), server.URL+"/job/build-app/3")
	assert.Equal(t, SourcePipeline, res.Source)
	assert.Equal(t, "ERROR: permission denied while connecting to docker.sock", res.EffectiveQuery)
}

func TestMaybeRewrite_Unreachable(t *testing.T) {
	client, err := ci.NewClient(ci.Config{})
	require.NoError(t, err)

	res := New(client, 0, nil).MaybeRewrite(context.Background(), "https://127.0.0.1:1/job/x/1")
	assert.Equal(t, SourceConnectionError, res.Source)
	assert.True(t, strings.HasPrefix(res.EffectiveQuery, "Pipeline connection error: "))
}
