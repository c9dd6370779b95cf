package reindex

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/remedex/internal/domain"
	"github.com/kailas-cloud/remedex/internal/usecase/vectorize"
)

type countingRebuilder struct {
	calls atomic.Int32
	busy  atomic.Int32 // number of calls to answer with ErrRebuildInProgress
	done  chan struct{}
}

func (r *countingRebuilder) Vectorize(context.Context) (vectorize.Stats, error) {
	r.calls.Add(1)
	if r.busy.Add(-1) >= 0 {
		return vectorize.Stats{}, domain.ErrRebuildInProgress
	}
	r.done <- struct{}{}
	return vectorize.Stats{Source: "sqlite", Entries: 10}, nil
}

func startWatcher(t *testing.T, path string, r *countingRebuilder) {
	t.Helper()
	w, err := New(path, 50*time.Millisecond, r, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "devops_issues.db")
	require.NoError(t, os.WriteFile(db, []byte("v0"), 0o600))

	r := &countingRebuilder{done: make(chan struct{}, 4)}
	startWatcher(t, db, r)

	for i := range 5 {
		require.NoError(t, os.WriteFile(db, []byte{byte(i)}, 0o600))
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("rebuild not triggered")
	}
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestWatcher_JournalCountsAsChange(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "devops_issues.db")

	r := &countingRebuilder{done: make(chan struct{}, 1)}
	startWatcher(t, db, r)

	require.NoError(t, os.WriteFile(db+"-journal", []byte("j"), 0o600))

	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("rebuild not triggered by journal write")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "devops_issues.db")

	r := &countingRebuilder{done: make(chan struct{}, 1)}
	startWatcher(t, db, r)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, r.calls.Load())
}

func TestWatcher_RetriesWhileRebuildInProgress(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "devops_issues.db")

	r := &countingRebuilder{done: make(chan struct{}, 1)}
	r.busy.Store(2)
	startWatcher(t, db, r)

	require.NoError(t, os.WriteFile(db, []byte("v1"), 0o600))

	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("rebuild never succeeded")
	}
	assert.Equal(t, int32(3), r.calls.Load())
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent", "kb.db"), 0, &countingRebuilder{}, nil)
	require.Error(t, err)
}
