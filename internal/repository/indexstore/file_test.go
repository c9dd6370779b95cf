package indexstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kailas-cloud/remedex/internal/domain"
	"github.com/kailas-cloud/remedex/internal/domain/knowledge"
	"github.com/kailas-cloud/remedex/internal/vectorindex"
)

func testSnapshot(t *testing.T) *vectorindex.Snapshot {
	t.Helper()
	idx, err := vectorindex.Build([][]float32{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return vectorindex.NewSnapshot(idx, []knowledge.Entry{
		knowledge.Reconstruct(0, "Jenkins Build Timeout", "Long running tests", "Increase timeout"),
		knowledge.Reconstruct(1, "Docker Build Failure - Permission Denied", "No docker group", "Add user to docker group"),
		knowledge.Reconstruct(2, "Kubernetes Pod CrashLoopBackOff", "Bad config", "Check pod logs"),
	})
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	snap := testSnapshot(t)
	builtAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := store.Save(context.Background(), snap, Meta{Model: "test-model", BuiltAt: builtAt}); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, meta, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Model != "test-model" || meta.Dim != 3 || meta.Count != 3 || !meta.BuiltAt.Equal(builtAt) {
		t.Errorf("unexpected meta: %+v", meta)
	}

	q := []float32{0.9, 0.1, 0}
	before, _ := snap.Nearest(q, 3)
	after, _ := loaded.Nearest(q, 3)
	for i := range before {
		if before[i].Entry() != after[i].Entry() || before[i].Distance() != after[i].Distance() {
			t.Errorf("rank %d differs after reload", i)
		}
	}
}

func TestFileStore_MissingArtifacts(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	_, _, err := store.Load(context.Background())
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist cause, got %v", err)
	}

	// Only one of the two files present is still unavailable.
	if err := store.Save(context.Background(), testSnapshot(t), Meta{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, MetaFile)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.Load(context.Background()); !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable with missing meta, got %v", err)
	}
}

func TestFileStore_MismatchedArtifacts(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	if err := NewFileStore(dirA).Save(context.Background(), testSnapshot(t), Meta{}); err != nil {
		t.Fatal(err)
	}

	idx, _ := vectorindex.Build([][]float32{{1, 1, 1}})
	small := vectorindex.NewSnapshot(idx, []knowledge.Entry{knowledge.Reconstruct(0, "f", "", "s")})
	if err := NewFileStore(dirB).Save(context.Background(), small, Meta{}); err != nil {
		t.Fatal(err)
	}

	// Pair the index of A with the metadata of B.
	raw, err := os.ReadFile(filepath.Join(dirB, MetaFile))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dirA, MetaFile), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := NewFileStore(dirA).Load(context.Background()); !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestFileStore_CorruptIndex(t *testing.T) {
	dir := t.TempDir()
	if err := NewFileStore(dir).Save(context.Background(), testSnapshot(t), Meta{}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, IndexFile), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewFileStore(dir).Load(context.Background()); !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}
