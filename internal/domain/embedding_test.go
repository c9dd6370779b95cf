package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result Embedding
	err    error
	got    []string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (Embedding, error) {
	s.got = append(s.got, text)
	return s.result, s.err
}

type stubBatchEmbedder struct {
	stubEmbedder
	batch      []Embedding
	batchErr   error
	batchTexts []string
}

func (s *stubBatchEmbedder) EmbedBatch(_ context.Context, texts []string) ([]Embedding, error) {
	s.batchTexts = texts
	return s.batch, s.batchErr
}

func TestEmbedAll_FallsBackToSingle(t *testing.T) {
	inner := &stubEmbedder{result: Embedding{Vector: []float32{0.1, 0.2}, Tokens: 5}}

	out, err := EmbedAll(context.Background(), inner, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(out))
	}
	if len(inner.got) != 3 {
		t.Errorf("expected 3 single calls, got %d", len(inner.got))
	}
}

func TestEmbedAll_UsesBatch(t *testing.T) {
	inner := &stubBatchEmbedder{batch: []Embedding{{Vector: []float32{1}}, {Vector: []float32{2}}}}

	out, err := EmbedAll(context.Background(), inner, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[1].Vector[0] != 2 {
		t.Errorf("unexpected batch result: %v", out)
	}
	if len(inner.got) != 0 {
		t.Errorf("single Embed should not be called, got %v", inner.got)
	}
}

func TestEmbedAll_BatchCountMismatch(t *testing.T) {
	inner := &stubBatchEmbedder{batch: []Embedding{{Vector: []float32{1}}}}

	_, err := EmbedAll(context.Background(), inner, []string{"a", "b"})
	if !errors.Is(err, ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestEmbedAll_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	inner := &stubEmbedder{err: innerErr}

	_, err := EmbedAll(context.Background(), inner, []string{"a"})
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestEmbedAll_Empty(t *testing.T) {
	out, err := EmbedAll(context.Background(), &stubEmbedder{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected 0 embeddings, got %d", len(out))
	}
}

func TestPrefixEmbedder_Prepends(t *testing.T) {
	inner := &stubEmbedder{result: Embedding{Vector: []float32{0.5}}}
	emb := NewPrefixEmbedder(inner, "query: ")

	if _, err := emb.Embed(context.Background(), "docker permission"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got[0] != "query: docker permission" {
		t.Errorf("expected prefixed text, got %q", inner.got[0])
	}
}

func TestPrefixEmbedder_EmptyPrefixReturnsInner(t *testing.T) {
	inner := &stubEmbedder{}
	if NewPrefixEmbedder(inner, "") != Embedder(inner) {
		t.Error("empty prefix should return the inner embedder")
	}
}

func TestPrefixEmbedder_Batch(t *testing.T) {
	inner := &stubBatchEmbedder{batch: []Embedding{{}, {}}}
	emb := NewPrefixEmbedder(inner, "passage: ").(*PrefixEmbedder)

	if _, err := emb.EmbedBatch(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Префикс добавляется к каждому тексту
	if inner.batchTexts[0] != "passage: a" || inner.batchTexts[1] != "passage: b" {
		t.Errorf("expected prefixed texts, got %v", inner.batchTexts)
	}
}

func TestIndexUnavailableError(t *testing.T) {
	cause := errors.New("bad crc")
	err := NewIndexUnavailable("/tmp/knowledge.index", cause)
	if !errors.Is(err, ErrIndexUnavailable) {
		t.Error("expected ErrIndexUnavailable")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause in chain")
	}
}
