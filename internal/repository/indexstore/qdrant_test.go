package indexstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/remedex/internal/domain"
)

type fakeQdrant struct {
	exists    bool
	existsErr error
	created   *qdrant.CreateCollection
	deleted   bool
	upserts   []*qdrant.UpsertPoints
	upsertErr error
	deletes   int
	scroll    []*qdrant.RetrievedPoint
	closed    bool
}

func (f *fakeQdrant) CollectionExists(context.Context, string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeQdrant) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	f.created = req
	f.exists = true
	return nil
}

func (f *fakeQdrant) DeleteCollection(context.Context, string) error {
	f.deleted = true
	f.deletes++
	return nil
}

func (f *fakeQdrant) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.upserts = append(f.upserts, req)
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeQdrant) Scroll(context.Context, *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error) {
	return f.scroll, nil
}

func (f *fakeQdrant) Close() error {
	f.closed = true
	return nil
}

func TestQdrantStore_SaveRecreatesCollection(t *testing.T) {
	fake := &fakeQdrant{exists: true}
	store := newQdrantStore(fake, QdrantConfig{Collection: "kb"}, nil)

	err := store.Save(context.Background(), testSnapshot(t), Meta{Model: "m", BuiltAt: time.Now()})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !fake.deleted {
		t.Error("existing collection should be dropped")
	}
	params := fake.created.GetVectorsConfig().GetParams()
	if params.GetDistance() != qdrant.Distance_Euclid || params.GetSize() != 3 {
		t.Errorf("unexpected vector params: %v", params)
	}
	if len(fake.upserts) != 1 || len(fake.upserts[0].GetPoints()) != 3 {
		t.Fatalf("expected one upsert of 3 points, got %d", len(fake.upserts))
	}
	p := fake.upserts[0].GetPoints()[1]
	if p.GetId().GetNum() != 1 {
		t.Errorf("point id %d, want 1", p.GetId().GetNum())
	}
	if got := p.GetPayload()[payloadFailure].GetStringValue(); got != "Docker Build Failure - Permission Denied" {
		t.Errorf("unexpected failure payload %q", got)
	}
	if got := p.GetPayload()[payloadCount].GetIntegerValue(); got != 3 {
		t.Errorf("count payload %d, want 3", got)
	}
}

func TestQdrantStore_SaveDropsCollectionOnUpsertFailure(t *testing.T) {
	fake := &fakeQdrant{upsertErr: errors.New("deadline exceeded")}
	store := newQdrantStore(fake, QdrantConfig{Collection: "kb"}, nil)

	if err := store.Save(context.Background(), testSnapshot(t), Meta{Model: "m"}); err == nil {
		t.Fatal("expected upsert error")
	}
	if fake.deletes != 1 {
		t.Errorf("expected the partial collection to be dropped once, got %d", fake.deletes)
	}
}

func countedPoint(id uint64, count int64) *qdrant.RetrievedPoint {
	return &qdrant.RetrievedPoint{
		Id: qdrant.NewIDNum(id),
		Payload: qdrant.NewValueMap(map[string]any{
			payloadID:        int64(id),
			payloadFailure:   "f",
			payloadRootCause: "r",
			payloadSolution:  "s",
			payloadModel:     "m",
			payloadCount:     count,
		}),
	}
}

func TestQdrantStore_LoadRejectsPartialCollection(t *testing.T) {
	fake := &fakeQdrant{exists: true, scroll: []*qdrant.RetrievedPoint{
		countedPoint(0, 3), countedPoint(1, 3),
	}}
	store := newQdrantStore(fake, QdrantConfig{Collection: "kb"}, nil)

	if _, _, err := store.Load(context.Background()); !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestQdrantStore_LoadRejectsMixedSnapshots(t *testing.T) {
	fake := &fakeQdrant{exists: true, scroll: []*qdrant.RetrievedPoint{
		countedPoint(0, 2), countedPoint(1, 5),
	}}
	store := newQdrantStore(fake, QdrantConfig{Collection: "kb"}, nil)

	if _, _, err := store.Load(context.Background()); !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestQdrantStore_LoadMissingCollection(t *testing.T) {
	store := newQdrantStore(&fakeQdrant{}, QdrantConfig{Collection: "kb"}, nil)
	if _, _, err := store.Load(context.Background()); !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestQdrantStore_LoadEmptyCollection(t *testing.T) {
	store := newQdrantStore(&fakeQdrant{exists: true}, QdrantConfig{Collection: "kb"}, nil)
	if _, _, err := store.Load(context.Background()); !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestQdrantStore_LoadConnectionError(t *testing.T) {
	cause := errors.New("connection refused")
	store := newQdrantStore(&fakeQdrant{existsErr: cause}, QdrantConfig{Collection: "kb"}, nil)

	_, _, err := store.Load(context.Background())
	if !errors.Is(err, domain.ErrIndexUnavailable) || !errors.Is(err, cause) {
		t.Errorf("expected unavailable wrapping cause, got %v", err)
	}
}

func TestQdrantStore_Close(t *testing.T) {
	fake := &fakeQdrant{}
	if err := newQdrantStore(fake, QdrantConfig{}, nil).Close(); err != nil || !fake.closed {
		t.Errorf("close not forwarded: %v", err)
	}
}
