package indexstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/domain"
	"github.com/kailas-cloud/remedex/internal/domain/knowledge"
	"github.com/kailas-cloud/remedex/internal/vectorindex"
)

// Payload keys stored on each point.
const (
	payloadID        = "entry_id"
	payloadFailure   = "failure"
	payloadRootCause = "root_cause"
	payloadSolution  = "solution"
	payloadModel     = "model"
	payloadBuiltAt   = "built_at"
	payloadCount     = "count"
)

const upsertBatch = 256

// qdrantAPI is the subset of *qdrant.Client used by QdrantStore.
type qdrantAPI interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, name string) error
	Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Scroll(ctx context.Context, req *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error)
	Close() error
}

// QdrantConfig configures the Qdrant connection.
type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Timeout    time.Duration
}

// QdrantStore persists snapshots as points in a Qdrant collection using Euclid distance.
// Point ids are index positions, so loading restores the exact order.
type QdrantStore struct {
	client     qdrantAPI
	collection string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewQdrantStore connects to Qdrant over gRPC.
func NewQdrantStore(cfg QdrantConfig, logger *zap.Logger) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect qdrant %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return newQdrantStore(client, cfg, logger), nil
}

func newQdrantStore(client qdrantAPI, cfg QdrantConfig, logger *zap.Logger) *QdrantStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &QdrantStore{client: client, collection: cfg.Collection, timeout: timeout, logger: logger}
}

// Close releases the gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// Save recreates the collection and upserts every vector with its entry payload.
// Each point carries the snapshot size so Load can reject a partially written
// collection. A failed upsert drops the collection.
func (s *QdrantStore) Save(ctx context.Context, snap *vectorindex.Snapshot, meta Meta) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", s.collection, err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
			return fmt.Errorf("drop collection %s: %w", s.collection, err)
		}
	}

	idx := snap.Index()
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(idx.Dim()),
			Distance: qdrant.Distance_Euclid,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", s.collection, err)
	}

	builtAt := meta.BuiltAt.UTC().Format(time.RFC3339)
	entries := snap.Entries()
	for start := 0; start < len(entries); start += upsertBatch {
		end := min(start+upsertBatch, len(entries))
		points := make([]*qdrant.PointStruct, 0, end-start)
		for pos := start; pos < end; pos++ {
			e := entries[pos]
			points = append(points, &qdrant.PointStruct{
				Id:      qdrant.NewIDNum(uint64(pos)),
				Vectors: qdrant.NewVectors(idx.Vector(pos)...),
				Payload: qdrant.NewValueMap(map[string]any{
					payloadID:        int64(e.ID()),
					payloadFailure:   e.Failure(),
					payloadRootCause: e.RootCause(),
					payloadSolution:  e.Solution(),
					payloadModel:     meta.Model,
					payloadBuiltAt:   builtAt,
					payloadCount:     int64(len(entries)),
				}),
			})
		}
		if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Wait:           qdrant.PtrOf(true),
			Points:         points,
		}); err != nil {
			if dropErr := s.client.DeleteCollection(ctx, s.collection); dropErr != nil {
				s.logger.Warn("Failed to drop partially written collection",
					zap.String("collection", s.collection), zap.Error(dropErr))
			}
			return fmt.Errorf("upsert points [%d:%d]: %w", start, end, err)
		}
	}

	s.logger.Info("Index saved to qdrant",
		zap.String("collection", s.collection),
		zap.Int("points", len(entries)),
	)
	return nil
}

// Load scrolls the whole collection and rebuilds the snapshot in point id order.
func (s *QdrantStore) Load(ctx context.Context) (*vectorindex.Snapshot, Meta, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return nil, Meta{}, domain.NewIndexUnavailable(s.collection, err)
	}
	if !exists {
		return nil, Meta{}, domain.NewIndexUnavailable(s.collection, errors.New("collection does not exist"))
	}

	var points []*qdrant.RetrievedPoint
	var offset *qdrant.PointId
	for {
		page, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Offset:         offset,
			Limit:          qdrant.PtrOf(uint32(upsertBatch)),
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			return nil, Meta{}, domain.NewIndexUnavailable(s.collection, err)
		}
		points = append(points, page...)
		if len(page) < upsertBatch {
			break
		}
		offset = qdrant.NewIDNum(page[len(page)-1].GetId().GetNum() + 1)
	}
	if len(points) == 0 {
		return nil, Meta{}, domain.NewIndexUnavailable(s.collection, errors.New("collection is empty"))
	}

	sort.Slice(points, func(i, j int) bool { return points[i].GetId().GetNum() < points[j].GetId().GetNum() })

	want := points[0].GetPayload()[payloadCount].GetIntegerValue()
	if want != int64(len(points)) {
		return nil, Meta{}, domain.NewIndexUnavailable(s.collection,
			fmt.Errorf("collection holds %d points, snapshot has %d", len(points), want))
	}

	vectors := make([][]float32, len(points))
	entries := make([]knowledge.Entry, len(points))
	var meta Meta
	for i, p := range points {
		pl := p.GetPayload()
		if p.GetId().GetNum() != uint64(i) || pl[payloadCount].GetIntegerValue() != want {
			return nil, Meta{}, domain.NewIndexUnavailable(s.collection,
				fmt.Errorf("inconsistent point at position %d", i))
		}
		vectors[i] = pointVector(p)
		entries[i] = knowledge.Reconstruct(
			int(pl[payloadID].GetIntegerValue()),
			pl[payloadFailure].GetStringValue(),
			pl[payloadRootCause].GetStringValue(),
			pl[payloadSolution].GetStringValue(),
		)
		if i == 0 {
			meta.Model = pl[payloadModel].GetStringValue()
			meta.BuiltAt, _ = time.Parse(time.RFC3339, pl[payloadBuiltAt].GetStringValue())
		}
	}

	idx, err := vectorindex.Build(vectors)
	if err != nil {
		return nil, Meta{}, domain.NewIndexUnavailable(s.collection, err)
	}
	meta.Dim = idx.Dim()
	meta.Count = idx.Len()
	return vectorindex.NewSnapshot(idx, entries), meta, nil
}

func pointVector(p *qdrant.RetrievedPoint) []float32 {
	return p.GetVectors().GetVector().GetDense().GetData()
}
