package indexstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kailas-cloud/remedex/internal/domain"
	"github.com/kailas-cloud/remedex/internal/domain/knowledge"
	"github.com/kailas-cloud/remedex/internal/vectorindex"
)

const (
	// IndexFile holds the encoded vectors.
	IndexFile = "knowledge.index"
	// MetaFile holds the entries aligned with the vectors.
	MetaFile = "knowledge.meta.json"
)

type entryDTO struct {
	ID        int    `json:"id"`
	Failure   string `json:"failure"`
	RootCause string `json:"root_cause"`
	Solution  string `json:"solution"`
}

type metaDTO struct {
	Model       string     `json:"model"`
	Dim         int        `json:"dim"`
	Count       int        `json:"count"`
	BuiltAt     time.Time  `json:"built_at"`
	IndexSHA256 string     `json:"index_sha256"`
	Entries     []entryDTO `json:"entries"`
}

// FileStore keeps a snapshot as two co-located files in dir.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory the artifacts live in.
func (s *FileStore) Dir() string { return s.dir }

// Save writes both artifacts. Each file is replaced atomically.
func (s *FileStore) Save(_ context.Context, snap *vectorindex.Snapshot, meta Meta) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	var buf bytes.Buffer
	if err := snap.Index().Encode(&buf); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())

	dto := metaDTO{
		Model:       meta.Model,
		Dim:         snap.Index().Dim(),
		Count:       snap.Len(),
		BuiltAt:     meta.BuiltAt.UTC(),
		IndexSHA256: hex.EncodeToString(sum[:]),
		Entries:     make([]entryDTO, snap.Len()),
	}
	for i, e := range snap.Entries() {
		dto.Entries[i] = entryDTO{ID: e.ID(), Failure: e.Failure(), RootCause: e.RootCause(), Solution: e.Solution()}
	}
	metaBytes, err := json.MarshalIndent(dto, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	if err := writeAtomic(filepath.Join(s.dir, IndexFile), buf.Bytes()); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.dir, MetaFile), metaBytes)
}

// Load reads both artifacts and verifies they describe the same snapshot.
func (s *FileStore) Load(_ context.Context) (*vectorindex.Snapshot, Meta, error) {
	indexPath := filepath.Join(s.dir, IndexFile)
	metaPath := filepath.Join(s.dir, MetaFile)

	raw, err := os.ReadFile(indexPath)
	if err != nil {
		return nil, Meta{}, domain.NewIndexUnavailable(indexPath, err)
	}
	metaRaw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, Meta{}, domain.NewIndexUnavailable(metaPath, err)
	}

	var dto metaDTO
	if err := json.Unmarshal(metaRaw, &dto); err != nil {
		return nil, Meta{}, domain.NewIndexUnavailable(metaPath, err)
	}
	if dto.IndexSHA256 != "" {
		sum := sha256.Sum256(raw)
		if hex.EncodeToString(sum[:]) != dto.IndexSHA256 {
			return nil, Meta{}, domain.NewIndexUnavailable(indexPath, errors.New("index does not match metadata checksum"))
		}
	}

	idx, err := vectorindex.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, Meta{}, domain.NewIndexUnavailable(indexPath, err)
	}
	if idx.Len() != len(dto.Entries) {
		return nil, Meta{}, domain.NewIndexUnavailable(metaPath,
			fmt.Errorf("%d vectors for %d entries", idx.Len(), len(dto.Entries)))
	}

	entries := make([]knowledge.Entry, len(dto.Entries))
	for i, e := range dto.Entries {
		entries[i] = knowledge.Reconstruct(e.ID, e.Failure, e.RootCause, e.Solution)
	}

	meta := Meta{Model: dto.Model, Dim: idx.Dim(), Count: idx.Len(), BuiltAt: dto.BuiltAt}
	return vectorindex.NewSnapshot(idx, entries), meta, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
