// Package reindex rebuilds the vector index when the knowledge database changes on disk.
package reindex

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/domain"
	"github.com/kailas-cloud/remedex/internal/usecase/vectorize"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 2 * time.Second

// Rebuilder re-vectorizes the knowledge base.
type Rebuilder interface {
	Vectorize(ctx context.Context) (vectorize.Stats, error)
}

// Watcher triggers a rebuild after the database file stops changing.
type Watcher struct {
	path      string
	debounce  time.Duration
	rebuilder Rebuilder
	watcher   *fsnotify.Watcher
	logger    *zap.Logger
}

// New watches the directory holding path. SQLite rewrites its journal and WAL
// siblings, so they count as changes to path too.
func New(path string, debounce time.Duration, rebuilder Rebuilder, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{
		path:      filepath.Clean(path),
		debounce:  debounce,
		rebuilder: rebuilder,
		watcher:   fw,
		logger:    logger,
	}, nil
}

// Run blocks until ctx is done, rebuilding once per burst of changes.
func (w *Watcher) Run(ctx context.Context) {
	defer func() { _ = w.watcher.Close() }()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Knowledge base changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Knowledge base watcher error", zap.Error(err))
		case <-timer.C:
			if w.rebuild(ctx) {
				timer.Reset(w.debounce)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	return name == w.path || strings.HasPrefix(name, w.path+"-")
}

// rebuild reports whether it should be retried.
func (w *Watcher) rebuild(ctx context.Context) bool {
	stats, err := w.rebuilder.Vectorize(ctx)
	switch {
	case errors.Is(err, domain.ErrRebuildInProgress):
		w.logger.Info("Rebuild already running, retrying after debounce")
		return true
	case err != nil:
		w.logger.Error("Knowledge base rebuild failed", zap.Error(err))
	default:
		w.logger.Info("Knowledge base reindexed",
			zap.String("source", stats.Source),
			zap.Int("entries", stats.Entries),
			zap.Duration("duration", stats.Duration),
		)
	}
	return false
}
