package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/config"
	dbRedis "github.com/kailas-cloud/remedex/internal/db/redis"
	"github.com/kailas-cloud/remedex/internal/domain"
	"github.com/kailas-cloud/remedex/internal/metrics"
	"github.com/kailas-cloud/remedex/internal/repository/embcache"
	"github.com/kailas-cloud/remedex/internal/repository/indexstore"
	"github.com/kailas-cloud/remedex/internal/repository/knowledge"
	"github.com/kailas-cloud/remedex/internal/transport/ci"
	"github.com/kailas-cloud/remedex/internal/transport/fastembed"
	"github.com/kailas-cloud/remedex/internal/transport/natspub"
	openaiTransport "github.com/kailas-cloud/remedex/internal/transport/openai"
	"github.com/kailas-cloud/remedex/internal/usecase/analysis"
	healthuc "github.com/kailas-cloud/remedex/internal/usecase/health"
	"github.com/kailas-cloud/remedex/internal/usecase/pipelinelog"
	"github.com/kailas-cloud/remedex/internal/usecase/retrieval"
	"github.com/kailas-cloud/remedex/internal/usecase/scoring"
	"github.com/kailas-cloud/remedex/internal/usecase/vectorize"
	"github.com/kailas-cloud/remedex/internal/vectorindex"
)

// app is the composition root shared by every command.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	holder    *vectorindex.Holder
	vectorize *vectorize.Service
	analysis  *analysis.Service
	health    *healthuc.Service
	closers   []func()
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, holder: vectorindex.NewHolder()}
	var deps healthuc.Deps
	deps.Index = a.holder

	embedder, err := a.buildEmbedder(ctx, &deps)
	if err != nil {
		a.Close()
		return nil, err
	}

	store, err := a.buildStore()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.vectorize = vectorize.New(
		a.buildKnowledgeSource(), embedder, store, a.holder,
		cfg.Embedding.Model, cfg.Embedding.BatchSize, logger,
	)

	chat := openaiTransport.NewChat(&openaiTransport.ChatConfig{
		Config: openaiTransport.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: time.Duration(cfg.LLM.TimeoutSec) * time.Second,
			Logger:  logger,
		},
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	deps.LLM = chat

	ciClient, err := ci.NewClient(ci.Config{
		User:               cfg.Pipeline.User,
		Password:           cfg.Pipeline.Password,
		CABundle:           cfg.Pipeline.CABundle,
		InsecureSkipVerify: cfg.Pipeline.InsecureSkipVerify,
		Timeout:            time.Duration(cfg.Pipeline.TimeoutSec) * time.Second,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create ci client: %w", err)
	}

	notifier, err := a.buildNotifier(&deps)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.analysis = analysis.New(
		pipelinelog.New(ciClient, cfg.Pipeline.MaxLines, logger),
		retrieval.New(a.holder, a.vectorize, embedder, logger),
		scoring.New(chat, scoring.Config{
			ChunkSize:   cfg.Scoring.ChunkSize,
			Threshold:   cfg.Scoring.Threshold,
			Workers:     cfg.Scoring.Workers,
			RatePerSec:  cfg.LLM.RatePerSec,
			CallTimeout: time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		}, logger),
		notifier,
		logger,
	)
	a.health = healthuc.New(deps)
	return a, nil
}

// buildEmbedder assembles the decorator chain: provider -> Redis cache -> prefix.
func (a *app) buildEmbedder(ctx context.Context, deps *healthuc.Deps) (domain.Embedder, error) {
	cfg := a.cfg.Embedding
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	var base domain.Embedder
	switch cfg.Provider {
	case "openai":
		e := openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    timeout,
			Logger:     a.logger,
		})
		deps.Embedding = e
		base = e
	case "fastembed":
		e, err := fastembed.New(fastembed.Config{
			Model:     cfg.Model,
			CacheDir:  cfg.CacheDir,
			BatchSize: cfg.BatchSize,
			Timeout:   timeout,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("create fastembed embedder: %w", err)
		}
		a.closers = append(a.closers, func() { _ = e.Close() })
		deps.Embedding = e
		base = e
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	a.logger.Info("Embedder created",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
	)

	embedder := base
	if len(a.cfg.Cache.Addrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:       a.cfg.Cache.Addrs,
			Password:    a.cfg.Cache.Password,
			DialTimeout: 5 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("create embedding cache: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		if err := store.WaitForReady(ctx, 10*time.Second); err != nil {
			return nil, fmt.Errorf("embedding cache not ready: %w", err)
		}
		deps.Cache = store
		embedder = embcache.New(base, store, cfg.Model,
			time.Duration(a.cfg.Cache.TTLSec)*time.Second, metrics.EmbeddingCacheTotal, a.logger)
		a.logger.Info("Embedding cache enabled", zap.Strings("addrs", a.cfg.Cache.Addrs))
	}

	// outermost, so the cache key includes the prefix
	if cfg.Prefix != "" {
		embedder = domain.NewPrefixEmbedder(embedder, cfg.Prefix)
	}
	return embedder, nil
}

func (a *app) buildStore() (vectorize.SnapshotStore, error) {
	cfg := a.cfg.Index
	switch cfg.Driver {
	case "qdrant":
		s, err := indexstore.NewQdrantStore(indexstore.QdrantConfig{
			Host:       cfg.QdrantHost,
			Port:       cfg.QdrantPort,
			APIKey:     cfg.QdrantAPIKey,
			UseTLS:     cfg.QdrantTLS,
			Collection: cfg.QdrantCollection,
			Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("create index store: %w", err)
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		return s, nil
	default:
		return indexstore.NewFileStore(cfg.Dir), nil
	}
}

// buildKnowledgeSource prefers the SQLite database and falls back to the built-in entries.
func (a *app) buildKnowledgeSource() knowledge.Source {
	if a.cfg.Knowledge.SQLitePath == "" {
		return knowledge.NewBuiltin()
	}
	return knowledge.NewChain(a.logger,
		knowledge.NewSQLite(a.cfg.Knowledge.SQLitePath, a.logger),
		knowledge.NewBuiltin(),
	)
}

func (a *app) buildNotifier(deps *healthuc.Deps) (analysis.Notifier, error) {
	logNotifier := analysis.NewLogNotifier(a.logger)
	if a.cfg.Notify.NATSURL == "" {
		return logNotifier, nil
	}
	pub, err := natspub.Connect(a.cfg.Notify.NATSURL, a.cfg.Notify.Subject, a.logger)
	if err != nil {
		return nil, fmt.Errorf("create notifier: %w", err)
	}
	a.closers = append(a.closers, func() { _ = pub.Close() })
	deps.Notify = pub
	a.logger.Info("NATS notifications enabled", zap.String("subject", pub.Subject()))
	return analysis.MultiNotifier{logNotifier, pub}, nil
}

// ensureIndex publishes the persisted snapshot, or builds one when none is usable.
func (a *app) ensureIndex(ctx context.Context) error {
	if !a.cfg.Index.RebuildOnStart {
		err := a.vectorize.EnsureLoaded(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrIndexUnavailable) {
			a.logger.Warn("Loading persisted index failed", zap.Error(err))
		} else {
			a.logger.Info("No usable persisted index, vectorizing", zap.Error(err))
		}
	}
	if _, err := a.vectorize.Vectorize(ctx); err != nil {
		return fmt.Errorf("vectorize: %w", err)
	}
	return nil
}

func (a *app) options() analysis.Options {
	return analysis.Options{
		K:          a.cfg.Scoring.K,
		Threshold:  a.cfg.Scoring.Threshold,
		MaxResults: a.cfg.Scoring.MaxResults,
	}
}

// Close releases resources in reverse creation order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
