package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/metrics"
	chiTransport "github.com/kailas-cloud/remedex/internal/transport/chi"
	"github.com/kailas-cloud/remedex/internal/usecase/reindex"
	"github.com/kailas-cloud/remedex/internal/version"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. The persisted index is loaded on start and rebuilt from the
knowledge base when missing. With knowledge.watch enabled the SQLite database is
watched and re-vectorized after every change.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting remedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", envName),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_driver", cfg.Index.Driver),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("llm_model", cfg.LLM.Model),
	)

	metrics.Register()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	// A missing index leaves the service up but unhealthy; POST /devops/vectorize can fix it.
	if err := a.ensureIndex(ctx); err != nil {
		logger.Error("Index not ready", zap.Error(err))
	}

	if cfg.Knowledge.Watch {
		w, err := reindex.New(cfg.Knowledge.SQLitePath,
			time.Duration(cfg.Knowledge.DebounceSec)*time.Second, a.vectorize, logger)
		if err != nil {
			return fmt.Errorf("watch knowledge base: %w", err)
		}
		go w.Run(ctx)
		logger.Info("Watching knowledge base", zap.String("path", cfg.Knowledge.SQLitePath))
	}

	server := chiTransport.NewServer(a.analysis, a.vectorize, a.health, logger).
		WithDefaultOptions(a.options())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           chiTransport.NewRouter(server, cfg.Auth.APIKeys),
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
