// Package main implements the remedex CLI: the HTTP server plus one-shot
// vectorize, analyze, chat and seed commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/config"
	logpkg "github.com/kailas-cloud/remedex/internal/logger"
	"github.com/kailas-cloud/remedex/internal/version"
)

var (
	// envName selects config/<env>.yaml
	envName string
	// configPath overrides the env lookup
	configPath string
	// logLevel overrides logging.level
	logLevel string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "remedex",
	Short: "DevOps incident remediation assistant",
	Long: `remedex matches incident descriptions and CI pipeline logs against a
knowledge base of known failures and asks an LLM which remediations apply.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", config.GetEnv(), "environment name, selects config/<env>.yaml")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "explicit config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
	rootCmd.SetVersionTemplate(version.String() + "\n")
}

// loadRuntime reads the config and builds the logger selected by the global flags.
func loadRuntime() (config.Config, *zap.Logger, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(envName)
	}
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logpkg.NewWithFile(envName, level, logpkg.FileSink{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}
