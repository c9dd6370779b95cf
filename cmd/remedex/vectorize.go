package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(vectorizeCmd)
}

var vectorizeCmd = &cobra.Command{
	Use:   "vectorize",
	Short: "Rebuild and persist the vector index",
	Long: `Embed every knowledge base entry and persist the index to the configured
store (index.dir for the file driver, a Qdrant collection for the qdrant driver).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.vectorize.Vectorize(cmd.Context())
		if err != nil {
			return fmt.Errorf("vectorize: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Vector index created: %d entries from %s, dim %d, took %s\n",
			stats.Entries, stats.Source, stats.Dim, stats.Duration.Round(time.Millisecond))
		return nil
	},
}
