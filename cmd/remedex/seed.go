package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/remedex/internal/repository/knowledge"
)

var seedDB string

func init() {
	seedCmd.Flags().StringVar(&seedDB, "db", "data/devops_issues.db", "SQLite database to (re)create")
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the SQLite knowledge base with the reference incidents",
	Long: `Recreate the devops_issues table in a SQLite file and insert the reference
incidents. Point knowledge.sqlite_path at the file and run vectorize afterwards.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := knowledge.Seed(cmd.Context(), seedDB)
		if err != nil {
			return fmt.Errorf("seed %s: %w", seedDB, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d incidents into %s\n", n, seedDB)
		return nil
	},
}
