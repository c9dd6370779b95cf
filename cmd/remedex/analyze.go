package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	analyzeJSON bool
	analyzeMax  int
)

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the report as JSON")
	analyzeCmd.Flags().IntVar(&analyzeMax, "max-solutions", 0, "limit the number of suggestions (default scoring.max_results)")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <issue...>",
	Short: "Analyze one incident description or pipeline URL",
	Long: `Analyze one incident description. A Jenkins style pipeline URL in the text is
replaced by the error lines of its console log before retrieval.

Examples:
  remedex analyze "Docker build fails with permission denied"
  remedex analyze --json https://jenkins.example.com/job/app/42/`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		if err := a.ensureIndex(cmd.Context()); err != nil {
			return err
		}

		opts := a.options()
		if analyzeMax > 0 {
			opts.MaxResults = analyzeMax
		}
		report := a.analysis.Analyze(cmd.Context(), strings.Join(args, " "), opts)
		if analyzeJSON {
			return writeReportJSON(cmd.OutOrStdout(), report)
		}
		printReport(cmd.OutOrStdout(), report)
		if report.Diagnostic != "" && len(report.Solutions) == 0 {
			return fmt.Errorf("analysis degraded: %s", report.Diagnostic)
		}
		return nil
	},
}
