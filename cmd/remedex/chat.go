package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/remedex/internal/usecase/analysis"
)

// exitWords end the chat session, compared case-insensitively.
var exitWords = map[string]struct{}{"exit": {}, "quit": {}, "bye": {}, "end": {}}

func init() {
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive troubleshooting session",
	Long: `Read incident descriptions from stdin, one per line, and print suggestions
for each. Type exit, quit, bye or end to leave.`,
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

		if err := a.ensureIndex(cmd.Context()); err != nil {
			return err
		}

		opts := a.options()
		return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(),
			func(ctx context.Context, issue string) analysis.Report {
				return a.analysis.Analyze(ctx, issue, opts)
			})
	},
}

type analyzeFunc func(ctx context.Context, issue string) analysis.Report

// runChat loops until an exit word, EOF or cancellation.
func runChat(ctx context.Context, in io.Reader, out io.Writer, analyze analyzeFunc) error {
	fmt.Fprintln(out, "remedex: describe your DevOps issue or paste a pipeline URL. Type 'exit' or 'quit' to end the session.")

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		if ctx.Err() != nil {
			fmt.Fprintln(out, "\nSession interrupted")
			return nil
		}
		fmt.Fprint(out, "\nissue> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(out)
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if _, ok := exitWords[strings.ToLower(line)]; ok {
			fmt.Fprintln(out, "Session ended")
			return nil
		}
		if line == "" {
			fmt.Fprintln(out, "Please provide a valid DevOps issue description.")
			continue
		}

		printReport(out, analyze(ctx, line))
	}
}
