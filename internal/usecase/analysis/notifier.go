package analysis

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier reports completed analyses to the log.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the solution count of r.
func (n *LogNotifier) Notify(_ context.Context, r Report) error {
	n.logger.Info("DevOps issue analysis completed",
		zap.String("analysis_id", r.ID.String()),
		zap.Int("potential_solutions", len(r.Solutions)),
	)
	return nil
}

// MultiNotifier fans a report out to several notifiers and returns the first error.
type MultiNotifier []Notifier

// Notify calls every notifier even if an earlier one fails.
func (m MultiNotifier) Notify(ctx context.Context, r Report) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}
