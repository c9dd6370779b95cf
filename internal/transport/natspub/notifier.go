// Package natspub publishes completed analyses to NATS.
package natspub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/kailas-cloud/remedex/internal/usecase/analysis"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "remedex.analysis.completed"

type solutionDTO struct {
	Failure     string  `json:"failure"`
	RootCause   string  `json:"root_cause"`
	Solution    string  `json:"solution"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
	GlobalIndex int     `json:"global_index"`
}

type reportDTO struct {
	AnalysisID     string        `json:"analysis_id"`
	Query          string        `json:"query"`
	EffectiveQuery string        `json:"effective_query"`
	Source         string        `json:"source"`
	PipelineURL    string        `json:"pipeline_url,omitempty"`
	Outcome        string        `json:"outcome"`
	Diagnostic     string        `json:"diagnostic,omitempty"`
	DurationMS     int64         `json:"duration_ms"`
	Solutions      []solutionDTO `json:"solutions"`
	CompletedAt    time.Time     `json:"completed_at"`
}

// Notifier publishes analysis reports as JSON.
type Notifier struct {
	nc      *nats.Conn
	subject string
	logger  *zap.Logger
}

// Connect dials url and returns a Notifier publishing on subject.
func Connect(url, subject string, logger *zap.Logger) (*Notifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	nc, err := nats.Connect(url,
		nats.Name("remedex"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return New(nc, subject, logger), nil
}

// New wraps an existing connection.
func New(nc *nats.Conn, subject string, logger *zap.Logger) *Notifier {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{nc: nc, subject: subject, logger: logger}
}

// Subject returns the publish subject.
func (n *Notifier) Subject() string { return n.subject }

// Notify publishes r. The message is buffered by the client; delivery is best effort.
func (n *Notifier) Notify(_ context.Context, r analysis.Report) error {
	data, err := json.Marshal(toDTO(r))
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := n.nc.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", n.subject, err)
	}
	n.logger.Debug("Analysis published",
		zap.String("subject", n.subject),
		zap.String("analysis_id", r.ID.String()),
	)
	return nil
}

// Ping flushes pending messages, confirming the server is reachable.
func (n *Notifier) Ping(ctx context.Context) error {
	if err := n.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	return nil
}

// Close drains and closes the connection.
func (n *Notifier) Close() error {
	if err := n.nc.Drain(); err != nil {
		n.nc.Close()
		return fmt.Errorf("nats drain: %w", err)
	}
	return nil
}

func toDTO(r analysis.Report) reportDTO {
	sols := make([]solutionDTO, len(r.Solutions))
	for i, s := range r.Solutions {
		sols[i] = solutionDTO{
			Failure:     s.Failure(),
			RootCause:   s.RootCause(),
			Solution:    s.Solution(),
			Confidence:  s.Confidence(),
			Reason:      s.Reason(),
			GlobalIndex: s.GlobalIndex(),
		}
	}
	return reportDTO{
		AnalysisID:     r.ID.String(),
		Query:          r.Query,
		EffectiveQuery: r.EffectiveQuery,
		Source:         string(r.Source),
		PipelineURL:    r.PipelineURL,
		Outcome:        string(r.Outcome),
		Diagnostic:     r.Diagnostic,
		DurationMS:     r.Duration.Milliseconds(),
		Solutions:      sols,
		CompletedAt:    time.Now().UTC(),
	}
}
