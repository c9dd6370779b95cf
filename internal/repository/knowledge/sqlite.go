package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	domkn "github.com/kailas-cloud/remedex/internal/domain/knowledge"
)

const selectIssues = `SELECT failure, root_cause, solution FROM devops_issues ORDER BY id`

// SQLite reads entries from the devops_issues table of a SQLite file.
type SQLite struct {
	path   string
	logger *zap.Logger
}

// NewSQLite creates a source for the database at path.
func NewSQLite(path string, logger *zap.Logger) *SQLite {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLite{path: path, logger: logger}
}

// Name implements Source.
func (s *SQLite) Name() string { return "sqlite" }

// Path returns the database file path.
func (s *SQLite) Path() string { return s.path }

// Load returns every row ordered by id. Ids are reassigned by position.
// A missing file is not an error.
func (s *SQLite) Load(ctx context.Context) ([]domkn.Entry, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		s.logger.Info("Knowledge database not found", zap.String("path", s.path))
		return nil, nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", s.path, err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, selectIssues)
	if err != nil {
		return nil, fmt.Errorf("query devops_issues: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domkn.Entry
	for rows.Next() {
		var failure, rootCause, solution sql.NullString
		if err := rows.Scan(&failure, &rootCause, &solution); err != nil {
			return nil, fmt.Errorf("scan devops_issues: %w", err)
		}
		if strings.TrimSpace(failure.String) == "" || strings.TrimSpace(solution.String) == "" {
			s.logger.Warn("Skipping incomplete knowledge row", zap.Int("position", len(out)))
			continue
		}
		out = append(out, domkn.Reconstruct(len(out), failure.String, rootCause.String, solution.String))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate devops_issues: %w", err)
	}

	s.logger.Info("Loaded knowledge from database", zap.String("path", s.path), zap.Int("entries", len(out)))
	return out, nil
}
