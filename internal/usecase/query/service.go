package query

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	domquery "github.com/tomsolo12/dct-search/internal/domain/query"
)

// MaxSQLLength bounds the statement size accepted from the explorer.
const MaxSQLLength = 16 * 1024

var (
	// ErrEmptySQL is returned when the statement is blank.
	ErrEmptySQL = errors.New("sql statement is empty")
	// ErrSQLTooLong is returned when the statement exceeds MaxSQLLength.
	ErrSQLTooLong = errors.New("sql statement too long")
	// ErrBadSourceID is returned for non-positive source ids.
	ErrBadSourceID = errors.New("source id must be positive")
)

// Service validates and runs ad-hoc queries.
type Service struct {
	runner Runner
	logger *zap.Logger
}

// New creates a Service.
func New(runner Runner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{runner: runner, logger: logger}
}

// Execute runs one statement against the given source. The backend
// enforces the execution budget; this layer only rejects obviously bad
// input before a round trip is spent on it.
func (s *Service) Execute(ctx context.Context, sourceID int, sql string) (domquery.Result, error) {
	if sourceID <= 0 {
		return domquery.Result{}, ErrBadSourceID
	}
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return domquery.Result{}, ErrEmptySQL
	}
	if len(sql) > MaxSQLLength {
		return domquery.Result{}, ErrSQLTooLong
	}

	res, err := s.runner.ExecuteQuery(ctx, sourceID, sql)
	if err != nil {
		return domquery.Result{}, err
	}
	s.logger.Debug("ad-hoc query executed",
		zap.Int("source_id", sourceID),
		zap.Int("row_count", res.RowCount),
		zap.Int64("duration_ms", res.DurationMS))
	return res, nil
}
