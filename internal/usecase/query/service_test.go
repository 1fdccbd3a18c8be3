package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	domquery "github.com/tomsolo12/dct-search/internal/domain/query"
)

type mockRunner struct {
	res      domquery.Result
	err      error
	sourceID int
	sql      string
	calls    int
}

func (m *mockRunner) ExecuteQuery(_ context.Context, sourceID int, sql string) (domquery.Result, error) {
	m.calls++
	m.sourceID = sourceID
	m.sql = sql
	return m.res, m.err
}

func TestExecute(t *testing.T) {
	runner := &mockRunner{res: domquery.Result{RowCount: 2, Columns: []string{"id"}}}
	svc := New(runner, nil)

	res, err := svc.Execute(context.Background(), 3, "  select id from orders  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RowCount != 2 {
		t.Errorf("row count = %d, want 2", res.RowCount)
	}
	if runner.sql != "select id from orders" {
		t.Errorf("sql not trimmed: %q", runner.sql)
	}
	if runner.sourceID != 3 {
		t.Errorf("source id = %d, want 3", runner.sourceID)
	}
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name     string
		sourceID int
		sql      string
		want     error
	}{
		{"zero source", 0, "select 1", ErrBadSourceID},
		{"negative source", -1, "select 1", ErrBadSourceID},
		{"empty sql", 1, "", ErrEmptySQL},
		{"whitespace sql", 1, "   \n\t", ErrEmptySQL},
		{"oversized sql", 1, strings.Repeat("x", MaxSQLLength+1), ErrSQLTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{}
			svc := New(runner, nil)
			_, err := svc.Execute(context.Background(), tt.sourceID, tt.sql)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if runner.calls != 0 {
				t.Error("invalid input reached the runner")
			}
		})
	}
}

func TestExecute_RunnerError(t *testing.T) {
	wantErr := errors.New("backend down")
	svc := New(&mockRunner{err: wantErr}, nil)
	_, err := svc.Execute(context.Background(), 1, "select 1")
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}
