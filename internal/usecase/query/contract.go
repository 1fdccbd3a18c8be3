package query

import (
	"context"

	domquery "github.com/tomsolo12/dct-search/internal/domain/query"
)

// Runner executes ad-hoc SQL against the catalog backend.
type Runner interface {
	ExecuteQuery(ctx context.Context, sourceID int, sql string) (domquery.Result, error)
}
