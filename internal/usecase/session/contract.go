package session

import (
	"context"

	"github.com/tomsolo12/dct-search/internal/domain/search/request"
	"github.com/tomsolo12/dct-search/internal/domain/search/result"
	"github.com/tomsolo12/dct-search/internal/domain/suggest"
)

// Searcher executes faceted table searches against the catalog backend.
type Searcher interface {
	SearchTables(ctx context.Context, req *request.Request) (result.Page, error)
}

// Suggester fetches lookahead suggestions for a query prefix.
type Suggester interface {
	Suggestions(ctx context.Context, q string) ([]suggest.Item, error)
}
