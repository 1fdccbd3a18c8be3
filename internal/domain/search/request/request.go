package request

import (
	"fmt"

	"github.com/tomsolo12/dct-search/internal/domain/filters"
)

// Page size limits.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Request is a validated search dispatch: a filter snapshot plus
// pagination. Immutable once built.
type Request struct {
	state  filters.State
	limit  int
	offset int
}

// New validates and normalizes dispatch parameters.
// limit defaults to 50 and is clamped to 100; offset must be >= 0.
func New(state filters.State, limit, offset int) (Request, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		return Request{}, fmt.Errorf("offset must be >= 0, got %d", offset)
	}
	return Request{state: state, limit: limit, offset: offset}, nil
}

// Filters returns the filter snapshot.
func (r *Request) Filters() filters.State { return r.state }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// Offset returns the result offset.
func (r *Request) Offset() int { return r.offset }
