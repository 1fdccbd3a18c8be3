package session

import (
	"fmt"
	"strconv"

	"github.com/tomsolo12/dct-search/internal/domain"
	"github.com/tomsolo12/dct-search/internal/domain/filters"
)

// Facet names accepted by Refine.
const (
	FacetSources = "sources"
	FacetSchemas = "schemas"
	FacetTags    = "tags"
)

// Refine narrows one facet to a single clicked value, replacing any
// prior selection on that facet. Other facets are untouched, and the
// update flows through Apply so dispatch and notification behave the
// same as any other filter change.
func (s *Session) Refine(facet, value string) (filters.State, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return s.Filters(), domain.ErrSessionClosed
	}

	var patch filters.Patch
	switch facet {
	case FacetSources:
		id, err := strconv.Atoi(value)
		if err != nil {
			return s.Filters(), fmt.Errorf("refine sources: bad source id %q: %w", value, err)
		}
		patch.SourceIDs = &[]int{id}
	case FacetSchemas:
		patch.Schemas = &[]string{value}
	case FacetTags:
		patch.Tags = &[]string{value}
	default:
		return s.Filters(), fmt.Errorf("refine %q: %w", facet, domain.ErrUnknownFacet)
	}
	return s.Apply(patch), nil
}
