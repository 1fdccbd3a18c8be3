package session

import (
	"errors"
	"testing"

	"github.com/tomsolo12/dct-search/internal/domain"
	"github.com/tomsolo12/dct-search/internal/domain/filters"
)

func TestRefineReplacesFacetSelection(t *testing.T) {
	searcher := &fakeSearcher{}
	s := New("s1", searcher, &fakeSuggester{})
	defer s.Close()

	s.Apply(filters.Patch{
		Query:   strPtr("orders"),
		Schemas: &[]string{"sales", "finance"},
	})

	state, err := s.Refine(FacetSchemas, "finance")
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if got := state.Schemas(); len(got) != 1 || got[0] != "finance" {
		t.Fatalf("schemas = %v, want [finance]", got)
	}
	// Untouched facets survive the refinement.
	if got := state.Query(); got != "orders" {
		t.Fatalf("query = %q, want %q", got, "orders")
	}
	waitFor(t, func() bool { return len(searcher.calls()) == 2 })
}

func TestRefineSourceParsesID(t *testing.T) {
	s := New("s1", &fakeSearcher{}, &fakeSuggester{})
	defer s.Close()

	state, err := s.Refine(FacetSources, "42")
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if got := state.SourceIDs(); len(got) != 1 || got[0] != 42 {
		t.Fatalf("source ids = %v, want [42]", got)
	}
}

func TestRefineRejectsBadSourceID(t *testing.T) {
	searcher := &fakeSearcher{}
	s := New("s1", searcher, &fakeSuggester{})
	defer s.Close()

	before := s.Filters()
	state, err := s.Refine(FacetSources, "not-a-number")
	if err == nil {
		t.Fatal("expected error for non-numeric source id")
	}
	if !state.Equal(before) {
		t.Fatal("rejected refinement mutated state")
	}
	if got := len(searcher.calls()); got != 0 {
		t.Fatalf("rejected refinement dispatched %d searches", got)
	}
}

func TestRefineUnknownFacet(t *testing.T) {
	s := New("s1", &fakeSearcher{}, &fakeSuggester{})
	defer s.Close()

	_, err := s.Refine("owners", "alice")
	if !errors.Is(err, domain.ErrUnknownFacet) {
		t.Fatalf("err = %v, want ErrUnknownFacet", err)
	}
}

func TestRefineTags(t *testing.T) {
	s := New("s1", &fakeSearcher{}, &fakeSuggester{})
	defer s.Close()

	state, err := s.Refine(FacetTags, "pii")
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if got := state.Tags(); len(got) != 1 || got[0] != "pii" {
		t.Fatalf("tags = %v, want [pii]", got)
	}
}
