package session

import (
	"testing"
	"time"

	"github.com/tomsolo12/dct-search/internal/domain/filters"
)

func TestFiltersListenerNotified(t *testing.T) {
	s := New("s1", &fakeSearcher{}, &fakeSuggester{})
	defer s.Close()

	got := make(chan filters.State, 1)
	s.OnFiltersChanged(func(st filters.State) { got <- st })

	s.Apply(filters.Patch{Query: strPtr("orders")})

	select {
	case st := <-got:
		if st.Query() != "orders" {
			t.Fatalf("notified query = %q", st.Query())
		}
	case <-testDeadline(t):
		t.Fatal("filters listener never fired")
	}
}

func TestCloseStopsPendingSuggest(t *testing.T) {
	suggester := &fakeSuggester{}
	s := New("s1", &fakeSearcher{}, suggester, WithDebounce(20*time.Millisecond))

	s.Apply(filters.Patch{Query: strPtr("orders")})
	s.Close()

	time.Sleep(60 * time.Millisecond)
	if calls := suggester.calls(); len(calls) != 0 {
		t.Fatalf("closed session fetched suggestions: %v", calls)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := New("s1", &fakeSearcher{}, &fakeSuggester{})
	s.Close()
	s.Close()
}

func TestApplyNormalizesThroughSession(t *testing.T) {
	s := New("s1", &fakeSearcher{}, &fakeSuggester{})
	defer s.Close()

	state := s.Apply(filters.Patch{
		Query: strPtr("  orders  "),
		Tags:  &[]string{"pii", "pii", "finance"},
	})
	if state.Query() != "orders" {
		t.Errorf("query = %q, want trimmed", state.Query())
	}
	if tags := state.Tags(); len(tags) != 2 || tags[0] != "finance" || tags[1] != "pii" {
		t.Errorf("tags = %v, want sorted deduped", tags)
	}
	if s.Filters().ActiveCount() != 2 {
		t.Errorf("active count = %d, want 2", s.Filters().ActiveCount())
	}
}
