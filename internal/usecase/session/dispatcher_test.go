package session

import (
	"testing"
	"time"

	"github.com/tomsolo12/dct-search/internal/domain"
	"github.com/tomsolo12/dct-search/internal/domain/filters"
)

func TestApplyDispatchesSearch(t *testing.T) {
	searcher := &fakeSearcher{replies: []searchReply{{page: pageWithTotal(120)}}}
	s := New("s1", searcher, &fakeSuggester{})
	defer s.Close()

	state := s.Apply(filters.Patch{Query: strPtr("orders")})
	if got := state.Query(); got != "orders" {
		t.Fatalf("query = %q, want %q", got, "orders")
	}

	waitFor(t, func() bool { return !s.IsSearching() })

	res := s.Results()
	if !res.HasPage || res.Failed {
		t.Fatalf("results = %+v, want page without failure", res)
	}
	if got := res.Page.Metrics.TotalResults; got != 120 {
		t.Fatalf("total results = %d, want 120", got)
	}

	calls := searcher.calls()
	if len(calls) != 1 {
		t.Fatalf("searcher calls = %d, want 1", len(calls))
	}
	if calls[0].Offset() != 0 || calls[0].Limit() != DefaultPageSize {
		t.Fatalf("request limit/offset = %d/%d, want %d/0",
			calls[0].Limit(), calls[0].Offset(), DefaultPageSize)
	}
}

func TestFailedSearchRetainsPriorPage(t *testing.T) {
	searcher := &fakeSearcher{replies: []searchReply{
		{page: pageWithTotal(80)},
		{err: domain.ErrUnavailable},
		{page: pageWithTotal(30)},
	}}
	s := New("s1", searcher, &fakeSuggester{})
	defer s.Close()

	s.Apply(filters.Patch{Query: strPtr("orders")})
	waitFor(t, func() bool { return s.Results().HasPage })

	s.Apply(filters.Patch{Query: strPtr("orders archived")})
	waitFor(t, func() bool { return s.Results().Failed })

	res := s.Results()
	if res.Page.Metrics.TotalResults != 80 {
		t.Fatalf("prior page lost: total = %d, want 80", res.Page.Metrics.TotalResults)
	}

	// The next success clears the failure flag and replaces the page.
	s.Apply(filters.Patch{Query: strPtr("customers")})
	waitFor(t, func() bool {
		r := s.Results()
		return !r.Failed && r.Page.Metrics.TotalResults == 30
	})
}

func TestStaleCompletionDiscarded(t *testing.T) {
	firstHold := make(chan struct{})
	searcher := &fakeSearcher{
		replies: []searchReply{
			{page: pageWithTotal(100)},
			{page: pageWithTotal(200)},
		},
		holds: map[int]chan struct{}{1: firstHold},
	}
	s := New("s1", searcher, &fakeSuggester{})
	defer s.Close()

	// The first dispatch stalls on the wire; the second overtakes it.
	s.Apply(filters.Patch{Query: strPtr("first")})
	waitFor(t, func() bool { return len(searcher.calls()) == 1 })
	s.Apply(filters.Patch{Query: strPtr("second")})

	waitFor(t, func() bool {
		r := s.Results()
		return r.HasPage && r.Page.Metrics.TotalResults == 200
	})

	// Now the slow first response arrives. It is stale and must not
	// clobber the newer page or revive the searching flag.
	close(firstHold)
	time.Sleep(20 * time.Millisecond)

	res := s.Results()
	if res.Page.Metrics.TotalResults != 200 {
		t.Fatalf("stale response clobbered page: total = %d, want 200",
			res.Page.Metrics.TotalResults)
	}
	if s.IsSearching() {
		t.Fatal("stale completion set isSearching")
	}
}

func TestStaleCompletionKeepsSearchingFlag(t *testing.T) {
	firstHold := make(chan struct{})
	secondHold := make(chan struct{})
	searcher := &fakeSearcher{
		holds: map[int]chan struct{}{1: firstHold, 2: secondHold},
	}
	s := New("s1", searcher, &fakeSuggester{})
	defer s.Close()

	s.Apply(filters.Patch{Query: strPtr("first")})
	waitFor(t, func() bool { return len(searcher.calls()) == 1 })
	s.Apply(filters.Patch{Query: strPtr("second")})
	waitFor(t, func() bool { return len(searcher.calls()) == 2 })

	// The stale first completion must not clear the searching flag
	// owned by the still-pending second dispatch.
	close(firstHold)
	time.Sleep(20 * time.Millisecond)
	if !s.IsSearching() {
		t.Fatal("stale completion cleared isSearching")
	}

	close(secondHold)
	waitFor(t, func() bool { return !s.IsSearching() })
}

func TestFailureKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", domain.ErrTimeout, "timeout"},
		{"unavailable", domain.ErrUnavailable, "unavailable"},
		{"malformed", domain.ErrMalformedResponse, "malformed"},
		{"http", domain.NewHTTPError(500, "boom"), "http"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := failureKind(tt.err); got != tt.want {
				t.Errorf("failureKind(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestResultsListenerNotified(t *testing.T) {
	searcher := &fakeSearcher{replies: []searchReply{{page: pageWithTotal(10)}}}
	s := New("s1", searcher, &fakeSuggester{})
	defer s.Close()

	got := make(chan Results, 1)
	s.OnResultsChanged(func(r Results) { got <- r })

	s.Apply(filters.Patch{Query: strPtr("orders")})

	select {
	case r := <-got:
		if !r.HasPage || r.Failed {
			t.Fatalf("notified results = %+v", r)
		}
	case <-testDeadline(t):
		t.Fatal("results listener never fired")
	}
}

func TestClearResetsStateAndRedispatches(t *testing.T) {
	searcher := &fakeSearcher{}
	s := New("s1", searcher, &fakeSuggester{})
	defer s.Close()

	s.Apply(filters.Patch{Query: strPtr("orders"), Tags: &[]string{"pii"}})
	state := s.Clear()

	if state.ActiveCount() != 0 || state.Query() != "" {
		t.Fatalf("clear left state %+v", state)
	}
	waitFor(t, func() bool { return len(searcher.calls()) == 2 })
}
