package session

import (
	"errors"
	"testing"
	"time"

	"github.com/tomsolo12/dct-search/internal/domain/filters"
	"github.com/tomsolo12/dct-search/internal/domain/suggest"
)

const testDebounce = 15 * time.Millisecond

func newSuggestSession(t *testing.T, suggester *fakeSuggester) *Session {
	t.Helper()
	s := New("s1", &fakeSearcher{}, suggester, WithDebounce(testDebounce))
	t.Cleanup(s.Close)
	return s
}

func TestSuggestFiresAfterDebounce(t *testing.T) {
	suggester := &fakeSuggester{items: []suggest.Item{
		{Kind: suggest.KindTable, Value: "customers", Frequency: 12},
	}}
	s := newSuggestSession(t, suggester)

	s.Apply(filters.Patch{Query: strPtr("cus")})

	waitFor(t, func() bool { return len(s.Suggestions()) == 1 })
	if got := s.Suggestions()[0].Value; got != "customers" {
		t.Fatalf("suggestion = %q, want %q", got, "customers")
	}
	if calls := suggester.calls(); len(calls) != 1 || calls[0] != "cus" {
		t.Fatalf("suggester calls = %v, want [cus]", calls)
	}
}

func TestSuggestDebounceCoalescesKeystrokes(t *testing.T) {
	suggester := &fakeSuggester{items: []suggest.Item{{Kind: suggest.KindTable, Value: "customers"}}}
	s := newSuggestSession(t, suggester)

	// Keystrokes inside the window restart it; only the last fires.
	s.Apply(filters.Patch{Query: strPtr("cus")})
	time.Sleep(testDebounce / 3)
	s.Apply(filters.Patch{Query: strPtr("cust")})
	time.Sleep(testDebounce / 3)
	s.Apply(filters.Patch{Query: strPtr("custo")})

	waitFor(t, func() bool { return len(suggester.calls()) > 0 })
	time.Sleep(2 * testDebounce)

	calls := suggester.calls()
	if len(calls) != 1 || calls[0] != "custo" {
		t.Fatalf("suggester calls = %v, want [custo]", calls)
	}
}

func TestShortQuerySkipsFetchAndClears(t *testing.T) {
	suggester := &fakeSuggester{items: []suggest.Item{{Kind: suggest.KindTag, Value: "pii"}}}
	s := newSuggestSession(t, suggester)

	s.Apply(filters.Patch{Query: strPtr("pii")})
	waitFor(t, func() bool { return len(s.Suggestions()) == 1 })

	// Backspacing under the minimum clears immediately, no fetch.
	s.Apply(filters.Patch{Query: strPtr("pi")})
	if got := s.Suggestions(); len(got) != 0 {
		t.Fatalf("suggestions not cleared: %v", got)
	}

	time.Sleep(2 * testDebounce)
	if calls := suggester.calls(); len(calls) != 1 {
		t.Fatalf("short query triggered a fetch: %v", calls)
	}
}

func TestWhitespacePaddingDoesNotCountTowardLength(t *testing.T) {
	suggester := &fakeSuggester{}
	s := newSuggestSession(t, suggester)

	s.Apply(filters.Patch{Query: strPtr("  ab  ")})
	time.Sleep(2 * testDebounce)

	if calls := suggester.calls(); len(calls) != 0 {
		t.Fatalf("padded short query triggered a fetch: %v", calls)
	}
}

func TestSuggestErrorKeepsLastGoodList(t *testing.T) {
	suggester := &fakeSuggester{items: []suggest.Item{{Kind: suggest.KindField, Value: "customer_id"}}}
	s := newSuggestSession(t, suggester)

	s.Apply(filters.Patch{Query: strPtr("customer")})
	waitFor(t, func() bool { return len(s.Suggestions()) == 1 })

	suggester.mu.Lock()
	suggester.err = errors.New("backend down")
	suggester.mu.Unlock()

	s.Apply(filters.Patch{Query: strPtr("customer_i")})
	waitFor(t, func() bool { return len(suggester.calls()) == 2 })
	time.Sleep(testDebounce)

	if got := s.Suggestions(); len(got) != 1 || got[0].Value != "customer_id" {
		t.Fatalf("failed fetch dropped last good list: %v", got)
	}
}

func TestNonQueryPatchDoesNotTriggerSuggest(t *testing.T) {
	suggester := &fakeSuggester{}
	s := newSuggestSession(t, suggester)

	s.Apply(filters.Patch{Query: strPtr("orders")})
	waitFor(t, func() bool { return len(suggester.calls()) == 1 })

	// A facet-only patch leaves the query untouched and must not
	// re-fire suggestions.
	s.Apply(filters.Patch{Tags: &[]string{"finance"}})
	time.Sleep(2 * testDebounce)

	if calls := suggester.calls(); len(calls) != 1 {
		t.Fatalf("facet patch re-fired suggestions: %v", calls)
	}
}
