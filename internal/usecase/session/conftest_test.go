package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomsolo12/dct-search/internal/domain/search/request"
	"github.com/tomsolo12/dct-search/internal/domain/search/result"
	"github.com/tomsolo12/dct-search/internal/domain/suggest"
)

// fakeSearcher records every request and answers from a scripted list
// indexed by call order; the last entry repeats once the script runs
// out. Calls whose 1-based index appears in holds block until the
// matching channel is closed, which lets tests pin response ordering.
type fakeSearcher struct {
	mu       sync.Mutex
	requests []*request.Request
	replies  []searchReply
	holds    map[int]chan struct{}
}

type searchReply struct {
	page result.Page
	err  error
}

func (f *fakeSearcher) SearchTables(ctx context.Context, req *request.Request) (result.Page, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	idx := len(f.requests)
	hold := f.holds[idx]
	var reply searchReply
	if n := len(f.replies); n > 0 {
		if idx <= n {
			reply = f.replies[idx-1]
		} else {
			reply = f.replies[n-1]
		}
	}
	f.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return result.Page{}, ctx.Err()
		}
	}
	return reply.page, reply.err
}

func (f *fakeSearcher) calls() []*request.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*request.Request(nil), f.requests...)
}

// fakeSuggester answers every query with a fixed item list, or an
// error. Queries are recorded for assertion.
type fakeSuggester struct {
	mu      sync.Mutex
	queries []string
	items   []suggest.Item
	err     error
}

func (f *fakeSuggester) Suggestions(ctx context.Context, q string) ([]suggest.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeSuggester) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func pageWithTotal(total int) result.Page {
	return result.Page{Metrics: result.Metrics{TotalResults: total}}
}

func strPtr(s string) *string { return &s }

func testDeadline(t *testing.T) <-chan time.Time {
	t.Helper()
	return time.After(2 * time.Second)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
