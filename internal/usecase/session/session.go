package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tomsolo12/dct-search/internal/domain/filters"
	"github.com/tomsolo12/dct-search/internal/domain/search/result"
	"github.com/tomsolo12/dct-search/internal/domain/suggest"
)

// Defaults for search orchestration.
const (
	DefaultPageSize = 50
	DefaultDebounce = 300 * time.Millisecond
)

// Results is the renderable search outcome snapshot pushed to
// results-changed listeners: the current page, or the prior page plus a
// failure indicator when the latest dispatch failed.
type Results struct {
	Page    result.Page
	HasPage bool
	Failed  bool
}

// Session owns one search session: the canonical filter state, the
// in-flight dispatch bookkeeping, pagination, and suggestions. All
// state transitions are atomic under the session lock; network
// completions re-enter under the lock and are sequence-checked, so a
// slow early response can never clobber a faster later one.
type Session struct {
	id        string
	searcher  Searcher
	suggester Suggester
	logger    *zap.Logger

	pageSize int
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       filters.State
	page        result.Page
	hasPage     bool
	currentPage int
	searching   bool
	failed      bool
	closed      bool

	searchSeq  uint64
	suggestSeq uint64

	suggestions   []suggest.Item
	debounceTimer *time.Timer

	lastActive time.Time

	onFilters []func(filters.State)
	onResults []func(Results)
}

// Option configures a Session.
type Option func(*Session)

// WithPageSize overrides the fixed page size.
func WithPageSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithDebounce overrides the suggestion debounce window.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates a search session with an empty filter state.
func New(id string, searcher Searcher, suggester Suggester, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:          id,
		searcher:    searcher,
		suggester:   suggester,
		logger:      zap.NewNop(),
		pageSize:    DefaultPageSize,
		debounce:    DefaultDebounce,
		ctx:         ctx,
		cancel:      cancel,
		currentPage: 1,
		lastActive:  time.Now(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// OnFiltersChanged registers a listener for filter state snapshots.
// Listeners are invoked outside the session lock.
func (s *Session) OnFiltersChanged(fn func(filters.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFilters = append(s.onFilters, fn)
}

// OnResultsChanged registers a listener for result snapshots.
func (s *Session) OnResultsChanged(fn func(Results)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onResults = append(s.onResults, fn)
}

// Apply folds a partial filter update into the session state, then
// notifies the dispatcher and, when only the query text changed, the
// suggestion engine. Any filter change restarts pagination at page 1.
func (s *Session) Apply(patch filters.Patch) filters.State {
	s.mu.Lock()
	if s.closed {
		state := s.state
		s.mu.Unlock()
		return state
	}
	prev := s.state
	next := prev.Apply(patch)
	s.state = next
	s.lastActive = time.Now()

	if next.QueryChangedOnly(prev) {
		s.scheduleSuggestLocked(next.Query())
	}

	s.currentPage = 1
	s.dispatchLocked(triggerFilters, 0)

	listeners := slices.Clone(s.onFilters)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// Clear resets the session to the empty filter state and re-dispatches.
func (s *Session) Clear() filters.State {
	s.mu.Lock()
	if s.closed {
		state := s.state
		s.mu.Unlock()
		return state
	}
	s.state = filters.State{}
	s.lastActive = time.Now()
	s.clearSuggestLocked()

	s.currentPage = 1
	s.dispatchLocked(triggerFilters, 0)

	next := s.state
	listeners := slices.Clone(s.onFilters)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// Filters returns the current filter snapshot.
func (s *Session) Filters() filters.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Results returns the current renderable outcome.
func (s *Session) Results() Results {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Results{Page: s.page, HasPage: s.hasPage, Failed: s.failed}
}

// Suggestions returns the last good suggestion set.
func (s *Session) Suggestions() []suggest.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestions
}

// IsSearching reports whether the most recent dispatch is still pending.
func (s *Session) IsSearching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searching
}

// LastActive returns the time of the last user interaction.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close tears the session down: the debounce timer is released and
// in-flight requests are abandoned.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
	s.mu.Unlock()
	s.cancel()
}

// notifyResultsLocked snapshots listeners and the current outcome.
// The caller must hold s.mu; the returned closure is invoked after unlock.
func (s *Session) notifyResultsLocked() func() {
	listeners := slices.Clone(s.onResults)
	res := Results{Page: s.page, HasPage: s.hasPage, Failed: s.failed}
	return func() {
		for _, fn := range listeners {
			fn(res)
		}
	}
}
