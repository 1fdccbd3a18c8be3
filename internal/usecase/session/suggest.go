package session

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tomsolo12/dct-search/internal/domain/suggest"
	"github.com/tomsolo12/dct-search/internal/metrics"
)

// scheduleSuggestLocked restarts the debounce window for the given
// query text. Queries shorter than the minimum clear the suggestion
// list immediately and fire nothing. The caller must hold s.mu.
func (s *Session) scheduleSuggestLocked(query string) {
	trimmed := strings.TrimSpace(query)
	if len(trimmed) < suggest.MinQueryLength {
		s.clearSuggestLocked()
		return
	}

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.debounce, func() {
		s.fireSuggest(trimmed)
	})
}

// clearSuggestLocked drops pending and displayed suggestions. Bumping
// the sequence invalidates any fetch already on the wire.
func (s *Session) clearSuggestLocked() {
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
	s.suggestSeq++
	s.suggestions = nil
}

// fireSuggest runs after the debounce window closes. The fetch carries
// the sequence number taken at issue time; if another keystroke has
// bumped the sequence by the time the response lands, the response is
// dropped and the last good list stays.
func (s *Session) fireSuggest(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.suggestSeq++
	seq := s.suggestSeq
	s.mu.Unlock()

	items, err := s.suggester.Suggestions(s.ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.suggestSeq {
		metrics.SuggestionFetchesTotal.WithLabelValues("stale").Inc()
		return
	}
	if err != nil {
		// Keep the last good list on failure.
		metrics.SuggestionFetchesTotal.WithLabelValues("error").Inc()
		s.logger.Debug("suggestion fetch failed",
			zap.String("session_id", s.id),
			zap.Error(err))
		return
	}
	metrics.SuggestionFetchesTotal.WithLabelValues("ok").Inc()
	s.suggestions = items
}
