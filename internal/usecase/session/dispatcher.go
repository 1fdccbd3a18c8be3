package session

import (
	"errors"

	"go.uber.org/zap"

	"github.com/tomsolo12/dct-search/internal/domain"
	"github.com/tomsolo12/dct-search/internal/domain/search/request"
	"github.com/tomsolo12/dct-search/internal/metrics"
)

// Dispatch triggers, recorded in metrics and the canonical log line.
const (
	triggerFilters = "filters"
	triggerPage    = "page"
)

// dispatchLocked issues a search for the current state at the given
// offset. Each dispatch takes the next sequence number; completions
// carrying an older number are discarded, so the newest dispatch always
// wins regardless of response ordering. The caller must hold s.mu.
func (s *Session) dispatchLocked(trigger string, offset int) {
	s.searchSeq++
	seq := s.searchSeq
	s.searching = true

	req, err := request.New(s.state, s.pageSize, offset)
	if err != nil {
		// Offsets are produced internally from validated page numbers.
		s.searching = false
		s.logger.Error("search request rejected", zap.Error(err))
		return
	}

	metrics.SearchDispatchesTotal.WithLabelValues(trigger).Inc()
	go s.runSearch(seq, trigger, &req)
}

func (s *Session) runSearch(seq uint64, trigger string, req *request.Request) {
	page, err := s.searcher.SearchTables(s.ctx, req)

	s.mu.Lock()
	if s.closed || seq != s.searchSeq {
		s.mu.Unlock()
		metrics.SearchSupersededTotal.Inc()
		return
	}
	s.searching = false

	if err != nil {
		// The prior page stays rendered; only the failure flag flips.
		s.failed = true
		metrics.SearchFailuresTotal.WithLabelValues(failureKind(err)).Inc()
		notify := s.notifyResultsLocked()
		s.mu.Unlock()
		s.logger.Warn("search dispatch failed",
			zap.String("session_id", s.id),
			zap.String("trigger", trigger),
			zap.Error(err))
		notify()
		return
	}

	s.failed = false
	s.page = page
	s.hasPage = true
	notify := s.notifyResultsLocked()
	s.mu.Unlock()
	notify()
}

func failureKind(err error) string {
	var httpErr *domain.HTTPError
	switch {
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed"
	case errors.As(err, &httpErr):
		return "http"
	default:
		return "other"
	}
}
