package session

import "time"

// Pagination over the current result set. Page numbers are 1-based and
// the page size is fixed per session.

// CurrentPage returns the 1-based page number of the most recent
// dispatch.
func (s *Session) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// TotalPages returns the page count for the current result metrics, or
// zero before the first page has landed.
func (s *Session) TotalPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPagesLocked()
}

func (s *Session) totalPagesLocked() int {
	if !s.hasPage {
		return 0
	}
	return s.page.TotalPages(s.pageSize)
}

// GoToPage dispatches a search for the requested page. Requests outside
// [1, TotalPages] are ignored and reported false. The filter state is
// untouched.
func (s *Session) GoToPage(n int) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	total := s.totalPagesLocked()
	if n < 1 || n > total {
		s.mu.Unlock()
		return false
	}
	s.currentPage = n
	s.lastActive = time.Now()
	s.dispatchLocked(triggerPage, (n-1)*s.pageSize)
	s.mu.Unlock()
	return true
}
