package result

import "time"

// TableSummary is the catalog metadata the explorer renders per hit.
type TableSummary struct {
	ID           int
	Name         string
	Schema       string
	SourceID     int
	SourceName   string
	Description  string
	RowCount     int
	QualityScore int
	Tags         []string
	LastProfiled time.Time
}

// Metrics carries result-set metadata used for pagination and facet rendering.
type Metrics struct {
	// TotalResults is the total number of matching tables across all pages.
	TotalResults int
	// FacetCounts maps facet name -> value -> match count.
	FacetCounts map[string]map[string]int
}

// Page is one page of search results. It is owned by the dispatcher for
// the duration of the current page and superseded wholesale on the next
// successful response.
type Page struct {
	Results []TableSummary
	Metrics Metrics
}

// TotalPages derives the page count for a given page size.
func (p Page) TotalPages(limit int) int {
	if limit <= 0 {
		return 0
	}
	return (p.Metrics.TotalResults + limit - 1) / limit
}
