package chi

import (
	"time"

	"github.com/tomsolo12/dct-search/internal/domain/filters"
	domquery "github.com/tomsolo12/dct-search/internal/domain/query"
	"github.com/tomsolo12/dct-search/internal/domain/search/result"
	"github.com/tomsolo12/dct-search/internal/domain/suggest"
	"github.com/tomsolo12/dct-search/internal/usecase/session"
)

// Wire shapes for the explorer API. Field names match what the browser
// client sends and renders.

type intRangeBody struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

type dateRangeBody struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Field string    `json:"field"`
}

// patchRequest carries a partial filter update. Absent fields leave the
// corresponding filter untouched.
type patchRequest struct {
	Query            *string        `json:"query,omitempty"`
	SourceIDs        *[]int         `json:"sourceIds,omitempty"`
	Schemas          *[]string      `json:"schemas,omitempty"`
	Tags             *[]string      `json:"tags,omitempty"`
	HasBusinessTerms *bool          `json:"hasBusinessTerms,omitempty"`
	HasDescription   *bool          `json:"hasDescription,omitempty"`
	QualityScore     *intRangeBody  `json:"qualityScoreRange,omitempty"`
	RowCount         *intRangeBody  `json:"rowCountRange,omitempty"`
	DateRange        *dateRangeBody `json:"dateRange,omitempty"`
}

func (p patchRequest) toDomain() filters.Patch {
	patch := filters.Patch{
		Query:            p.Query,
		SourceIDs:        p.SourceIDs,
		Schemas:          p.Schemas,
		Tags:             p.Tags,
		HasBusinessTerms: p.HasBusinessTerms,
		HasDescription:   p.HasDescription,
	}
	if p.QualityScore != nil {
		patch.QualityScore = &filters.IntRange{Low: p.QualityScore.Low, High: p.QualityScore.High}
	}
	if p.RowCount != nil {
		patch.RowCount = &filters.IntRange{Low: p.RowCount.Low, High: p.RowCount.High}
	}
	if p.DateRange != nil {
		patch.DateRange = &filters.DateRange{
			Start: p.DateRange.Start,
			End:   p.DateRange.End,
			Field: p.DateRange.Field,
		}
	}
	return patch
}

type filtersBody struct {
	Query            string         `json:"query"`
	SourceIDs        []int          `json:"sourceIds,omitempty"`
	Schemas          []string       `json:"schemas,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
	HasBusinessTerms bool           `json:"hasBusinessTerms,omitempty"`
	HasDescription   bool           `json:"hasDescription,omitempty"`
	QualityScore     *intRangeBody  `json:"qualityScoreRange,omitempty"`
	RowCount         *intRangeBody  `json:"rowCountRange,omitempty"`
	DateRange        *dateRangeBody `json:"dateRange,omitempty"`
	ActiveCount      int            `json:"activeFilterCount"`
}

func filtersToBody(f filters.State) filtersBody {
	body := filtersBody{
		Query:            f.Query(),
		SourceIDs:        f.SourceIDs(),
		Schemas:          f.Schemas(),
		Tags:             f.Tags(),
		HasBusinessTerms: f.HasBusinessTerms(),
		HasDescription:   f.HasDescription(),
		ActiveCount:      f.ActiveCount(),
	}
	if r := f.QualityScore(); r != nil {
		body.QualityScore = &intRangeBody{Low: r.Low, High: r.High}
	}
	if r := f.RowCount(); r != nil {
		body.RowCount = &intRangeBody{Low: r.Low, High: r.High}
	}
	if d := f.DateRange(); d != nil {
		body.DateRange = &dateRangeBody{Start: d.Start, End: d.End, Field: d.Field}
	}
	return body
}

type tableRow struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Schema       string    `json:"schema"`
	SourceID     int       `json:"sourceId"`
	SourceName   string    `json:"sourceName"`
	Description  string    `json:"description,omitempty"`
	RowCount     int       `json:"rowCount"`
	QualityScore int       `json:"qualityScore"`
	Tags         []string  `json:"tags,omitempty"`
	LastProfiled time.Time `json:"lastProfiled"`
}

type resultsResponse struct {
	Results      []tableRow                `json:"results"`
	TotalResults int                       `json:"totalResults"`
	FacetCounts  map[string]map[string]int `json:"facetCounts,omitempty"`
	CurrentPage  int                       `json:"currentPage"`
	TotalPages   int                       `json:"totalPages"`
	IsSearching  bool                      `json:"isSearching"`
	Failed       bool                      `json:"failed"`
}

func resultsToResponse(res session.Results, currentPage, totalPages int, searching bool) resultsResponse {
	rows := make([]tableRow, len(res.Page.Results))
	for i, r := range res.Page.Results {
		rows[i] = tableRowFromSummary(r)
	}
	return resultsResponse{
		Results:      rows,
		TotalResults: res.Page.Metrics.TotalResults,
		FacetCounts:  res.Page.Metrics.FacetCounts,
		CurrentPage:  currentPage,
		TotalPages:   totalPages,
		IsSearching:  searching,
		Failed:       res.Failed,
	}
}

func tableRowFromSummary(r result.TableSummary) tableRow {
	return tableRow{
		ID:           r.ID,
		Name:         r.Name,
		Schema:       r.Schema,
		SourceID:     r.SourceID,
		SourceName:   r.SourceName,
		Description:  r.Description,
		RowCount:     r.RowCount,
		QualityScore: r.QualityScore,
		Tags:         r.Tags,
		LastProfiled: r.LastProfiled,
	}
}

type sessionResponse struct {
	SessionID string      `json:"sessionId"`
	Filters   filtersBody `json:"filters"`
}

type suggestionsResponse struct {
	Suggestions []suggest.Item `json:"suggestions"`
}

type refineRequest struct {
	Facet string `json:"facet"`
	Value string `json:"value"`
}

type pageRequest struct {
	Page int `json:"page"`
}

type queryRequest struct {
	SourceID int    `json:"sourceId"`
	SQL      string `json:"sql"`
}

type queryResponse struct {
	Columns    []string `json:"columns"`
	Rows       [][]any  `json:"rows"`
	RowCount   int      `json:"rowCount"`
	DurationMS int64    `json:"durationMs"`
}

func queryToResponse(res domquery.Result) queryResponse {
	return queryResponse{
		Columns:    res.Columns,
		Rows:       res.Rows,
		RowCount:   res.RowCount,
		DurationMS: res.DurationMS,
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
