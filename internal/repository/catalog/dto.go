package catalog

import (
	"time"

	"github.com/tomsolo12/dct-search/internal/domain/query"
	"github.com/tomsolo12/dct-search/internal/domain/search/request"
	"github.com/tomsolo12/dct-search/internal/domain/search/result"
	"github.com/tomsolo12/dct-search/internal/domain/suggest"
)

// Wire shapes for the catalog backend API. Field names follow the
// backend contract, not Go conventions.

type intRangeBody struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

type dateRangeBody struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Field string    `json:"field"`
}

// searchBody is the POST /api/search/tables payload: the flattened
// FilterState plus pagination.
type searchBody struct {
	Query            string         `json:"query,omitempty"`
	SourceIDs        []int          `json:"sourceIds,omitempty"`
	Schemas          []string       `json:"schemas,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
	HasBusinessTerms bool           `json:"hasBusinessTerms,omitempty"`
	HasDescription   bool           `json:"hasDescription,omitempty"`
	QualityScore     *intRangeBody  `json:"qualityScoreRange,omitempty"`
	RowCount         *intRangeBody  `json:"rowCountRange,omitempty"`
	DateRange        *dateRangeBody `json:"dateRange,omitempty"`
	Limit            int            `json:"limit"`
	Offset           int            `json:"offset"`
}

func searchBodyFromRequest(req *request.Request) searchBody {
	f := req.Filters()
	body := searchBody{
		Query:            f.Query(),
		SourceIDs:        f.SourceIDs(),
		Schemas:          f.Schemas(),
		Tags:             f.Tags(),
		HasBusinessTerms: f.HasBusinessTerms(),
		HasDescription:   f.HasDescription(),
		Limit:            req.Limit(),
		Offset:           req.Offset(),
	}
	// Full-bound ranges are still transmitted; the backend treats them
	// the same as absent.
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
	Description  string    `json:"description"`
	RowCount     int       `json:"rowCount"`
	QualityScore int       `json:"qualityScore"`
	Tags         []string  `json:"tags"`
	LastProfiled time.Time `json:"lastProfiled"`
}

type metricsBody struct {
	TotalResults int                       `json:"totalResults"`
	FacetCounts  map[string]map[string]int `json:"facetCounts"`
}

type searchResponse struct {
	Results []tableRow  `json:"results"`
	Metrics metricsBody `json:"metrics"`
}

func pageFromResponse(resp searchResponse) result.Page {
	rows := make([]result.TableSummary, len(resp.Results))
	for i, r := range resp.Results {
		rows[i] = result.TableSummary{
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
	return result.Page{
		Results: rows,
		Metrics: result.Metrics{
			TotalResults: resp.Metrics.TotalResults,
			FacetCounts:  resp.Metrics.FacetCounts,
		},
	}
}

type suggestionsResponse struct {
	Suggestions []suggest.Item `json:"suggestions"`
}

// errorResponse is the backend's error envelope.
type errorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// queryBody is the POST /api/query/execute payload.
type queryBody struct {
	SourceID  int    `json:"sourceId"`
	SQL       string `json:"sql"`
	TimeoutMS int    `json:"timeoutMs,omitempty"`
}

type queryResultBody struct {
	Columns    []string `json:"columns"`
	Rows       [][]any  `json:"rows"`
	RowCount   int      `json:"rowCount"`
	DurationMS int64    `json:"durationMs"`
}

func (b queryResultBody) toDomain() query.Result {
	return query.Result{
		Columns:    b.Columns,
		Rows:       b.Rows,
		RowCount:   b.RowCount,
		DurationMS: b.DurationMS,
	}
}
