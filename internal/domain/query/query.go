package query

// Result is the outcome of an ad-hoc SQL execution against one data
// source. Rows carry whatever scalar types the source produced.
type Result struct {
	Columns    []string
	Rows       [][]any
	RowCount   int
	DurationMS int64
}
