package filters

import (
	"slices"
	"strings"
	"time"
)

// Bounds for the numeric range filters.
const (
	QualityScoreMin = 0
	QualityScoreMax = 100
	RowCountMin     = 0
	RowCountMax     = 1_000_000
)

// IntRange is an inclusive [Low, High] integer range.
type IntRange struct {
	Low  int
	High int
}

// DateRange filters on a named timestamp attribute.
// Field identifies which attribute the range applies to (e.g. "last_profiled").
type DateRange struct {
	Start time.Time
	End   time.Time
	Field string
}

// IsZero reports whether the range carries no constraint.
func (d DateRange) IsZero() bool {
	return d.Start.IsZero() && d.End.IsZero()
}

// State is an immutable snapshot of all active search constraints.
// Every field is either absent (zero/nil) or a well-formed, non-empty
// constraint. Apply and Clear return new snapshots; callers may hold
// references to prior states safely.
type State struct {
	query            string
	sourceIDs        []int
	schemas          []string
	tags             []string
	hasBusinessTerms bool
	hasDescription   bool
	qualityScore     *IntRange
	rowCount         *IntRange
	dateRange        *DateRange
}

// Patch is a partial filter update. Nil fields are unchanged.
// Set-valued fields reduced to empty, false booleans, and zero date
// ranges normalize back to absent. Numeric ranges are clamped to their
// bounds and kept even when they span the full range.
type Patch struct {
	Query            *string
	SourceIDs        *[]int
	Schemas          *[]string
	Tags             *[]string
	HasBusinessTerms *bool
	HasDescription   *bool
	QualityScore     *IntRange
	RowCount         *IntRange
	DateRange        *DateRange
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Query == nil && p.SourceIDs == nil && p.Schemas == nil &&
		p.Tags == nil && p.HasBusinessTerms == nil && p.HasDescription == nil &&
		p.QualityScore == nil && p.RowCount == nil && p.DateRange == nil
}

// Apply produces a new normalized snapshot with the patch folded in.
// The receiver is never mutated.
func (s State) Apply(p Patch) State {
	next := s
	if p.Query != nil {
		next.query = strings.TrimSpace(*p.Query)
	}
	if p.SourceIDs != nil {
		next.sourceIDs = normalizeInts(*p.SourceIDs)
	}
	if p.Schemas != nil {
		next.schemas = normalizeStrings(*p.Schemas)
	}
	if p.Tags != nil {
		next.tags = normalizeStrings(*p.Tags)
	}
	// A false checkbox is equivalent to no constraint, not an explicit
	// negative filter.
	if p.HasBusinessTerms != nil {
		next.hasBusinessTerms = *p.HasBusinessTerms
	}
	if p.HasDescription != nil {
		next.hasDescription = *p.HasDescription
	}
	if p.QualityScore != nil {
		next.qualityScore = clampRange(*p.QualityScore, QualityScoreMin, QualityScoreMax)
	}
	if p.RowCount != nil {
		next.rowCount = clampRange(*p.RowCount, RowCountMin, RowCountMax)
	}
	if p.DateRange != nil {
		if p.DateRange.IsZero() {
			next.dateRange = nil
		} else {
			dr := *p.DateRange
			next.dateRange = &dr
		}
	}
	return next
}

// Clear returns the empty state.
func (s State) Clear() State { return State{} }

// Query returns the free-text term ("" when absent).
func (s State) Query() string { return s.query }

// SourceIDs returns the data-source scoping set (nil when absent).
func (s State) SourceIDs() []int { return s.sourceIDs }

// Schemas returns the schema name set (nil when absent).
func (s State) Schemas() []string { return s.schemas }

// Tags returns the tag set (nil when absent).
func (s State) Tags() []string { return s.tags }

// HasBusinessTerms reports whether the business-terms constraint is active.
func (s State) HasBusinessTerms() bool { return s.hasBusinessTerms }

// HasDescription reports whether the description constraint is active.
func (s State) HasDescription() bool { return s.hasDescription }

// QualityScore returns the quality score range (nil when absent).
func (s State) QualityScore() *IntRange { return s.qualityScore }

// RowCount returns the row count range (nil when absent).
func (s State) RowCount() *IntRange { return s.rowCount }

// DateRange returns the date range constraint (nil when absent).
func (s State) DateRange() *DateRange { return s.dateRange }

// ActiveCount returns how many constraints are active. Ranges spanning
// their full bounds are transmitted but not counted as active.
func (s State) ActiveCount() int {
	n := 0
	if s.query != "" {
		n++
	}
	if len(s.sourceIDs) > 0 {
		n++
	}
	if len(s.schemas) > 0 {
		n++
	}
	if len(s.tags) > 0 {
		n++
	}
	if s.hasBusinessTerms {
		n++
	}
	if s.hasDescription {
		n++
	}
	if s.qualityScore != nil && (s.qualityScore.Low > QualityScoreMin || s.qualityScore.High < QualityScoreMax) {
		n++
	}
	if s.rowCount != nil && (s.rowCount.Low > RowCountMin || s.rowCount.High < RowCountMax) {
		n++
	}
	if s.dateRange != nil {
		n++
	}
	return n
}

// Equal reports whether two snapshots carry identical constraints.
func (s State) Equal(other State) bool {
	return s.query == other.query && s.equalExceptQuery(other)
}

// QueryChangedOnly reports whether the only difference from prev is the
// free-text term. The session uses this to route a change to the
// suggestion engine without re-reading the rest of the state.
func (s State) QueryChangedOnly(prev State) bool {
	return s.query != prev.query && s.equalExceptQuery(prev)
}

func (s State) equalExceptQuery(other State) bool {
	if !slices.Equal(s.sourceIDs, other.sourceIDs) ||
		!slices.Equal(s.schemas, other.schemas) ||
		!slices.Equal(s.tags, other.tags) {
		return false
	}
	if s.hasBusinessTerms != other.hasBusinessTerms || s.hasDescription != other.hasDescription {
		return false
	}
	if !equalRange(s.qualityScore, other.qualityScore) || !equalRange(s.rowCount, other.rowCount) {
		return false
	}
	return equalDateRange(s.dateRange, other.dateRange)
}

func equalRange(a, b *IntRange) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalDateRange(a, b *DateRange) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Field == b.Field && a.Start.Equal(b.Start) && a.End.Equal(b.End)
}

// normalizeInts sorts, dedupes, and collapses empty to nil.
func normalizeInts(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	out = slices.Compact(out)
	return out
}

// normalizeStrings trims, drops empties, sorts, dedupes, collapses empty to nil.
func normalizeStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// clampRange folds the range into [min, max] keeping low <= high.
func clampRange(r IntRange, min, max int) *IntRange {
	if r.Low > r.High {
		r.Low, r.High = r.High, r.Low
	}
	if r.Low < min {
		r.Low = min
	}
	if r.High > max {
		r.High = max
	}
	return &r
}
