package suggest

// MinQueryLength is the minimum trimmed query length that triggers a
// suggestion lookup. Shorter input clears suggestions without a request.
const MinQueryLength = 3

// DefaultLimit is the number of suggestions requested per lookup.
const DefaultLimit = 10

// Kind classifies a suggestion by the catalog entity it completes.
type Kind string

const (
	KindTable        Kind = "table"
	KindField        Kind = "field"
	KindTag          Kind = "tag"
	KindBusinessTerm Kind = "business_term"
)

// IsValid reports whether the kind is one the catalog produces.
func (k Kind) IsValid() bool {
	switch k {
	case KindTable, KindField, KindTag, KindBusinessTerm:
		return true
	}
	return false
}

// Item is a single lookahead suggestion. Produced only by the suggestion
// path; never mutated after parsing.
type Item struct {
	Kind      Kind   `json:"type"`
	Value     string `json:"value"`
	Category  string `json:"category"`
	Frequency int    `json:"frequency"`
}
