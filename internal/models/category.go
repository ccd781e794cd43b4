package models

// Category identifies a domain agent.
type Category string

const (
	CategoryWeather   Category = "weather"
	CategoryCrop      Category = "crop"
	CategoryFinancial Category = "financial"
	CategoryPolicy    Category = "policy"
)

// CategoryPriority is the fixed tie-break order used by the classifier and
// every deterministic fallback. Weather outranks crop because weather answers
// are the most time-critical for farming decisions.
var CategoryPriority = []Category{
	CategoryWeather,
	CategoryCrop,
	CategoryFinancial,
	CategoryPolicy,
}

// DefaultCategory is the agent of last resort when nothing scores above zero.
const DefaultCategory = CategoryCrop

// PriorityRank returns the position of c in the fixed priority order, or
// len(CategoryPriority) for unknown categories so they sort last.
func PriorityRank(c Category) int {
	for i, p := range CategoryPriority {
		if p == c {
			return i
		}
	}
	return len(CategoryPriority)
}

// ValidCategory reports whether c is one of the known agent categories.
func ValidCategory(c Category) bool {
	return PriorityRank(c) < len(CategoryPriority)
}
