package orchestrator

import "strings"

// knownDistricts is the lookup used when a request carries no explicit
// location. Lowercase, matched as substrings of the normalized query.
var knownDistricts = []string{
	"pune",
	"nashik",
	"nagpur",
	"aurangabad",
	"kolhapur",
	"ludhiana",
	"amritsar",
	"bathinda",
	"karnal",
	"hisar",
	"jaipur",
	"jodhpur",
	"lucknow",
	"kanpur",
	"varanasi",
	"meerut",
	"patna",
	"muzaffarpur",
	"indore",
	"bhopal",
	"hyderabad",
	"warangal",
	"guntur",
	"vijayawada",
	"coimbatore",
	"thanjavur",
	"mysuru",
	"belagavi",
}

// extractLocation returns the first known district mentioned in text, title
// cased, or empty when none is found.
func extractLocation(text string) string {
	lower := strings.ToLower(text)
	for _, district := range knownDistricts {
		if strings.Contains(lower, district) {
			return strings.ToUpper(district[:1]) + district[1:]
		}
	}
	return ""
}
