package manifest

// AgentManifest describes the routable agent categories: the curated keyword
// tables used by the classifier's first tier, the canonical descriptions
// embedded for the semantic fallback, and the static follow-up suggestions.
type AgentManifest struct {
	Version     string       `json:"version"`
	LastUpdated string       `json:"lastUpdated"`
	Agents      []AgentEntry `json:"agents"`
}

type AgentEntry struct {
	Category    string   `json:"category"`
	DisplayName string   `json:"displayName"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Suggestions []string `json:"suggestions,omitempty"`
}
