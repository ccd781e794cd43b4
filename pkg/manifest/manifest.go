package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

const manifestSchema = `{
	"type": "object",
	"required": ["version", "agents"],
	"properties": {
		"version": {"type": "string"},
		"lastUpdated": {"type": "string"},
		"agents": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["category", "description", "keywords"],
				"properties": {
					"category": {"type": "string", "enum": ["weather", "crop", "financial", "policy"]},
					"displayName": {"type": "string"},
					"description": {"type": "string", "minLength": 1},
					"keywords": {"type": "array", "minItems": 1, "items": {"type": "string"}},
					"suggestions": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`

// Load reads and validates the agent manifest at path.
func Load(path string) (*AgentManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse validates raw manifest JSON against the schema and decodes it.
func Parse(data []byte) (*AgentManifest, error) {
	schemaLoader := gojsonschema.NewStringLoader(manifestSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("manifest validation: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("invalid manifest: %v", result.Errors())
	}

	var m AgentManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, a := range m.Agents {
		if seen[a.Category] {
			return nil, fmt.Errorf("duplicate manifest entry for category %q", a.Category)
		}
		seen[a.Category] = true
	}
	return &m, nil
}

// Entry returns the manifest entry for category, or nil.
func (m *AgentManifest) Entry(category string) *AgentEntry {
	for i := range m.Agents {
		if m.Agents[i].Category == category {
			return &m.Agents[i]
		}
	}
	return nil
}

// Default returns the built-in manifest used when no file is configured. The
// keyword tables mix English and Hindi terms because farmers phrase queries
// in both, often inside one sentence.
func Default() *AgentManifest {
	return &AgentManifest{
		Version: "1.0.0",
		Agents: []AgentEntry{
			{
				Category:    "weather",
				DisplayName: "Weather Advisor",
				Description: "weather forecast rain temperature climate conditions",
				Keywords: []string{
					"weather", "rain", "temperature", "humidity", "climate",
					"monsoon", "drought", "frost", "forecast",
					"मौसम", "बारिश", "तापमान",
				},
				Suggestions: []string{
					"Would you like a 7-day forecast for your district?",
					"Should I check for weather alerts in your area?",
				},
			},
			{
				Category:    "crop",
				DisplayName: "Crop Advisor",
				Description: "agriculture farming crops seeds planting harvesting",
				Keywords: []string{
					"crop", "seed", "variety", "planting", "harvest", "pest",
					"disease", "fertilizer", "sowing", "irrigation",
					"फसल", "बीज", "खाद",
				},
				Suggestions: []string{
					"Do you want variety recommendations for your soil type?",
					"Should I suggest a planting calendar for this season?",
				},
			},
			{
				Category:    "financial",
				DisplayName: "Financial Advisor",
				Description: "money loan credit insurance subsidy market prices",
				Keywords: []string{
					"loan", "credit", "insurance", "subsidy", "price", "market",
					"cost", "profit",
					"ऋण", "बीमा", "सब्सिडी", "कीमत",
				},
				Suggestions: []string{
					"Would you like current mandi prices for your crop?",
					"Should I explain crop insurance options?",
				},
			},
			{
				Category:    "policy",
				DisplayName: "Policy Advisor",
				Description: "government schemes policies programs registration",
				Keywords: []string{
					"scheme", "policy", "government", "yojana", "pm-kisan",
					"registration", "application",
					"योजना", "सरकार", "आवेदन",
				},
				Suggestions: []string{
					"Do you want the eligibility rules for PM-KISAN?",
					"Should I list schemes available in your state?",
				},
			},
		},
	}
}
