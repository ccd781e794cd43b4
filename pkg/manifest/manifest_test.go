package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validManifest = `{
	"version": "1.0.0",
	"lastUpdated": "2025-06-01",
	"agents": [
		{
			"category": "weather",
			"displayName": "Weather Advisor",
			"description": "weather forecast rain",
			"keywords": ["rain", "monsoon"],
			"suggestions": ["Would you like a forecast?"]
		},
		{
			"category": "crop",
			"description": "crops and seeds",
			"keywords": ["seed"]
		}
	]
}`

func TestParseValid(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", m.Version)
	require.Len(t, m.Agents, 2)
	assert.Equal(t, "Weather Advisor", m.Agents[0].DisplayName)
	assert.Equal(t, []string{"rain", "monsoon"}, m.Agents[0].Keywords)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"version": `},
		{"missing agents", `{"version": "1.0.0"}`},
		{"empty agents", `{"version": "1.0.0", "agents": []}`},
		{
			"unknown category",
			`{"version": "1.0.0", "agents": [{"category": "astrology", "description": "x", "keywords": ["k"]}]}`,
		},
		{
			"missing keywords",
			`{"version": "1.0.0", "agents": [{"category": "weather", "description": "x"}]}`,
		},
		{
			"empty keywords",
			`{"version": "1.0.0", "agents": [{"category": "weather", "description": "x", "keywords": []}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsDuplicateCategory(t *testing.T) {
	data := `{
		"version": "1.0.0",
		"agents": [
			{"category": "weather", "description": "a", "keywords": ["rain"]},
			{"category": "weather", "description": "b", "keywords": ["monsoon"]}
		]
	}`
	_, err := Parse([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate manifest entry")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(validManifest), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Agents, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestEntry(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	require.NoError(t, err)

	entry := m.Entry("weather")
	require.NotNil(t, entry)
	assert.Equal(t, "weather", entry.Category)

	assert.Nil(t, m.Entry("policy"))
}

func TestDefaultCoversEveryCategory(t *testing.T) {
	m := Default()

	require.Len(t, m.Agents, 4)
	for _, category := range []string{"weather", "crop", "financial", "policy"} {
		entry := m.Entry(category)
		require.NotNil(t, entry, category)
		assert.NotEmpty(t, entry.Keywords, category)
		assert.NotEmpty(t, entry.Suggestions, category)
	}

	// The default manifest must itself survive validation.
	data, err := os.ReadFile("../../configs/agent-manifest.json")
	if err == nil {
		_, err = Parse(data)
		assert.NoError(t, err)
	}
}
