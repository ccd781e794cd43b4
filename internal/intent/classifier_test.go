package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agribot/internal/common/logger"
	"agribot/internal/models"
	"agribot/pkg/manifest"
)

// mapEmbedder returns fixed vectors per exact text and errors on anything
// unknown.
type mapEmbedder struct {
	vectors map[string][]float32
}

func (m *mapEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return nil, errors.New("no vector for text")
}

func newKeywordClassifier() *Classifier {
	return NewClassifier(manifest.Default(), nil, logger.Nop())
}

func TestClassifyKeywordTier(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantRanked []models.Category
	}{
		{
			name:       "single weather hit",
			query:      "will it rain tomorrow",
			wantRanked: []models.Category{models.CategoryWeather},
		},
		{
			name:       "hindi keyword",
			query:      "कल बारिश होगी क्या",
			wantRanked: []models.Category{models.CategoryWeather},
		},
		{
			name:       "two categories ranked by score",
			query:      "crop seed variety for this market price",
			wantRanked: []models.Category{models.CategoryCrop, models.CategoryFinancial},
		},
		{
			name:       "tie broken by priority order",
			query:      "rain and loan",
			wantRanked: []models.Category{models.CategoryWeather, models.CategoryFinancial},
		},
	}

	c := newKeywordClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(context.Background(), tt.query, nil)

			require.Len(t, result.Ranked, len(tt.wantRanked))
			for i, want := range tt.wantRanked {
				assert.Equal(t, want, result.Ranked[i].Category, "rank %d", i)
			}
			assert.False(t, result.Ambiguous)
		})
	}
}

func TestClassifySemanticFallback(t *testing.T) {
	m := manifest.Default()
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"my field looks strange lately": {0, 1, 0},
	}}
	// Crop description aligns with the query vector; the others do not.
	for _, entry := range m.Agents {
		if entry.Category == "crop" {
			embedder.vectors[entry.Description] = []float32{0, 1, 0}
		} else {
			embedder.vectors[entry.Description] = []float32{1, 0, 0}
		}
	}
	c := NewClassifier(m, embedder, logger.Nop())

	result := c.Classify(context.Background(), "my field looks strange lately", nil)

	require.Len(t, result.Ranked, 1)
	assert.Equal(t, models.CategoryCrop, result.Ranked[0].Category)
	assert.False(t, result.Ambiguous)
}

func TestClassifySemanticTieKeepsPriorityOrder(t *testing.T) {
	m := manifest.Default()
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"something about my farm": {1, 0, 0},
	}}
	// All descriptions score identically; weather wins as first in priority.
	for _, entry := range m.Agents {
		embedder.vectors[entry.Description] = []float32{1, 0, 0}
	}
	c := NewClassifier(m, embedder, logger.Nop())

	result := c.Classify(context.Background(), "something about my farm", nil)

	require.Len(t, result.Ranked, 1)
	assert.Equal(t, models.CategoryWeather, result.Ranked[0].Category)
}

func TestClassifySemanticNegativeSimilaritiesStillResolve(t *testing.T) {
	m := manifest.Default()
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"nothing matches anything": {2, 0, 0},
	}}
	// Every description points away from the query; the least-bad match must
	// still win instead of falling through to the default category.
	for _, entry := range m.Agents {
		embedder.vectors[entry.Description] = []float32{-1, 0, 0}
	}
	c := NewClassifier(m, embedder, logger.Nop())

	result := c.Classify(context.Background(), "nothing matches anything", nil)

	require.Len(t, result.Ranked, 1)
	assert.Equal(t, models.CategoryWeather, result.Ranked[0].Category)
	assert.False(t, result.Ambiguous)
}

func TestClassifyFollowUpInheritsSessionTopic(t *testing.T) {
	c := newKeywordClassifier()
	history := &models.SessionContext{
		SessionID: "s-1",
		Exchanges: []models.Exchange{
			{Query: "will it rain in pune", Answer: "Rain expected."},
		},
	}

	result := c.Classify(context.Background(), "and what about tomorrow", history)

	require.Len(t, result.Ranked, 1)
	assert.Equal(t, models.CategoryWeather, result.Ranked[0].Category)
	assert.False(t, result.Ambiguous)
}

func TestClassifyQueryKeywordsOutrankSessionTopic(t *testing.T) {
	c := newKeywordClassifier()
	history := &models.SessionContext{
		SessionID: "s-1",
		Exchanges: []models.Exchange{
			{Query: "will it rain in pune", Answer: "Rain expected."},
		},
	}

	result := c.Classify(context.Background(), "kcc loan interest rate", history)

	require.NotEmpty(t, result.Ranked)
	assert.Equal(t, models.CategoryFinancial, result.Ranked[0].Category)
}

func TestClassifyDefaultsWhenEverythingFails(t *testing.T) {
	embedder := &mapEmbedder{vectors: map[string][]float32{}}
	c := NewClassifier(manifest.Default(), embedder, logger.Nop())

	result := c.Classify(context.Background(), "completely unrelated text", nil)

	require.Len(t, result.Ranked, 1)
	assert.Equal(t, models.DefaultCategory, result.Ranked[0].Category)
	assert.True(t, result.Ambiguous)
}

func TestClassifyOne(t *testing.T) {
	c := newKeywordClassifier()

	cat, ambiguous := c.ClassifyOne(context.Background(), "mandi price of wheat", nil)

	assert.Equal(t, models.CategoryFinancial, cat)
	assert.False(t, ambiguous)
}

func TestClassifyDeterministic(t *testing.T) {
	c := newKeywordClassifier()

	first := c.Classify(context.Background(), "rain and loan and scheme", nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(context.Background(), "rain and loan and scheme", nil))
	}
}
