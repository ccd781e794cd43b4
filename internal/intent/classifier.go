// Package intent maps a normalized query to ranked agent categories.
package intent

import (
	"context"
	"math"
	"sort"
	"strings"

	"agribot/internal/common/logger"
	"agribot/internal/models"
	"agribot/internal/provider"
	"agribot/pkg/manifest"
)

// similarityEpsilon bounds the band inside which two embedding similarities
// are considered tied and the fixed priority order decides.
const similarityEpsilon = 1e-6

// Ranked is one classified category with its keyword score. Semantic-fallback
// results carry score 0; their ordering is the ranking.
type Ranked struct {
	Category models.Category
	Score    int
}

// Result is the classification outcome. Ambiguous marks the zero-score path
// where the default category was used; the pipeline records it but proceeds.
type Result struct {
	Ranked    []Ranked
	Ambiguous bool
}

type Classifier struct {
	manifest *manifest.AgentManifest
	embedder provider.Embedder
	logger   logger.Logger
}

// NewClassifier builds a classifier over the manifest's keyword tables.
// The embedder may be nil; the semantic tier is then skipped entirely.
func NewClassifier(m *manifest.AgentManifest, embedder provider.Embedder, log logger.Logger) *Classifier {
	return &Classifier{
		manifest: m,
		embedder: embedder,
		logger:   log.With(map[string]interface{}{"component": "intent"}),
	}
}

// Classify returns every category with a positive keyword score, ranked by
// score descending with priority-order tie-break. With no keyword hits on the
// query itself, recent session exchanges are scored so elliptical follow-ups
// ("what about tomorrow?") inherit the conversation's topic; only then does
// the semantic tier run, and the default category backstops everything. The
// result is never empty. history may be nil.
func (c *Classifier) Classify(ctx context.Context, normalizedText string, history *models.SessionContext) Result {
	ranked := c.keywordTier(normalizedText)
	if len(ranked) > 0 {
		return Result{Ranked: ranked}
	}

	if cat, ok := c.historyTier(history); ok {
		c.logger.Info("category carried over from session history", map[string]interface{}{
			"category": string(cat),
		})
		return Result{Ranked: []Ranked{{Category: cat}}}
	}

	if cat, ok := c.semanticTier(ctx, normalizedText); ok {
		return Result{Ranked: []Ranked{{Category: cat}}}
	}

	c.logger.Warn("classification ambiguous, default category used", map[string]interface{}{
		"query": normalizedText,
	})
	return Result{Ranked: []Ranked{{Category: models.DefaultCategory}}, Ambiguous: true}
}

// ClassifyOne returns the single best category for single-agent routing.
func (c *Classifier) ClassifyOne(ctx context.Context, normalizedText string, history *models.SessionContext) (models.Category, bool) {
	result := c.Classify(ctx, normalizedText, history)
	return result.Ranked[0].Category, result.Ambiguous
}

// historyTier scores the most recent exchanges when the query itself matched
// nothing. The newest exchange with a keyword hit decides.
func (c *Classifier) historyTier(history *models.SessionContext) (models.Category, bool) {
	if history == nil {
		return "", false
	}
	for _, ex := range history.Exchanges {
		if ranked := c.keywordTier(ex.Query); len(ranked) > 0 {
			return ranked[0].Category, true
		}
	}
	return "", false
}

func (c *Classifier) keywordTier(text string) []Ranked {
	lower := strings.ToLower(text)

	var ranked []Ranked
	for _, entry := range c.manifest.Agents {
		score := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, Ranked{Category: models.Category(entry.Category), Score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return models.PriorityRank(ranked[i].Category) < models.PriorityRank(ranked[j].Category)
	})
	return ranked
}

// semanticTier embeds the query and each category description, returning the
// highest-similarity category. Ties within the epsilon band resolve to the
// earlier category in priority order.
func (c *Classifier) semanticTier(ctx context.Context, text string) (models.Category, bool) {
	if c.embedder == nil {
		return "", false
	}

	queryVec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		c.logger.Warn("query embedding failed", map[string]interface{}{"error": err.Error()})
		return "", false
	}

	best := models.DefaultCategory
	bestScore := 0.0
	found := false

	// Walk in priority order so equal scores keep the earlier category.
	for _, cat := range models.CategoryPriority {
		entry := c.manifest.Entry(string(cat))
		if entry == nil {
			continue
		}

		descVec, err := c.embedder.Embed(ctx, entry.Description)
		if err != nil {
			c.logger.Warn("description embedding failed", map[string]interface{}{
				"category": string(cat),
				"error":    err.Error(),
			})
			continue
		}

		score := cosine(queryVec, descVec)
		if !found || score > bestScore+similarityEpsilon {
			found = true
			bestScore = score
			best = cat
		}
	}

	if !found {
		return "", false
	}
	return best, true
}

// cosine is the normalized similarity of two embedding vectors, in [-1, 1].
// A zero vector has no direction and scores 0 against everything.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / math.Sqrt(normA*normB)
}
