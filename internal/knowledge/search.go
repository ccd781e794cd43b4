// Package knowledge retrieves supporting passages for a query from the
// Elasticsearch knowledge base. Retrieval is strictly best-effort: any
// failure yields zero snippets and the pipeline carries on.
package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"agribot/internal/common/logger"
	"agribot/internal/models"
)

const (
	// DefaultIndex holds the curated agricultural knowledge documents.
	DefaultIndex = "agri-knowledge"

	// DefaultLimit bounds snippets per query; more than a handful only
	// dilutes the agent prompts.
	DefaultLimit = 3
)

type Retriever struct {
	client *elasticsearch.Client
	index  string
	limit  int
	logger logger.Logger
}

func NewRetriever(client *elasticsearch.Client, index string, limit int, log logger.Logger) *Retriever {
	if index == "" {
		index = DefaultIndex
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Retriever{
		client: client,
		index:  index,
		limit:  limit,
		logger: log.With(map[string]interface{}{"component": "knowledge"}),
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64 `json:"_score"`
			Source struct {
				Content string `json:"content"`
				Source  string `json:"source"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a match query over the knowledge index, optionally filtered by
// category. Errors are logged and swallowed: no snippets is a valid outcome.
func (r *Retriever) Search(ctx context.Context, text string, category models.Category) []models.KnowledgeSnippet {
	if r.client == nil || text == "" {
		return nil
	}

	body, err := json.Marshal(buildQuery(text, category, r.limit))
	if err != nil {
		return nil
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		r.logger.Warn("knowledge search failed", map[string]interface{}{
			"category": string(category),
			"error":    err.Error(),
		})
		return nil
	}
	defer res.Body.Close()

	if res.IsError() {
		r.logger.Warn("knowledge search error response", map[string]interface{}{
			"category": string(category),
			"status":   res.Status(),
		})
		return nil
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		r.logger.Warn("knowledge response decode failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	snippets := make([]models.KnowledgeSnippet, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		if hit.Source.Content == "" {
			continue
		}
		snippets = append(snippets, models.KnowledgeSnippet{
			Content: hit.Source.Content,
			Source:  hit.Source.Source,
			Score:   hit.Score,
		})
	}
	return snippets
}

func buildQuery(text string, category models.Category, limit int) map[string]interface{} {
	match := map[string]interface{}{
		"match": map[string]interface{}{
			"content": text,
		},
	}

	var query map[string]interface{}
	if category != "" {
		query = map[string]interface{}{
			"bool": map[string]interface{}{
				"must": match,
				"filter": map[string]interface{}{
					"term": map[string]interface{}{
						"category": string(category),
					},
				},
			},
		}
	} else {
		query = match
	}

	return map[string]interface{}{
		"size":  limit,
		"query": query,
	}
}

// Ping reports whether the knowledge base answers at all.
func (r *Retriever) Ping(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("knowledge base not configured")
	}
	res, err := r.client.Ping(r.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("knowledge base ping: %s", res.Status())
	}
	return nil
}
