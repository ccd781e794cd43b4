package knowledge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agribot/internal/common/logger"
	"agribot/internal/models"
)

func newTestRetriever(t *testing.T, handler http.HandlerFunc) *Retriever {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return NewRetriever(client, DefaultIndex, DefaultLimit, logger.Nop())
}

func TestSearchReturnsSnippets(t *testing.T) {
	r := newTestRetriever(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Contains(t, req.URL.Path, DefaultIndex)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"hits": {
				"hits": [
					{"_score": 2.4, "_source": {"content": "Wheat needs 4-6 irrigations.", "source": "icar-handbook"}},
					{"_score": 1.1, "_source": {"content": "Sow wheat in November.", "source": "kvk-advisory"}},
					{"_score": 0.5, "_source": {"content": "", "source": "empty-doc"}}
				]
			}
		}`))
	})

	snippets := r.Search(context.Background(), "wheat irrigation", models.CategoryCrop)

	require.Len(t, snippets, 2, "empty-content hits dropped")
	assert.Equal(t, "Wheat needs 4-6 irrigations.", snippets[0].Content)
	assert.Equal(t, "icar-handbook", snippets[0].Source)
	assert.Equal(t, 2.4, snippets[0].Score)
}

func TestSearchFailureTolerant(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRetriever(t, tt.handler)

			snippets := r.Search(context.Background(), "wheat irrigation", models.CategoryCrop)

			assert.Empty(t, snippets)
		})
	}
}

func TestSearchNilClient(t *testing.T) {
	r := NewRetriever(nil, "", 0, logger.Nop())

	assert.Nil(t, r.Search(context.Background(), "anything", models.CategoryCrop))
	assert.Error(t, r.Ping(context.Background()))
}

func TestBuildQueryCategoryFilter(t *testing.T) {
	q := buildQuery("market price", models.CategoryFinancial, 3)

	boolQuery, ok := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	require.True(t, ok)
	filter := boolQuery["filter"].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "financial", filter["category"])
	assert.Equal(t, 3, q["size"])
}
