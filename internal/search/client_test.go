// internal/search/client_test.go
package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-orchestrator/internal/common/config"
	"search-orchestrator/internal/common/logger"
	"search-orchestrator/internal/retrieval"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.SearchConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    2 * time.Second,
		MaxResults: 20,
	}, logger.NewTestLogger(t))
	return client, server
}

func TestClient_Search(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "electric cars", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("count"))
		assert.Equal(t, "us", r.URL.Query().Get("country"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"web": [
				{"url": "https://a.example.com", "title": "A", "description": "desc a", "rank": 1},
				{"url": "https://b.example.com", "title": "B", "snippet": "snip b", "position": 2},
				{"url": "", "title": "dropped"}
			],
			"images": [{"url": "https://img.example.com/p.png", "title": "I"}],
			"news": []
		}`))
	})

	results, err := client.Search(context.Background(), "electric cars", retrieval.SearchFilters{
		Count:   5,
		Country: "us",
	})

	require.NoError(t, err)
	require.Len(t, results.Web, 2)

	assert.Equal(t, "https://a.example.com", results.Web[0].URL)
	assert.Equal(t, "desc a", results.Web[0].Description)
	assert.Equal(t, 1, results.Web[0].Rank)

	// Snippet backfills a missing description, position backfills rank.
	assert.Equal(t, "snip b", results.Web[1].Description)
	assert.Equal(t, 2, results.Web[1].Rank)

	// An item with no explicit rank or position falls back to list order.
	require.Len(t, results.Images, 1)
	assert.Equal(t, 1, results.Images[0].Rank)
	assert.Empty(t, results.News)
}

func TestClient_Search_DefaultCount(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("count"))
		w.Write([]byte(`{"web": []}`))
	})

	_, err := client.Search(context.Background(), "q", retrieval.SearchFilters{})
	assert.NoError(t, err)
}

func TestClient_Search_ServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Search(context.Background(), "q", retrieval.SearchFilters{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_Search_Timeout(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"web": []}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Search(ctx, "q", retrieval.SearchFilters{})
	assert.ErrorIs(t, err, ErrSearchTimeout)
}

func TestClient_Search_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := client.Search(context.Background(), "q", retrieval.SearchFilters{})
	assert.Error(t, err)
}
