// Package search implements the search-provider collaborator over HTTP.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"search-orchestrator/internal/common/config"
	apperrors "search-orchestrator/internal/common/errors"
	httpclient "search-orchestrator/internal/common/http"
	"search-orchestrator/internal/common/logger"
	"search-orchestrator/internal/retrieval"
)

// ErrSearchTimeout marks a provider call that exceeded its deadline.
var ErrSearchTimeout = errors.New("SEARCH_TIMEOUT")

// Client calls the external search API. One call returns the web, image and
// news lists for a single query string.
type Client struct {
	config config.SearchConfig
	client *httpclient.Client
	logger logger.Logger
}

func NewClient(cfg config.SearchConfig, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		client: httpclient.NewClient(cfg.Timeout),
		logger: log.With(map[string]interface{}{"component": "search-client"}),
	}
}

type apiItem struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Snippet     string `json:"snippet"`
	Rank        int    `json:"rank"`
	Position    int    `json:"position"`
}

type apiResponse struct {
	Web    []apiItem `json:"web"`
	Images []apiItem `json:"images"`
	News   []apiItem `json:"news"`
}

// Search issues one provider call. Timeouts surface as ErrSearchTimeout so
// callers can distinguish them from other provider faults.
func (c *Client) Search(ctx context.Context, query string, filters retrieval.SearchFilters) (*retrieval.ProviderResults, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(query, filters), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("X-Subscription-Token", c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded ||
			strings.Contains(err.Error(), "timeout") ||
			strings.Contains(err.Error(), "deadline") ||
			strings.Contains(err.Error(), "Client.Timeout") {
			timeoutErr := apperrors.NewSearchTimeoutError(query)
			timeoutErr.Err = ErrSearchTimeout
			return nil, timeoutErr
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	results := &retrieval.ProviderResults{
		Web:    toProviderItems(body.Web),
		Images: toProviderItems(body.Images),
		News:   toProviderItems(body.News),
	}

	c.logger.Debug("search completed", map[string]interface{}{
		"query":      query,
		"webCount":   len(results.Web),
		"imageCount": len(results.Images),
		"newsCount":  len(results.News),
	})

	return results, nil
}

func (c *Client) buildURL(query string, filters retrieval.SearchFilters) string {
	baseURL, _ := url.Parse(c.config.BaseURL)
	params := url.Values{}
	params.Add("q", query)
	count := filters.Count
	if count <= 0 {
		count = c.config.MaxResults
	}
	params.Add("count", strconv.Itoa(count))
	if filters.Country != "" {
		params.Add("country", filters.Country)
	}
	if filters.SafeSearch != "" {
		params.Add("safesearch", filters.SafeSearch)
	}
	baseURL.RawQuery = params.Encode()
	return baseURL.String()
}

func toProviderItems(items []apiItem) []retrieval.ProviderItem {
	out := make([]retrieval.ProviderItem, 0, len(items))
	for i, item := range items {
		if item.URL == "" {
			continue
		}
		rank := item.Rank
		if rank < 1 {
			rank = item.Position
		}
		if rank < 1 {
			rank = i + 1
		}
		desc := item.Description
		if desc == "" {
			desc = item.Snippet
		}
		out = append(out, retrieval.ProviderItem{
			URL:         item.URL,
			Title:       item.Title,
			Description: desc,
			Rank:        rank,
		})
	}
	return out
}
