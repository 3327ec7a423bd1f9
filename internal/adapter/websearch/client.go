package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/lexfold/canondoc/internal/fetch"
)

// Hit is one result from the web-search index.
type Hit struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Snippet     string     `json:"snippet,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Rank        int        `json:"rank"`
}

// SearchClient is the narrow contract against the general web search index.
type SearchClient interface {
	Search(ctx context.Context, query string, max int) ([]Hit, error)
}

// HTTPSearchClient queries a search-index HTTP API.
type HTTPSearchClient struct {
	baseURL string
	fetcher *fetch.Fetcher
}

func NewHTTPSearchClient(baseURL string, fetcher *fetch.Fetcher) *HTTPSearchClient {
	return &HTTPSearchClient{baseURL: baseURL, fetcher: fetcher}
}

func (c *HTTPSearchClient) Search(ctx context.Context, query string, max int) ([]Hit, error) {
	q := url.Values{}
	q.Set("q", query)
	if max > 0 {
		q.Set("limit", strconv.Itoa(max))
	}

	res, err := c.fetcher.Fetch(ctx, c.baseURL+"/search?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("web search failed: %w", err)
	}

	var payload struct {
		Hits []Hit `json:"hits"`
	}
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}
	return payload.Hits, nil
}
