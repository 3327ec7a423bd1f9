package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/lexfold/canondoc/internal/apperr"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/fetch"
)

// Entry is one registry-native search result.
type Entry struct {
	Identifier  string         `json:"identifier"`
	URI         string         `json:"uri,omitempty"`
	Title       string         `json:"title"`
	Type        string         `json:"type,omitempty"`
	Authority   string         `json:"authority,omitempty"`
	PublishedAt *time.Time     `json:"publishedAt,omitempty"`
	ValidFrom   *time.Time     `json:"validFrom,omitempty"`
	ValidTo     *time.Time     `json:"validTo,omitempty"`
	DataURL     string         `json:"dataUrl,omitempty"`
	Geometry    map[string]any `json:"geometry,omitempty"`
}

// SearchPage is one page of registry search results.
type SearchPage struct {
	Entries []Entry `json:"results"`
	HasMore bool    `json:"hasMore"`
}

// Client is the narrow contract against the legal-document registry. The
// registry's own protocol details stay behind it.
type Client interface {
	// Search returns one page of entries matching the criteria. Pages are
	// zero-based.
	Search(ctx context.Context, criteria domain.SearchCriteria, page int) (*SearchPage, error)

	// FetchEnvelope downloads the document envelope behind an entry's data
	// URL. Failures are classified acquisition errors.
	FetchEnvelope(ctx context.Context, dataURL string) (*fetch.Result, error)
}

// HTTPClient talks to a registry HTTP API.
type HTTPClient struct {
	baseURL string
	fetcher *fetch.Fetcher
}

func NewHTTPClient(baseURL string, fetcher *fetch.Fetcher) *HTTPClient {
	return &HTTPClient{baseURL: baseURL, fetcher: fetcher}
}

func (c *HTTPClient) Search(ctx context.Context, criteria domain.SearchCriteria, page int) (*SearchPage, error) {
	q := url.Values{}
	if criteria.Text != "" {
		q.Set("text", criteria.Text)
	}
	if criteria.Area != "" {
		q.Set("area", criteria.Area)
	}
	for _, theme := range criteria.Themes {
		q.Add("theme", theme)
	}
	q.Set("page", strconv.Itoa(page))

	res, err := c.fetcher.Fetch(ctx, c.baseURL+"/documents/search?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("registry search failed: %w", err)
	}

	var sp SearchPage
	if err := json.Unmarshal(res.Body, &sp); err != nil {
		return nil, fmt.Errorf("failed to decode registry search page: %w", err)
	}
	return &sp, nil
}

func (c *HTTPClient) FetchEnvelope(ctx context.Context, dataURL string) (*fetch.Result, error) {
	if dataURL == "" {
		return nil, apperr.NewAcquisitionPermanent("entry has no data url", nil)
	}
	return c.fetcher.Fetch(ctx, dataURL)
}
