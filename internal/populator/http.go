package populator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lexfold/canondoc/internal/domain"
)

// HTTPPopulator posts completed batches to a graph service endpoint.
type HTTPPopulator struct {
	endpoint string
	client   *http.Client
}

func NewHTTPPopulator(endpoint string, timeout time.Duration) *HTTPPopulator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPPopulator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *HTTPPopulator) Populate(ctx context.Context, docs []domain.Document, meta Meta) (Counts, error) {
	payload, err := json.Marshal(struct {
		Meta      Meta              `json:"meta"`
		Documents []domain.Document `json:"documents"`
	}{Meta: meta, Documents: docs})
	if err != nil {
		return Counts{}, fmt.Errorf("failed to marshal populate payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Counts{}, fmt.Errorf("failed to build populate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Counts{}, fmt.Errorf("populate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Counts{}, fmt.Errorf("populate request returned status %d", resp.StatusCode)
	}

	var counts Counts
	if err := json.NewDecoder(resp.Body).Decode(&counts); err != nil {
		return Counts{}, fmt.Errorf("failed to decode populate response: %w", err)
	}
	return counts, nil
}
