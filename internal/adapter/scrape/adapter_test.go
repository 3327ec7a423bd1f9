package scrape

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lexfold/canondoc/internal/adapter"
	"github.com/lexfold/canondoc/internal/apperr"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/fetch"
	"github.com/lexfold/canondoc/internal/store/inmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageHTML = `<!DOCTYPE html>
<html><head><title>Parking Regulation</title></head>
<body><article><h1>Parking Regulation</h1>
<p>Residential parking permits are issued per household. A second permit
requires proof that no private parking space is available at the address.</p>
<p>Permit fees are reviewed annually by the city council.</p>
</article></body></html>`

func newScrapeAdapter(t *testing.T) *Adapter {
	t.Helper()
	cfg := fetch.DefaultConfig()
	cfg.BackoffBase = time.Millisecond
	return NewAdapter(fetch.NewFetcher(cfg), adapter.Persister{Store: inmem.NewStore()})
}

func TestDiscover_FiltersInvalidURLs(t *testing.T) {
	a := newScrapeAdapter(t)

	records, err := a.Discover(t.Context(), domain.SearchCriteria{
		Source: domain.SourceScrape,
		URLs:   []string{"https://city.example.org/parking", "not-a-url"},
	})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, domain.FormatScrapedPage, records[0].Format)
	assert.Equal(t, "https://city.example.org/parking", records[0].ID)
}

func TestDiscover_NoURLsIsValidationError(t *testing.T) {
	a := newScrapeAdapter(t)

	_, err := a.Discover(t.Context(), domain.SearchCriteria{Source: domain.SourceScrape})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestAcquireExtractMap_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(pageHTML))
	}))
	defer srv.Close()

	a := newScrapeAdapter(t)
	rec := domain.DiscoveryRecord{Format: domain.FormatScrapedPage, ID: srv.URL, Title: srv.URL, DataURL: srv.URL}

	art, err := a.Acquire(t.Context(), rec)
	require.NoError(t, err)

	content, err := a.Extract(t.Context(), art)
	require.NoError(t, err)
	assert.Equal(t, "Parking Regulation", content.Title)

	draft, err := a.Map(rec, content)
	require.NoError(t, err)
	require.NoError(t, a.Validate(draft))

	assert.Equal(t, srv.URL, draft.SourceID)
	assert.Contains(t, draft.FullText, "parking permits")
	assert.Equal(t, domain.Fingerprint(draft.FullText), draft.ContentFingerprint)
}

func TestExtract_UnreadablePage(t *testing.T) {
	a := newScrapeAdapter(t)

	rec := domain.DiscoveryRecord{Format: domain.FormatScrapedPage, DataURL: "https://city.example.org/x"}
	_, err := a.Extract(t.Context(), &adapter.RawArtifact{Record: rec, Body: []byte("")})

	require.Error(t, err)
	var ee *apperr.ExtractionError
	assert.ErrorAs(t, err, &ee)
}
