package scrape

import (
	"context"

	"github.com/lexfold/canondoc/internal/adapter"
	"github.com/lexfold/canondoc/internal/apperr"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/extract"
	"github.com/lexfold/canondoc/internal/fetch"
)

// Adapter ingests pages already surfaced by crawling. Discovery is driven by
// the seed URLs in the criteria; the page URL is the source identifier.
type Adapter struct {
	adapter.Persister
	fetcher   *fetch.Fetcher
	extractor *extract.HTMLExtractor
}

func NewAdapter(fetcher *fetch.Fetcher, persister adapter.Persister) *Adapter {
	return &Adapter{
		Persister: persister,
		fetcher:   fetcher,
		extractor: extract.NewHTMLExtractor(),
	}
}

func (a *Adapter) Source() domain.Source {
	return domain.SourceScrape
}

func (a *Adapter) Discover(ctx context.Context, criteria domain.SearchCriteria) ([]domain.DiscoveryRecord, error) {
	if len(criteria.URLs) == 0 {
		return nil, apperr.NewValidation("scrape criteria carries no urls")
	}

	records := make([]domain.DiscoveryRecord, 0, len(criteria.URLs))
	for _, pageURL := range criteria.URLs {
		if !domain.ValidCanonicalURL(pageURL) {
			continue
		}
		records = append(records, domain.DiscoveryRecord{
			Format:  domain.FormatScrapedPage,
			ID:      pageURL,
			Title:   pageURL,
			DataURL: pageURL,
		})
	}
	return records, nil
}

func (a *Adapter) Acquire(ctx context.Context, rec domain.DiscoveryRecord) (*adapter.RawArtifact, error) {
	res, err := a.fetcher.Fetch(ctx, rec.DataURL)
	if err != nil {
		return nil, err
	}

	return &adapter.RawArtifact{
		Record:      rec,
		Body:        res.Body,
		ContentType: res.ContentType,
		FetchedAt:   res.FetchedAt,
	}, nil
}

func (a *Adapter) Extract(ctx context.Context, art *adapter.RawArtifact) (*adapter.Content, error) {
	page, err := a.extractor.Extract(art.Body, art.Record.DataURL)
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{}
	if page.Byline != "" {
		metadata["byline"] = page.Byline
	}
	if page.Excerpt != "" {
		metadata["excerpt"] = page.Excerpt
	}

	return &adapter.Content{
		Record:       art.Record,
		Title:        page.Title,
		FullText:     page.Markdown,
		Language:     page.Language,
		CanonicalURL: art.Record.DataURL,
		Metadata:     metadata,
	}, nil
}

func (a *Adapter) Map(rec domain.DiscoveryRecord, content *adapter.Content) (*domain.Draft, error) {
	title := content.Title
	if title == "" {
		title = rec.Title
	}

	draft := &domain.Draft{
		Source:             domain.SourceScrape,
		SourceID:           rec.ID,
		Title:              title,
		DocumentFamily:     "web",
		FullText:           content.FullText,
		ContentFingerprint: domain.Fingerprint(content.FullText),
		Language:           content.Language,
		SourceMetadata:     content.Metadata,
	}

	if domain.ValidCanonicalURL(content.CanonicalURL) {
		draft.CanonicalURL = content.CanonicalURL
	}

	return draft, nil
}

func (a *Adapter) Extensions(content *adapter.Content) *adapter.Extensions {
	return &adapter.Extensions{}
}

func (a *Adapter) Validate(draft *domain.Draft) error {
	return adapter.ValidateDraft(draft)
}
