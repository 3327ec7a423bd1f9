package websearch

import (
	"context"

	"github.com/lexfold/canondoc/internal/adapter"
	"github.com/lexfold/canondoc/internal/apperr"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/extract"
	"github.com/lexfold/canondoc/internal/fetch"
)

const defaultMaxHits = 50

// Adapter ingests documents surfaced by a general web-search index. The hit
// URL doubles as the source identifier.
type Adapter struct {
	adapter.Persister
	client    SearchClient
	fetcher   *fetch.Fetcher
	extractor *extract.HTMLExtractor
	maxHits   int
}

type Option func(*Adapter)

// WithMaxHits overrides how many hits one discovery pulls from the index.
func WithMaxHits(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxHits = n
		}
	}
}

func NewAdapter(client SearchClient, fetcher *fetch.Fetcher, persister adapter.Persister, opts ...Option) *Adapter {
	a := &Adapter{
		Persister: persister,
		client:    client,
		fetcher:   fetcher,
		extractor: extract.NewHTMLExtractor(),
		maxHits:   defaultMaxHits,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Source() domain.Source {
	return domain.SourceWebSearch
}

func (a *Adapter) Discover(ctx context.Context, criteria domain.SearchCriteria) ([]domain.DiscoveryRecord, error) {
	if a.client == nil {
		return nil, apperr.NewServiceUnavailable("web search client")
	}

	hits, err := a.client.Search(ctx, criteria.Text, a.maxHits)
	if err != nil {
		return nil, err
	}

	records := make([]domain.DiscoveryRecord, 0, len(hits))
	for _, hit := range hits {
		if hit.URL == "" {
			continue
		}
		records = append(records, domain.DiscoveryRecord{
			Format:      domain.FormatSearchHit,
			ID:          hit.URL,
			Title:       hit.Title,
			PublishedAt: hit.PublishedAt,
			DataURL:     hit.URL,
			Raw: map[string]any{
				"snippet": hit.Snippet,
				"rank":    hit.Rank,
			},
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

	return &adapter.Content{
		Record:       art.Record,
		Title:        page.Title,
		FullText:     page.Markdown,
		Language:     page.Language,
		CanonicalURL: art.Record.DataURL,
		Metadata: map[string]any{
			"byline":  page.Byline,
			"excerpt": page.Excerpt,
		},
	}, nil
}

func (a *Adapter) Map(rec domain.DiscoveryRecord, content *adapter.Content) (*domain.Draft, error) {
	title := content.Title
	if title == "" {
		title = rec.Title
	}

	metadata := map[string]any{}
	for k, v := range rec.Raw {
		metadata[k] = v
	}
	for k, v := range content.Metadata {
		if v != "" && v != nil {
			metadata[k] = v
		}
	}

	draft := &domain.Draft{
		Source:             domain.SourceWebSearch,
		SourceID:           rec.ID,
		Title:              title,
		DocumentFamily:     "web",
		Dates:              domain.Dates{PublishedAt: rec.PublishedAt},
		FullText:           content.FullText,
		ContentFingerprint: domain.Fingerprint(content.FullText),
		Language:           content.Language,
		SourceMetadata:     metadata,
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
