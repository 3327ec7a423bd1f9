package registry

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lexfold/canondoc/internal/adapter"
	"github.com/lexfold/canondoc/internal/apperr"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// maxDiscoveryPages bounds paginated discovery so a runaway registry query
// cannot pull unbounded work into one batch.
const maxDiscoveryPages = 20

// envelope is the registry's document payload behind an entry's data URL.
type envelope struct {
	Identifier   string         `json:"identifier"`
	URI          string         `json:"uri,omitempty"`
	Title        string         `json:"title"`
	Text         string         `json:"text"`
	Language     string         `json:"language,omitempty"`
	Authority    string         `json:"authority,omitempty"`
	Family       string         `json:"family,omitempty"`
	Type         string         `json:"type,omitempty"`
	CanonicalURL string         `json:"canonicalUrl,omitempty"`
	PublishedAt  *time.Time     `json:"publishedAt,omitempty"`
	ValidFrom    *time.Time     `json:"validFrom,omitempty"`
	ValidTo      *time.Time     `json:"validTo,omitempty"`
	ContentPDF   string         `json:"contentPdf,omitempty"` // base64 original artifact
	Rules        []envelopeRule `json:"rules,omitempty"`
	Activities   []string       `json:"activities,omitempty"`
	Geometry     map[string]any `json:"geometry,omitempty"`
}

type envelopeRule struct {
	Name string `json:"name"`
	Ref  string `json:"ref,omitempty"`
}

// Adapter ingests from the geometry- and text-based legal-document registry.
type Adapter struct {
	adapter.Persister
	client   Client
	maxPages int
}

type Option func(*Adapter)

// WithMaxPages overrides the discovery page ceiling.
func WithMaxPages(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.maxPages = n
		}
	}
}

func NewAdapter(client Client, persister adapter.Persister, opts ...Option) *Adapter {
	a := &Adapter{Persister: persister, client: client, maxPages: maxDiscoveryPages}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Adapter) Source() domain.Source {
	return domain.SourceRegistry
}

func (a *Adapter) Discover(ctx context.Context, criteria domain.SearchCriteria) ([]domain.DiscoveryRecord, error) {
	if a.client == nil {
		return nil, apperr.NewServiceUnavailable("registry client")
	}

	var records []domain.DiscoveryRecord
	for page := 0; page < a.maxPages; page++ {
		sp, err := a.client.Search(ctx, criteria, page)
		if err != nil {
			return nil, err
		}

		for _, entry := range sp.Entries {
			records = append(records, entryToRecord(entry))
		}

		if !sp.HasMore {
			return records, nil
		}
	}

	slog.Warn("registry discovery hit the page ceiling",
		"pages", a.maxPages,
		"records", len(records))
	return records, nil
}

func entryToRecord(entry Entry) domain.DiscoveryRecord {
	rec := domain.DiscoveryRecord{
		Format:       domain.FormatRegistryEntry,
		ID:           entry.Identifier,
		URI:          entry.URI,
		Title:        entry.Title,
		DocumentType: entry.Type,
		Authority:    entry.Authority,
		PublishedAt:  entry.PublishedAt,
		ValidFrom:    entry.ValidFrom,
		ValidTo:      entry.ValidTo,
		DataURL:      entry.DataURL,
	}
	if entry.Geometry != nil {
		rec.Raw = map[string]any{"geometry": entry.Geometry}
	}
	return rec
}

func (a *Adapter) Acquire(ctx context.Context, rec domain.DiscoveryRecord) (*adapter.RawArtifact, error) {
	if rec.DataURL == "" {
		return nil, apperr.NewAcquisitionPermanent("registry entry has no data url", nil)
	}

	res, err := a.client.FetchEnvelope(ctx, rec.DataURL)
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
	var env envelope
	if err := json.Unmarshal(art.Body, &env); err != nil {
		return nil, apperr.NewExtraction("failed to decode registry envelope", err)
	}
	if env.Text == "" {
		return nil, apperr.NewExtraction("registry envelope carries no text", nil)
	}

	content := &adapter.Content{
		Record:             art.Record,
		Title:              env.Title,
		FullText:           env.Text,
		Language:           env.Language,
		CanonicalURL:       env.CanonicalURL,
		PublisherAuthority: env.Authority,
		DocumentFamily:     env.Family,
		DocumentType:       env.Type,
		Dates: domain.Dates{
			PublishedAt: env.PublishedAt,
			ValidFrom:   env.ValidFrom,
			ValidTo:     env.ValidTo,
		},
		Metadata: map[string]any{},
	}

	if env.Geometry != nil {
		content.Metadata["geometry"] = env.Geometry
	}
	if len(env.Rules) > 0 {
		content.Metadata["rules"] = env.Rules
	}
	if len(env.Activities) > 0 {
		content.Metadata["activities"] = env.Activities
	}

	if env.ContentPDF != "" {
		pdfBytes, err := base64.StdEncoding.DecodeString(env.ContentPDF)
		if err != nil {
			return nil, apperr.NewExtraction("failed to decode pdf artifact", err)
		}

		pages, err := api.PageCount(bytes.NewReader(pdfBytes), model.NewDefaultConfiguration())
		if err != nil {
			return nil, apperr.NewExtraction("pdf artifact failed sanity check", err)
		}

		content.ArtifactRefs = append(content.ArtifactRefs, domain.FingerprintBytes(pdfBytes))
		content.Metadata["pdf_pages"] = pages
	}

	return content, nil
}

func (a *Adapter) Map(rec domain.DiscoveryRecord, content *adapter.Content) (*domain.Draft, error) {
	draft := &domain.Draft{
		Source:             domain.SourceRegistry,
		SourceID:           rec.ID,
		Title:              content.Title,
		PublisherAuthority: content.PublisherAuthority,
		DocumentFamily:     content.DocumentFamily,
		DocumentType:       content.DocumentType,
		Dates:              content.Dates,
		FullText:           content.FullText,
		ContentFingerprint: domain.Fingerprint(content.FullText),
		Language:           content.Language,
		ArtifactRefs:       content.ArtifactRefs,
		SourceMetadata:     mergeMetadata(rec, content),
	}

	if content.Title == "" {
		draft.Title = rec.Title
	}
	if draft.DocumentType == "" {
		draft.DocumentType = rec.DocumentType
	}
	if draft.PublisherAuthority == "" {
		draft.PublisherAuthority = rec.Authority
	}
	if domain.ValidCanonicalURL(content.CanonicalURL) {
		draft.CanonicalURL = content.CanonicalURL
	}

	return draft, nil
}

func mergeMetadata(rec domain.DiscoveryRecord, content *adapter.Content) map[string]any {
	merged := map[string]any{}
	for k, v := range rec.Raw {
		merged[k] = v
	}
	for k, v := range content.Metadata {
		merged[k] = v
	}
	if rec.URI != "" {
		merged["uri"] = rec.URI
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

func (a *Adapter) Extensions(content *adapter.Content) *adapter.Extensions {
	ext := &adapter.Extensions{}

	if rules, ok := content.Metadata["rules"].([]envelopeRule); ok {
		for _, r := range rules {
			ext.Nodes = append(ext.Nodes, adapter.GraphNode{Kind: "rule", Label: r.Name, Ref: r.Ref})
		}
	}
	if activities, ok := content.Metadata["activities"].([]string); ok {
		for _, act := range activities {
			ext.Nodes = append(ext.Nodes, adapter.GraphNode{Kind: "activity", Label: act})
		}
	}

	return ext
}

func (a *Adapter) Validate(draft *domain.Draft) error {
	return adapter.ValidateDraft(draft)
}
