package es

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/refresh"
	"github.com/google/uuid"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/store"
)

type Store struct {
	client    *elasticsearch.TypedClient
	indexName string
	config    ClientConfig
}

// document is the flat Elasticsearch shape of a canonical document.
type document struct {
	ID                  string     `json:"id"`
	Source              string     `json:"source"`
	SourceID            string     `json:"source_id"`
	CanonicalURL        string     `json:"canonical_url,omitempty"`
	Title               string     `json:"title"`
	PublisherAuthority  string     `json:"publisher_authority,omitempty"`
	DocumentFamily      string     `json:"document_family,omitempty"`
	DocumentType        string     `json:"document_type,omitempty"`
	PublishedAt         *time.Time `json:"published_at,omitempty"`
	ValidFrom           *time.Time `json:"valid_from,omitempty"`
	ValidTo             *time.Time `json:"valid_to,omitempty"`
	FullText            string     `json:"full_text"`
	ContentFingerprint  string     `json:"content_fingerprint"`
	Language            string     `json:"language,omitempty"`
	ArtifactRefs        []string   `json:"artifact_refs,omitempty"`
	SourceMetadata      map[string]any `json:"source_metadata,omitempty"`
	QueryID             *string    `json:"query_id,omitempty"`
	WorkflowRunID       string     `json:"workflow_run_id"`
	StepID              string     `json:"step_id"`
	MetadataOnly        bool       `json:"is_metadata_only"`
	NeedsEnrichment     bool       `json:"needs_enrichment"`
	AcquisitionFailedAt *time.Time `json:"acquisition_failed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func NewStore(ctx context.Context, config ClientConfig) (*Store, error) {
	client, err := newClient(config)

	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	s := &Store{
		client:    client,
		indexName: config.IndexName,
		config:    config,
	}

	if err := s.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return s, nil
}

// docKey is the Elasticsearch document id: deterministic per (source,
// sourceId), which makes repeated indexing an in-place replace.
func docKey(source domain.Source, sourceID string) string {
	return string(source) + ":" + sourceID
}

func (e *Store) UpsertBySourceID(ctx context.Context, draft domain.Draft) (uuid.UUID, error) {
	key := docKey(draft.Source, draft.SourceID)
	now := time.Now()

	id := uuid.New()
	createdAt := now

	// Preserve the canonical identifier of an already-stored document.
	existing, err := e.client.Get(e.indexName, key).Do(ctx)
	if err == nil && existing.Found {
		var prev document
		if uerr := json.Unmarshal(existing.Source_, &prev); uerr == nil {
			if parsed, perr := uuid.Parse(prev.ID); perr == nil {
				id = parsed
			}
			createdAt = prev.CreatedAt
		}
	}

	doc := e.draftToDocument(draft)
	doc.ID = id.String()
	doc.CreatedAt = createdAt
	doc.UpdatedAt = now

	// Refresh keeps the synchronous read-after-write contract of the store.
	res, err := e.client.Index(e.indexName).Id(key).Document(doc).Refresh(refresh.True).Do(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to index document: %w", err)
	}

	slog.Debug("document indexed", "id", doc.ID, "key", key, "index", e.indexName, "result", res.Result)
	return id, nil
}

func (e *Store) FindByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	res, err := e.client.Search().
		Index(e.indexName).
		Query(&types.Query{
			Term: map[string]types.TermQuery{
				"id": {Value: id.String()},
			},
		}).
		Size(1).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up document: %w", err)
	}

	if len(res.Hits.Hits) == 0 {
		return nil, nil
	}

	var doc document
	if err := json.Unmarshal(res.Hits.Hits[0].Source_, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	return e.documentToDomain(doc)
}

func (e *Store) BulkUpdateEnrichment(ctx context.Context, updates []store.EnrichmentUpdate) (int, error) {
	touched := 0
	for _, u := range updates {
		res, err := e.client.Search().
			Index(e.indexName).
			Query(&types.Query{
				Bool: &types.BoolQuery{
					Filter: []types.Query{
						{Term: map[string]types.TermQuery{"workflow_run_id": {Value: u.Match.WorkflowRunID}}},
						{Term: map[string]types.TermQuery{"step_id": {Value: u.Match.StepID}}},
					},
				},
			}).
			Size(10_000).
			Do(ctx)
		if err != nil {
			return touched, fmt.Errorf("failed to search documents for backfill: %w", err)
		}

		for _, hit := range res.Hits.Hits {
			if hit.Id_ == nil {
				continue
			}
			patch := map[string]any{
				"query_id":   u.Set.QueryID.String(),
				"updated_at": time.Now(),
			}
			if _, err := e.client.Update(e.indexName, *hit.Id_).Doc(patch).Refresh(refresh.True).Do(ctx); err != nil {
				return touched, fmt.Errorf("failed to backfill enrichment metadata: %w", err)
			}
			touched++
		}
	}

	return touched, nil
}

func (e *Store) CreateQuery(ctx context.Context, q domain.DocumentQuery) (uuid.UUID, error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}

	_, err := e.client.Index(e.indexName + "_queries").Id(q.ID.String()).Document(q).Do(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to index document query: %w", err)
	}

	return q.ID, nil
}

func (e *Store) draftToDocument(draft domain.Draft) document {
	doc := document{
		Source:              string(draft.Source),
		SourceID:            draft.SourceID,
		CanonicalURL:        draft.CanonicalURL,
		Title:               draft.Title,
		PublisherAuthority:  draft.PublisherAuthority,
		DocumentFamily:      draft.DocumentFamily,
		DocumentType:        draft.DocumentType,
		PublishedAt:         draft.Dates.PublishedAt,
		ValidFrom:           draft.Dates.ValidFrom,
		ValidTo:             draft.Dates.ValidTo,
		FullText:            draft.FullText,
		ContentFingerprint:  draft.ContentFingerprint,
		Language:            draft.Language,
		ArtifactRefs:        draft.ArtifactRefs,
		SourceMetadata:      draft.SourceMetadata,
		WorkflowRunID:       draft.Enrichment.WorkflowRunID,
		StepID:              draft.Enrichment.StepID,
		MetadataOnly:        draft.Enrichment.MetadataOnly,
		NeedsEnrichment:     draft.Enrichment.NeedsEnrichment,
		AcquisitionFailedAt: draft.Enrichment.AcquisitionFailedAt,
	}
	if draft.Enrichment.QueryID != nil {
		qid := draft.Enrichment.QueryID.String()
		doc.QueryID = &qid
	}
	return doc
}

func (e *Store) documentToDomain(doc document) (*domain.Document, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document id: %w", err)
	}

	out := &domain.Document{
		ID: id,
		Draft: domain.Draft{
			Source:             domain.Source(doc.Source),
			SourceID:           doc.SourceID,
			CanonicalURL:       doc.CanonicalURL,
			Title:              doc.Title,
			PublisherAuthority: doc.PublisherAuthority,
			DocumentFamily:     doc.DocumentFamily,
			DocumentType:       doc.DocumentType,
			Dates: domain.Dates{
				PublishedAt: doc.PublishedAt,
				ValidFrom:   doc.ValidFrom,
				ValidTo:     doc.ValidTo,
			},
			FullText:           doc.FullText,
			ContentFingerprint: doc.ContentFingerprint,
			Language:           doc.Language,
			ArtifactRefs:       doc.ArtifactRefs,
			SourceMetadata:     doc.SourceMetadata,
			Enrichment: domain.Enrichment{
				WorkflowRunID:       doc.WorkflowRunID,
				StepID:              doc.StepID,
				MetadataOnly:        doc.MetadataOnly,
				NeedsEnrichment:     doc.NeedsEnrichment,
				AcquisitionFailedAt: doc.AcquisitionFailedAt,
			},
		},
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	if doc.QueryID != nil {
		qid, err := uuid.Parse(*doc.QueryID)
		if err == nil {
			out.Enrichment.QueryID = &qid
		}
	}

	return out, nil
}

func (e *Store) EnsureIndex(ctx context.Context) error {
	existsRes, err := e.client.Indices.Exists(e.indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}

	if existsRes {
		slog.Info("Index already exists", "index", e.indexName)
		return nil
	}

	mappings := types.TypeMapping{
		Properties: map[string]types.Property{
			"id":                    types.NewKeywordProperty(),
			"source":                types.NewKeywordProperty(),
			"source_id":             types.NewKeywordProperty(),
			"canonical_url":         types.NewKeywordProperty(),
			"title":                 e.createTextPropertyWithKeyword(),
			"publisher_authority":   e.createTextPropertyWithKeyword(),
			"document_family":       types.NewKeywordProperty(),
			"document_type":         types.NewKeywordProperty(),
			"published_at":          types.NewDateProperty(),
			"valid_from":            types.NewDateProperty(),
			"valid_to":              types.NewDateProperty(),
			"full_text":             types.NewTextProperty(),
			"content_fingerprint":   types.NewKeywordProperty(),
			"language":              types.NewKeywordProperty(),
			"artifact_refs":         types.NewKeywordProperty(),
			"query_id":              types.NewKeywordProperty(),
			"workflow_run_id":       types.NewKeywordProperty(),
			"step_id":               types.NewKeywordProperty(),
			"is_metadata_only":      types.NewBooleanProperty(),
			"needs_enrichment":      types.NewBooleanProperty(),
			"acquisition_failed_at": types.NewDateProperty(),
			"created_at":            types.NewDateProperty(),
			"updated_at":            types.NewDateProperty(),
		},
	}

	createRes, err := e.client.Indices.Create(e.indexName).
		Mappings(&mappings).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if !createRes.Acknowledged {
		return fmt.Errorf("index creation was not acknowledged")
	}

	slog.Info("Index created successfully", "index", e.indexName)
	return nil
}

func (e *Store) createTextPropertyWithKeyword() types.Property {
	textProp := types.NewTextProperty()
	textProp.Fields = map[string]types.Property{
		"keyword": types.NewKeywordProperty(),
	}
	return textProp
}
