package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/store"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(pool *ConnectionPool) (*Store, error) {
	return &Store{db: pool.conn}, nil
}

func (s *Store) UpsertBySourceID(ctx context.Context, draft domain.Draft) (uuid.UUID, error) {
	if draft.Language == "" {
		draft.Language = domain.DocumentDefaultLanguage
	}
	if draft.ContentFingerprint == "" {
		draft.ContentFingerprint = domain.Fingerprint(draft.FullText)
	}

	metadataJSON, err := json.Marshal(draft.SourceMetadata)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal source metadata: %w", err)
	}

	cmd := `
        INSERT INTO documents (
            id, source, source_id, canonical_url, title, publisher_authority,
            document_family, document_type, published_at, valid_from, valid_to,
            full_text, content_fingerprint, language, artifact_refs, source_metadata,
            query_id, workflow_run_id, step_id, is_metadata_only, needs_enrichment,
            acquisition_failed_at, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
                $16, $17, $18, $19, $20, $21, $22, $23, $23)
        ON CONFLICT (source, source_id) DO UPDATE SET
            canonical_url = EXCLUDED.canonical_url,
            title = EXCLUDED.title,
            publisher_authority = EXCLUDED.publisher_authority,
            document_family = EXCLUDED.document_family,
            document_type = EXCLUDED.document_type,
            published_at = EXCLUDED.published_at,
            valid_from = EXCLUDED.valid_from,
            valid_to = EXCLUDED.valid_to,
            full_text = EXCLUDED.full_text,
            content_fingerprint = EXCLUDED.content_fingerprint,
            language = EXCLUDED.language,
            artifact_refs = EXCLUDED.artifact_refs,
            source_metadata = EXCLUDED.source_metadata,
            query_id = EXCLUDED.query_id,
            workflow_run_id = EXCLUDED.workflow_run_id,
            step_id = EXCLUDED.step_id,
            is_metadata_only = EXCLUDED.is_metadata_only,
            needs_enrichment = EXCLUDED.needs_enrichment,
            acquisition_failed_at = EXCLUDED.acquisition_failed_at,
            updated_at = EXCLUDED.updated_at
        RETURNING id;
    `

	var id uuid.UUID
	err = s.db.QueryRow(
		ctx,
		cmd,
		uuid.New(),
		draft.Source,
		draft.SourceID,
		nullableString(draft.CanonicalURL),
		draft.Title,
		draft.PublisherAuthority,
		draft.DocumentFamily,
		draft.DocumentType,
		draft.Dates.PublishedAt,
		draft.Dates.ValidFrom,
		draft.Dates.ValidTo,
		draft.FullText,
		draft.ContentFingerprint,
		draft.Language,
		draft.ArtifactRefs,
		metadataJSON,
		draft.Enrichment.QueryID,
		draft.Enrichment.WorkflowRunID,
		draft.Enrichment.StepID,
		draft.Enrichment.MetadataOnly,
		draft.Enrichment.NeedsEnrichment,
		draft.Enrichment.AcquisitionFailedAt,
		time.Now(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert document: %w", err)
	}

	return id, nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	cmd := `
        SELECT id, source, source_id, canonical_url, title, publisher_authority,
               document_family, document_type, published_at, valid_from, valid_to,
               full_text, content_fingerprint, language, artifact_refs, source_metadata,
               query_id, workflow_run_id, step_id, is_metadata_only, needs_enrichment,
               acquisition_failed_at, created_at, updated_at
        FROM documents
        WHERE id = $1;
    `

	var (
		doc          domain.Document
		canonicalURL *string
		metadataJSON []byte
	)
	err := s.db.QueryRow(ctx, cmd, id).Scan(
		&doc.ID,
		&doc.Source,
		&doc.SourceID,
		&canonicalURL,
		&doc.Title,
		&doc.PublisherAuthority,
		&doc.DocumentFamily,
		&doc.DocumentType,
		&doc.Dates.PublishedAt,
		&doc.Dates.ValidFrom,
		&doc.Dates.ValidTo,
		&doc.FullText,
		&doc.ContentFingerprint,
		&doc.Language,
		&doc.ArtifactRefs,
		&metadataJSON,
		&doc.Enrichment.QueryID,
		&doc.Enrichment.WorkflowRunID,
		&doc.Enrichment.StepID,
		&doc.Enrichment.MetadataOnly,
		&doc.Enrichment.NeedsEnrichment,
		&doc.Enrichment.AcquisitionFailedAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	if canonicalURL != nil {
		doc.CanonicalURL = *canonicalURL
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &doc.SourceMetadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal source metadata: %w", err)
		}
	}

	return &doc, nil
}

func (s *Store) BulkUpdateEnrichment(ctx context.Context, updates []store.EnrichmentUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	cmd := `
        UPDATE documents
        SET query_id = $1, updated_at = $2
        WHERE workflow_run_id = $3 AND step_id = $4;
    `
	now := time.Now()
	for _, u := range updates {
		batch.Queue(cmd, u.Set.QueryID, now, u.Match.WorkflowRunID, u.Match.StepID)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	touched := 0
	for range updates {
		tag, err := results.Exec()
		if err != nil {
			return touched, fmt.Errorf("failed to backfill enrichment metadata: %w", err)
		}
		touched += int(tag.RowsAffected())
	}

	return touched, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
