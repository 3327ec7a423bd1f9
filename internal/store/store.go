package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexfold/canondoc/internal/domain"
)

// Store is the canonical document store. Upserts are keyed on
// (source, sourceId); the same pair never yields two documents.
type Store interface {
	// UpsertBySourceID replaces the fields of an existing document with the
	// same (source, sourceId) in place, preserving its identifier, or creates
	// a new document. Returns the document's identifier either way.
	UpsertBySourceID(ctx context.Context, draft domain.Draft) (uuid.UUID, error)

	// FindByID returns the stored document or nil when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)

	// BulkUpdateEnrichment stamps enrichment fields onto every document whose
	// match key applies. Returns the number of documents touched.
	BulkUpdateEnrichment(ctx context.Context, updates []EnrichmentUpdate) (int, error)
}

// QueryStore persists query groupings for search sessions.
type QueryStore interface {
	CreateQuery(ctx context.Context, q domain.DocumentQuery) (uuid.UUID, error)
}

// EnrichmentUpdate backfills enrichment metadata onto already-persisted
// documents, matched by the workflow run and step that produced them.
type EnrichmentUpdate struct {
	Match EnrichmentMatch
	Set   EnrichmentPatch
}

type EnrichmentMatch struct {
	WorkflowRunID string
	StepID        string
}

type EnrichmentPatch struct {
	QueryID uuid.UUID
}

type Type string

const (
	ES    Type = "es"
	PG    Type = "pg"
	InMem Type = "in_mem"
)

type StoreError string

const (
	ErrUnsupportedStore StoreError = "unsupported store type: %s"
)

func (e StoreError) Error() string {
	return string(e)
}
