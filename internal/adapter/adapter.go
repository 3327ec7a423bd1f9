package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexfold/canondoc/internal/domain"
)

// Adapter is the per-origin ingestion contract. Every source variant
// implements the same seven operations over its own external protocol;
// callers are polymorphic over this interface, never over concrete types.
type Adapter interface {
	Source() domain.Source

	// Discover returns lightweight records for candidate documents matching
	// the criteria. Records carry their format tag; no content is fetched.
	Discover(ctx context.Context, criteria domain.SearchCriteria) ([]domain.DiscoveryRecord, error)

	// Acquire fetches the raw content behind a record. Failures are
	// apperr.AcquisitionError, classified permanent or transient.
	Acquire(ctx context.Context, rec domain.DiscoveryRecord) (*RawArtifact, error)

	// Extract turns acquired bytes into structured content. Failures are
	// apperr.ExtractionError.
	Extract(ctx context.Context, art *RawArtifact) (*Content, error)

	// Map folds a record and its extracted content into a canonical draft.
	Map(rec domain.DiscoveryRecord, content *Content) (*domain.Draft, error)

	// Extensions derives auxiliary data (rule/activity nodes) for downstream
	// consumers. May be empty.
	Extensions(content *Content) *Extensions

	// Validate rejects malformed drafts with apperr.ValidationError before
	// any persistence attempt.
	Validate(draft *domain.Draft) error

	// Persist performs the idempotent upsert and returns the document id.
	Persist(ctx context.Context, draft *domain.Draft, ext *Extensions, pctx PersistContext) (uuid.UUID, error)
}

// RawArtifact is the output of the acquisition stage: unparsed bytes plus
// enough context for extraction.
type RawArtifact struct {
	Record      domain.DiscoveryRecord
	Body        []byte
	ContentType string
	FetchedAt   time.Time
}

// Content is the structured output of the extraction stage.
type Content struct {
	Record             domain.DiscoveryRecord
	Title              string
	FullText           string
	Language           string
	CanonicalURL       string
	PublisherAuthority string
	DocumentFamily     string
	DocumentType       string
	Dates              domain.Dates
	ArtifactRefs       []string
	Metadata           map[string]any
}

// Extensions carries origin-derived auxiliary structures handed to the
// downstream graph populator. Advisory only.
type Extensions struct {
	Nodes []GraphNode
}

// GraphNode is one derived rule or activity reference.
type GraphNode struct {
	Kind  string `json:"kind"` // "rule" or "activity"
	Label string `json:"label"`
	Ref   string `json:"ref,omitempty"`
}

// PersistContext carries the workflow-host identifiers stamped onto every
// draft at persistence time.
type PersistContext struct {
	WorkflowRunID string
	StepID        string
	QueryID       *uuid.UUID
}
