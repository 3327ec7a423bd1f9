package adapter

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexfold/canondoc/internal/apperr"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/store"
)

// Persister is the shared persistence stage. Adapters embed it so every
// variant upserts through the same store contract.
type Persister struct {
	Store store.Store
}

func (p Persister) Persist(ctx context.Context, draft *domain.Draft, ext *Extensions, pctx PersistContext) (uuid.UUID, error) {
	if p.Store == nil {
		return uuid.Nil, apperr.NewServiceUnavailable("document store")
	}

	draft.Enrichment.WorkflowRunID = pctx.WorkflowRunID
	draft.Enrichment.StepID = pctx.StepID
	if pctx.QueryID != nil {
		draft.Enrichment.QueryID = pctx.QueryID
	}
	if draft.ContentFingerprint == "" {
		draft.ContentFingerprint = domain.Fingerprint(draft.FullText)
	}

	id, err := p.Store.UpsertBySourceID(ctx, *draft)
	if err != nil {
		return uuid.Nil, apperr.NewPersistence("failed to upsert canonical document", err)
	}
	return id, nil
}

// ValidateDraft enforces the fields every canonical draft must carry. It is
// the shared validation stage; adapters may layer source checks on top.
func ValidateDraft(draft *domain.Draft) error {
	if draft == nil {
		return apperr.NewValidation("draft is nil")
	}
	if !domain.SupportedSources[draft.Source] {
		return apperr.NewValidation("unknown source: " + string(draft.Source))
	}
	if draft.SourceID == "" {
		return apperr.NewValidation("missing source id")
	}
	if draft.Title == "" {
		return apperr.NewValidation("missing title")
	}
	if draft.FullText == "" {
		return apperr.NewValidation("missing full text")
	}
	if draft.CanonicalURL != "" && !domain.ValidCanonicalURL(draft.CanonicalURL) {
		return apperr.NewValidation("canonical url must be a well-formed absolute url")
	}
	if draft.Enrichment.MetadataOnly && len(draft.ArtifactRefs) > 0 {
		return apperr.NewValidation("metadata-only draft must not carry artifact refs")
	}
	return nil
}
