package inmem

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draft(sourceID string) domain.Draft {
	text := "ordinance text for " + sourceID
	return domain.Draft{
		Source:             domain.SourceRegistry,
		SourceID:           sourceID,
		Title:              "Ordinance " + sourceID,
		FullText:           text,
		ContentFingerprint: domain.Fingerprint(text),
		Enrichment: domain.Enrichment{
			WorkflowRunID: "run-1",
			StepID:        "step-1",
		},
	}
}

func TestUpsertBySourceID_Idempotent(t *testing.T) {
	s := NewStore()
	ctx := t.Context()

	first, err := s.UpsertBySourceID(ctx, draft("reg-1"))
	require.NoError(t, err)

	second, err := s.UpsertBySourceID(ctx, draft("reg-1"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, s.Len())
}

func TestUpsertBySourceID_ReplacesFieldsInPlace(t *testing.T) {
	s := NewStore()
	ctx := t.Context()

	id, err := s.UpsertBySourceID(ctx, draft("reg-2"))
	require.NoError(t, err)

	updated := draft("reg-2")
	updated.Title = "Ordinance reg-2 (amended)"
	updated.FullText = "amended text"
	updated.ContentFingerprint = domain.Fingerprint(updated.FullText)

	id2, err := s.UpsertBySourceID(ctx, updated)
	require.NoError(t, err)
	require.Equal(t, id, id2)

	doc, err := s.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Ordinance reg-2 (amended)", doc.Title)
	assert.Equal(t, domain.Fingerprint("amended text"), doc.ContentFingerprint)
}

func TestUpsertBySourceID_SameIDDifferentSource(t *testing.T) {
	s := NewStore()
	ctx := t.Context()

	a := draft("shared")
	b := draft("shared")
	b.Source = domain.SourceWebSearch

	idA, err := s.UpsertBySourceID(ctx, a)
	require.NoError(t, err)
	idB, err := s.UpsertBySourceID(ctx, b)
	require.NoError(t, err)

	assert.NotEqual(t, idA, idB, "sourceId is only unique within a source")
	assert.Equal(t, 2, s.Len())
}

func TestFindByID_Absent(t *testing.T) {
	s := NewStore()

	doc, err := s.FindByID(t.Context(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestBulkUpdateEnrichment_BackfillsQueryID(t *testing.T) {
	s := NewStore()
	ctx := t.Context()

	idA, err := s.UpsertBySourceID(ctx, draft("reg-a"))
	require.NoError(t, err)
	idB, err := s.UpsertBySourceID(ctx, draft("reg-b"))
	require.NoError(t, err)

	other := draft("reg-c")
	other.Enrichment.WorkflowRunID = "run-2"
	idC, err := s.UpsertBySourceID(ctx, other)
	require.NoError(t, err)

	queryID := uuid.New()
	touched, err := s.BulkUpdateEnrichment(ctx, []store.EnrichmentUpdate{{
		Match: store.EnrichmentMatch{WorkflowRunID: "run-1", StepID: "step-1"},
		Set:   store.EnrichmentPatch{QueryID: queryID},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, touched)

	for _, id := range []uuid.UUID{idA, idB} {
		doc, err := s.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, doc.Enrichment.QueryID)
		assert.Equal(t, queryID, *doc.Enrichment.QueryID)
	}

	unmatched, err := s.FindByID(ctx, idC)
	require.NoError(t, err)
	assert.Nil(t, unmatched.Enrichment.QueryID)
}
