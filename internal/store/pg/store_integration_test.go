package pg

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/store"
	pkgtesting "github.com/lexfold/canondoc/pkg/testing"
)

// Set INTEGRATION_TESTS=1 to run against a disposable postgres container.
func integrationStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("integration tests disabled, set INTEGRATION_TESTS=1")
	}

	ctx := context.Background()
	container := pkgtesting.NewPGContainerWithCleanup(ctx, t)

	pool, err := NewConnectionPool(ctx, PoolConfig{ConnStr: container.ConnString})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s, err := NewStore(pool)
	require.NoError(t, err)
	return s
}

func TestUpsertBySourceIDIntegration(t *testing.T) {
	s := integrationStore(t)
	ctx := context.Background()

	draft := domain.Draft{
		Source:             domain.SourceRegistry,
		SourceID:           "reg-100",
		Title:              "Noise Abatement Order",
		FullText:           "original body",
		ContentFingerprint: domain.Fingerprint("original body"),
		SourceMetadata:     map[string]any{"uri": "https://registry.example/reg-100"},
		Enrichment: domain.Enrichment{
			WorkflowRunID: "run-1",
			StepID:        "step-1",
		},
	}

	id1, err := s.UpsertBySourceID(ctx, draft)
	require.NoError(t, err)

	draft.FullText = "amended body"
	draft.ContentFingerprint = domain.Fingerprint("amended body")
	id2, err := s.UpsertBySourceID(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	doc, err := s.FindByID(ctx, id1)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "amended body", doc.FullText)
	assert.Equal(t, "reg-100", doc.SourceID)
	assert.False(t, doc.UpdatedAt.Before(doc.CreatedAt))
}

func TestFindByIDAbsentIntegration(t *testing.T) {
	s := integrationStore(t)

	doc, err := s.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestQueryBackfillIntegration(t *testing.T) {
	s := integrationStore(t)
	ctx := context.Background()

	for _, sourceID := range []string{"reg-200", "reg-201"} {
		_, err := s.UpsertBySourceID(ctx, domain.Draft{
			Source:             domain.SourceRegistry,
			SourceID:           sourceID,
			Title:              "Order " + sourceID,
			FullText:           "body " + sourceID,
			ContentFingerprint: domain.Fingerprint("body " + sourceID),
			Enrichment: domain.Enrichment{
				WorkflowRunID: "run-b",
				StepID:        "step-b",
			},
		})
		require.NoError(t, err)
	}

	queryID, err := s.CreateQuery(ctx, domain.DocumentQuery{
		Source:        domain.SourceRegistry,
		Criteria:      domain.SearchCriteria{Source: domain.SourceRegistry, Text: "order"},
		WorkflowRunID: "run-b",
		StepID:        "step-b",
	})
	require.NoError(t, err)

	touched, err := s.BulkUpdateEnrichment(ctx, []store.EnrichmentUpdate{{
		Match: store.EnrichmentMatch{WorkflowRunID: "run-b", StepID: "step-b"},
		Set:   store.EnrichmentPatch{QueryID: queryID},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, touched)
}
