package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfold/canondoc/internal/adapter"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/store/inmem"
)

type failingQueryStore struct{}

func (failingQueryStore) CreateQuery(ctx context.Context, q domain.DocumentQuery) (uuid.UUID, error) {
	return uuid.Nil, errors.New("query store down")
}

func runLinkedBatch(t *testing.T, docs *inmem.Store, pctx adapter.PersistContext) *BatchOutcome {
	t.Helper()
	a := &stubAdapter{Persister: adapter.Persister{Store: docs}}
	out := NewOrchestrator(docs, 2).Run(context.Background(), a, records("q1", "q2"), pctx)
	require.Equal(t, 2, out.SuccessfulCount)
	return out
}

func TestLinkBackfillsQueryIDRetroactively(t *testing.T) {
	docs := inmem.NewStore()
	pctx := adapter.PersistContext{WorkflowRunID: "run-l", StepID: "step-l"}
	out := runLinkedBatch(t, docs, pctx)

	// Documents were persisted before any query existed.
	for _, doc := range out.Documents {
		require.Nil(t, doc.Enrichment.QueryID)
	}

	l := &Linker{Documents: docs, Queries: docs}
	criteria := domain.SearchCriteria{Source: domain.SourceRegistry, Text: "coastal"}
	queryID := l.Link(context.Background(), criteria, pctx, out)

	require.NotNil(t, queryID)
	for _, doc := range out.Documents {
		require.NotNil(t, doc.Enrichment.QueryID)
		assert.Equal(t, *queryID, *doc.Enrichment.QueryID)
	}

	// The store copy carries the backfilled id too.
	stored, err := docs.FindByID(context.Background(), out.Documents[0].ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Enrichment.QueryID)
	assert.Equal(t, *queryID, *stored.Enrichment.QueryID)
}

func TestLinkReusesCallerProvidedQueryID(t *testing.T) {
	docs := inmem.NewStore()
	given := uuid.New()
	pctx := adapter.PersistContext{WorkflowRunID: "run-r", StepID: "step-r", QueryID: &given}
	out := runLinkedBatch(t, docs, pctx)

	l := &Linker{Documents: docs, Queries: docs}
	queryID := l.Link(context.Background(), domain.SearchCriteria{Source: domain.SourceRegistry}, pctx, out)

	require.NotNil(t, queryID)
	assert.Equal(t, given, *queryID)
	// Persist already stamped the id; no backfill needed.
	stored, err := docs.FindByID(context.Background(), out.Documents[0].ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Enrichment.QueryID)
	assert.Equal(t, given, *stored.Enrichment.QueryID)
}

func TestLinkFailureLeavesDocumentsUnlinked(t *testing.T) {
	docs := inmem.NewStore()
	pctx := adapter.PersistContext{WorkflowRunID: "run-f", StepID: "step-f"}
	out := runLinkedBatch(t, docs, pctx)

	l := &Linker{Documents: docs, Queries: failingQueryStore{}}
	queryID := l.Link(context.Background(), domain.SearchCriteria{Source: domain.SourceRegistry}, pctx, out)

	assert.Nil(t, queryID)
	// The batch still reports its documents; only the grouping is missing.
	assert.Len(t, out.Documents, 2)
	stored, err := docs.FindByID(context.Background(), out.Documents[0].ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Enrichment.QueryID)
}

func TestLinkSkipsEmptyBatch(t *testing.T) {
	docs := inmem.NewStore()
	l := &Linker{Documents: docs, Queries: docs}
	queryID := l.Link(context.Background(), domain.SearchCriteria{Source: domain.SourceRegistry},
		adapter.PersistContext{WorkflowRunID: "run-e", StepID: "step-e"}, &BatchOutcome{})
	assert.Nil(t, queryID)
}
