package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lexfold/canondoc/internal/adapter"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/store"
)

// Linker attaches a query grouping to a batch. When the workflow host already
// supplied a query id it is reused (persist stamped it on every draft);
// otherwise a query is created after the fact and backfilled onto the
// documents persisted under the same workflow run and step.
type Linker struct {
	Documents store.Store
	Queries   store.QueryStore
}

// Link resolves the batch's query id. A nil return means the documents stay
// unlinked; that is a warning, never a batch failure.
func (l *Linker) Link(ctx context.Context, criteria domain.SearchCriteria, pctx adapter.PersistContext, batch *BatchOutcome) *uuid.UUID {
	if pctx.QueryID != nil {
		return pctx.QueryID
	}
	if len(batch.Documents) == 0 {
		return nil
	}
	if l.Queries == nil {
		slog.Warn("no query store configured, documents stay unlinked",
			"workflow_run_id", pctx.WorkflowRunID,
			"step_id", pctx.StepID)
		return nil
	}

	queryID, err := l.Queries.CreateQuery(ctx, domain.DocumentQuery{
		Source:        criteria.Source,
		Criteria:      criteria,
		WorkflowRunID: pctx.WorkflowRunID,
		StepID:        pctx.StepID,
	})
	if err != nil {
		slog.Warn("failed to create query grouping, documents stay unlinked",
			"workflow_run_id", pctx.WorkflowRunID,
			"step_id", pctx.StepID,
			"error", err)
		return nil
	}

	touched, err := l.Documents.BulkUpdateEnrichment(ctx, []store.EnrichmentUpdate{{
		Match: store.EnrichmentMatch{WorkflowRunID: pctx.WorkflowRunID, StepID: pctx.StepID},
		Set:   store.EnrichmentPatch{QueryID: queryID},
	}})
	if err != nil {
		slog.Warn("failed to backfill query id onto persisted documents",
			"query_id", queryID,
			"error", err)
	} else {
		slog.Info("query id backfilled",
			"query_id", queryID,
			"documents", touched)
	}

	// Keep the in-memory batch consistent with the store.
	for i := range batch.Documents {
		qid := queryID
		batch.Documents[i].Enrichment.QueryID = &qid
	}

	return &queryID
}
