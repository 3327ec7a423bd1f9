package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexfold/canondoc/internal/adapter"
	"github.com/lexfold/canondoc/internal/apperr"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/store"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 4

// Orchestrator drives a batch of discovery records through an adapter's
// post-discovery stages under a bounded concurrency limit. Per-record
// failures are isolated; the batch always returns whatever succeeded.
type Orchestrator struct {
	store store.Store
	limit int
}

func NewOrchestrator(docStore store.Store, limit int) *Orchestrator {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Orchestrator{store: docStore, limit: limit}
}

// Run processes every record through acquire → extract → map → validate →
// persist, falling back to metadata-only persistence on non-validation
// failures. It waits for all records to settle and never fails the batch on
// partial failure.
func (o *Orchestrator) Run(ctx context.Context, a adapter.Adapter, records []domain.DiscoveryRecord, pctx adapter.PersistContext) *BatchOutcome {
	start := time.Now()
	results := make([]RecordResult, len(records))

	g := new(errgroup.Group)
	g.SetLimit(o.limit)

	for i, rec := range records {
		// Cooperative cancellation: stop dispatching new records, settle
		// the rest as dropped.
		if ctx.Err() != nil {
			slog.Info("batch cancelled, skipping remaining records",
				"source", a.Source(),
				"skipped_from", i,
				"total", len(records))
			for j := i; j < len(records); j++ {
				results[j] = RecordResult{Record: records[j], Outcome: OutcomeDropped, Err: ctx.Err()}
			}
			break
		}

		g.Go(func() error {
			results[i] = o.processRecord(ctx, a, rec, pctx)
			return nil
		})
	}

	// Worker funcs never return errors; Wait is only a barrier.
	_ = g.Wait()

	out := tally(results)
	slog.Info("batch processed",
		"source", a.Source(),
		"records", len(records),
		"successful", out.SuccessfulCount,
		"failed", out.FailedCount,
		"duration", time.Since(start))
	return out
}

// processRecord runs the six post-discovery stages for one record and
// resolves its terminal outcome exactly once.
func (o *Orchestrator) processRecord(ctx context.Context, a adapter.Adapter, rec domain.DiscoveryRecord, pctx adapter.PersistContext) RecordResult {
	res := RecordResult{
		Record:         rec,
		StageDurations: make(map[Stage]time.Duration),
	}

	draft, ext, stageErr := o.runStages(ctx, a, rec, &res)
	if stageErr == nil {
		id, err := o.persist(ctx, a, draft, ext, pctx, &res)
		if err == nil {
			res.Outcome = OutcomePersistedFull
			res.DocumentID = id
			res.Document = o.lookup(ctx, id)
			res.Extensions = ext
			return res
		}
		stageErr = err
	}

	if apperr.IsValidation(stageErr) {
		slog.Warn("record rejected by validation",
			"source", a.Source(),
			"record", rec.ID,
			"error", stageErr)
		res.Outcome = OutcomeRejected
		res.Err = stageErr
		return res
	}

	return o.fallback(ctx, a, rec, pctx, stageErr, res)
}

// runStages executes acquire, extract, map and validate in order, returning
// the first classified failure.
func (o *Orchestrator) runStages(ctx context.Context, a adapter.Adapter, rec domain.DiscoveryRecord, res *RecordResult) (*domain.Draft, *adapter.Extensions, error) {
	art, err := timeStage(res, StageAcquire, func() (*adapter.RawArtifact, error) {
		return a.Acquire(ctx, rec)
	})
	if err != nil {
		return nil, nil, err
	}

	content, err := timeStage(res, StageExtract, func() (*adapter.Content, error) {
		return a.Extract(ctx, art)
	})
	if err != nil {
		return nil, nil, err
	}

	draft, err := timeStage(res, StageMap, func() (*domain.Draft, error) {
		return a.Map(rec, content)
	})
	if err != nil {
		return nil, nil, err
	}

	ext := a.Extensions(content)

	_, err = timeStage(res, StageValidate, func() (struct{}, error) {
		return struct{}{}, a.Validate(draft)
	})
	if err != nil {
		return nil, nil, err
	}

	return draft, ext, nil
}

func (o *Orchestrator) persist(ctx context.Context, a adapter.Adapter, draft *domain.Draft, ext *adapter.Extensions, pctx adapter.PersistContext, res *RecordResult) (uuid.UUID, error) {
	return timeStage(res, StagePersist, func() (uuid.UUID, error) {
		return a.Persist(ctx, draft, ext, pctx)
	})
}

// fallback attempts metadata-only persistence for a record whose primary path
// failed. A fallback failure is terminal for the record.
func (o *Orchestrator) fallback(ctx context.Context, a adapter.Adapter, rec domain.DiscoveryRecord, pctx adapter.PersistContext, cause error, res RecordResult) RecordResult {
	slog.Warn("record failed, attempting metadata-only fallback",
		"source", a.Source(),
		"record", rec.ID,
		"permanent", apperr.IsPermanentAcquisition(cause),
		"error", cause)

	draft := FallbackDraft(a.Source(), rec, cause)

	id, err := timeStage(&res, StageFallback, func() (uuid.UUID, error) {
		return a.Persist(ctx, &draft, nil, pctx)
	})
	if err != nil {
		slog.Error("fallback persistence failed, dropping record",
			"source", a.Source(),
			"record", rec.ID,
			"error", err)
		res.Outcome = OutcomeDropped
		res.Err = cause
		return res
	}

	res.Outcome = OutcomePersistedMetadataOnly
	res.DocumentID = id
	res.Document = o.lookup(ctx, id)
	res.Err = cause
	return res
}

func (o *Orchestrator) lookup(ctx context.Context, id uuid.UUID) *domain.Document {
	doc, err := o.store.FindByID(ctx, id)
	if err != nil {
		slog.Warn("failed to read back persisted document", "id", id, "error", err)
		return nil
	}
	return doc
}

func timeStage[T any](res *RecordResult, stage Stage, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	res.StageDurations[stage] = time.Since(start)
	return out, err
}
