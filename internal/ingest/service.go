package ingest

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lexfold/canondoc/internal/adapter"
	"github.com/lexfold/canondoc/internal/apperr"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/pipeline"
	"github.com/lexfold/canondoc/internal/populator"
	"github.com/lexfold/canondoc/internal/store"
)

// BatchRequest is the single batch operation's input.
type BatchRequest struct {
	Criteria         domain.SearchCriteria `json:"criteria"`
	ConcurrencyLimit int                   `json:"concurrencyLimit,omitempty"`
	MaxResults       int                   `json:"maxResults,omitempty"`

	// Workflow-host context.
	WorkflowRunID string     `json:"workflowRunId"`
	StepID        string     `json:"stepId"`
	QueryID       *uuid.UUID `json:"queryId,omitempty"`
}

// BatchResult is the single batch operation's output.
type BatchResult struct {
	Documents       []domain.Document `json:"documents"`
	QueryID         *uuid.UUID        `json:"queryId,omitempty"`
	SuccessfulCount int               `json:"successfulCount"`
	FailedCount     int               `json:"failedCount"`
}

// Service runs the full ingestion batch: discovery, orchestration, query
// linkage and the best-effort graph population.
type Service struct {
	adapters  map[domain.Source]adapter.Adapter
	docStore  store.Store
	linker    *pipeline.Linker
	populator populator.Populator // optional; resolved once at construction
	limit     int
}

type Option func(*Service)

// WithPopulator wires the optional downstream graph populator.
func WithPopulator(p populator.Populator) Option {
	return func(s *Service) {
		s.populator = p
	}
}

// WithConcurrency overrides the default per-batch concurrency limit.
func WithConcurrency(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

func NewService(docStore store.Store, queryStore store.QueryStore, adapters []adapter.Adapter, opts ...Option) *Service {
	bySource := make(map[domain.Source]adapter.Adapter, len(adapters))
	for _, a := range adapters {
		bySource[a.Source()] = a
	}

	s := &Service{
		adapters: bySource,
		docStore: docStore,
		linker:   &pipeline.Linker{Documents: docStore, Queries: queryStore},
		limit:    pipeline.DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RunBatch executes one ingestion batch. Configuration-level failures
// (unknown source, missing store) abort early; everything else degrades to
// partial results with counts.
func (s *Service) RunBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	a := s.adapters[req.Criteria.Source]

	records, err := a.Discover(ctx, req.Criteria)
	if err != nil {
		return nil, err
	}
	if req.MaxResults > 0 && len(records) > req.MaxResults {
		records = records[:req.MaxResults]
	}

	slog.Info("discovery completed",
		"source", req.Criteria.Source,
		"records", len(records),
		"workflow_run_id", req.WorkflowRunID)

	limit := s.limit
	if req.ConcurrencyLimit > 0 {
		limit = req.ConcurrencyLimit
	}

	pctx := adapter.PersistContext{
		WorkflowRunID: req.WorkflowRunID,
		StepID:        req.StepID,
		QueryID:       req.QueryID,
	}

	orch := pipeline.NewOrchestrator(s.docStore, limit)
	batch := orch.Run(ctx, a, records, pctx)

	queryID := s.linker.Link(ctx, req.Criteria, pctx, batch)

	s.populate(ctx, req, batch)

	return &BatchResult{
		Documents:       batch.Documents,
		QueryID:         queryID,
		SuccessfulCount: batch.SuccessfulCount,
		FailedCount:     batch.FailedCount,
	}, nil
}

func (s *Service) validateRequest(req BatchRequest) error {
	if s.docStore == nil {
		return apperr.NewServiceUnavailable("document store")
	}
	if !domain.SupportedSources[req.Criteria.Source] {
		return apperr.NewValidation("unknown source: " + string(req.Criteria.Source))
	}
	if _, ok := s.adapters[req.Criteria.Source]; !ok {
		return apperr.NewServiceUnavailable("adapter for source " + string(req.Criteria.Source))
	}
	if req.WorkflowRunID == "" {
		return apperr.NewValidation("missing workflow run id")
	}
	if req.StepID == "" {
		return apperr.NewValidation("missing step id")
	}
	return nil
}

// populate hands the batch to the graph populator. Advisory only: failures
// are logged and never surfaced.
func (s *Service) populate(ctx context.Context, req BatchRequest, batch *pipeline.BatchOutcome) {
	if s.populator == nil || len(batch.Documents) == 0 {
		return
	}

	counts, err := s.populator.Populate(ctx, batch.Documents, populator.Meta{
		WorkflowRunID: req.WorkflowRunID,
		Source:        req.Criteria.Source,
	})
	if err != nil {
		slog.Warn("graph population failed, continuing without it",
			"source", req.Criteria.Source,
			"workflow_run_id", req.WorkflowRunID,
			"error", err)
		return
	}

	slog.Info("graph population completed",
		"source", req.Criteria.Source,
		"entities", counts.Entities,
		"relations", counts.Relations)
}
