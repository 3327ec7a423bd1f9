package populator

import (
	"context"

	"github.com/lexfold/canondoc/internal/domain"
)

// Meta identifies the batch handed to the knowledge-graph populator.
type Meta struct {
	WorkflowRunID string        `json:"workflowRunId"`
	Source        domain.Source `json:"source"`
}

// Counts reports what the populator derived from a batch.
type Counts struct {
	Entities  int `json:"entities"`
	Relations int `json:"relations"`
}

// Populator is the downstream knowledge-graph collaborator. It is always
// invoked best-effort after a batch completes; failures are logged by the
// caller and never fail the pipeline.
type Populator interface {
	Populate(ctx context.Context, docs []domain.Document, meta Meta) (Counts, error)
}

// Noop is used when no graph subsystem is configured.
type Noop struct{}

func (Noop) Populate(ctx context.Context, docs []domain.Document, meta Meta) (Counts, error) {
	return Counts{}, nil
}
