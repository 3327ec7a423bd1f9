package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexfold/canondoc/internal/domain"
)

func (s *Store) CreateQuery(ctx context.Context, q domain.DocumentQuery) (uuid.UUID, error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}

	criteriaJSON, err := json.Marshal(q.Criteria)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal query criteria: %w", err)
	}

	cmd := `
        INSERT INTO document_queries (id, source, criteria, workflow_run_id, step_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id;
    `
	var id uuid.UUID
	err = s.db.QueryRow(ctx, cmd, q.ID, q.Source, criteriaJSON, q.WorkflowRunID, q.StepID, q.CreatedAt).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert document query: %w", err)
	}

	return id, nil
}
