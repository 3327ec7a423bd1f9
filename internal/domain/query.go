package domain

import (
	"time"

	"github.com/google/uuid"
)

// DocumentQuery is the logical grouping for one search session. Documents
// persisted during the session are stamped with its ID, retroactively when
// the query is created after they were stored.
type DocumentQuery struct {
	ID            uuid.UUID      `json:"id"`
	Source        Source         `json:"source"`
	Criteria      SearchCriteria `json:"criteria"`
	WorkflowRunID string         `json:"workflowRunId"`
	StepID        string         `json:"stepId"`
	CreatedAt     time.Time      `json:"createdAt"`
}
