package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexfold/canondoc/internal/adapter"
	"github.com/lexfold/canondoc/internal/domain"
)

// Stage names the post-discovery pipeline stages.
type Stage string

const (
	StageAcquire  Stage = "acquire"
	StageExtract  Stage = "extract"
	StageMap      Stage = "map"
	StageValidate Stage = "validate"
	StagePersist  Stage = "persist"
	StageFallback Stage = "fallback"
)

// Outcome is the terminal state of one record. Batch counts are derived by
// tallying outcomes, never by incrementing a running counter.
type Outcome string

const (
	// OutcomePersistedFull: the full pipeline succeeded.
	OutcomePersistedFull Outcome = "persisted_full"
	// OutcomePersistedMetadataOnly: a stage failed but fallback persistence
	// preserved a metadata-only document.
	OutcomePersistedMetadataOnly Outcome = "persisted_metadata_only"
	// OutcomeRejected: validation refused the draft; no fallback attempted.
	OutcomeRejected Outcome = "rejected"
	// OutcomeDropped: both the primary path and fallback failed.
	OutcomeDropped Outcome = "dropped"
)

// Succeeded reports whether the record ended with a stored document.
func (o Outcome) Succeeded() bool {
	return o == OutcomePersistedFull || o == OutcomePersistedMetadataOnly
}

// RecordResult is the per-record result of one orchestrator run.
type RecordResult struct {
	Record         domain.DiscoveryRecord
	Outcome        Outcome
	DocumentID     uuid.UUID
	Document       *domain.Document
	Extensions     *adapter.Extensions
	StageDurations map[Stage]time.Duration
	Err            error
}

// BatchOutcome aggregates a whole orchestrator run.
type BatchOutcome struct {
	Results         []RecordResult
	Documents       []domain.Document
	SuccessfulCount int
	FailedCount     int
}

func tally(results []RecordResult) *BatchOutcome {
	out := &BatchOutcome{Results: results}
	for _, res := range results {
		if res.Outcome.Succeeded() {
			out.SuccessfulCount++
			if res.Document != nil {
				out.Documents = append(out.Documents, *res.Document)
			}
		} else {
			out.FailedCount++
		}
	}
	return out
}
