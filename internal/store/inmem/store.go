package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/store"
)

type key struct {
	source   domain.Source
	sourceID string
}

// Store keeps canonical documents in memory. Used by tests and local runs.
type Store struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]domain.Document
	byKey   map[key]uuid.UUID
	queries map[uuid.UUID]domain.DocumentQuery
}

func NewStore() *Store {
	return &Store{
		byID:    make(map[uuid.UUID]domain.Document),
		byKey:   make(map[key]uuid.UUID),
		queries: make(map[uuid.UUID]domain.DocumentQuery),
	}
}

func (s *Store) UpsertBySourceID(ctx context.Context, draft domain.Draft) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{source: draft.Source, sourceID: draft.SourceID}
	now := time.Now()

	if id, ok := s.byKey[k]; ok {
		existing := s.byID[id]
		existing.Draft = draft
		existing.UpdatedAt = now
		s.byID[id] = existing
		return id, nil
	}

	id := uuid.New()
	s.byKey[k] = id
	s.byID[id] = domain.Document{
		ID:        id,
		Draft:     draft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return id, nil
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (s *Store) BulkUpdateEnrichment(ctx context.Context, updates []store.EnrichmentUpdate) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	touched := 0
	for _, u := range updates {
		for id, doc := range s.byID {
			if doc.Enrichment.WorkflowRunID != u.Match.WorkflowRunID || doc.Enrichment.StepID != u.Match.StepID {
				continue
			}
			qid := u.Set.QueryID
			doc.Enrichment.QueryID = &qid
			doc.UpdatedAt = time.Now()
			s.byID[id] = doc
			touched++
		}
	}
	return touched, nil
}

func (s *Store) CreateQuery(ctx context.Context, q domain.DocumentQuery) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	s.queries[q.ID] = q
	return q.ID, nil
}

// Len reports the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
