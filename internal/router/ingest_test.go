package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfold/canondoc/internal/adapter"
	"github.com/lexfold/canondoc/internal/apperr"
	"github.com/lexfold/canondoc/internal/domain"
	"github.com/lexfold/canondoc/internal/ingest"
	"github.com/lexfold/canondoc/internal/store/inmem"
)

type staticAdapter struct {
	adapter.Persister
}

func (staticAdapter) Source() domain.Source { return domain.SourceRegistry }

func (staticAdapter) Discover(ctx context.Context, criteria domain.SearchCriteria) ([]domain.DiscoveryRecord, error) {
	return []domain.DiscoveryRecord{{Format: domain.FormatRegistryEntry, ID: "r-1", Title: "Water Act"}}, nil
}

func (staticAdapter) Acquire(ctx context.Context, rec domain.DiscoveryRecord) (*adapter.RawArtifact, error) {
	return &adapter.RawArtifact{Record: rec, Body: []byte("full text")}, nil
}

func (staticAdapter) Extract(ctx context.Context, art *adapter.RawArtifact) (*adapter.Content, error) {
	return &adapter.Content{Record: art.Record, Title: art.Record.Title, FullText: string(art.Body)}, nil
}

func (staticAdapter) Map(rec domain.DiscoveryRecord, content *adapter.Content) (*domain.Draft, error) {
	return &domain.Draft{Source: domain.SourceRegistry, SourceID: rec.ID, Title: content.Title, FullText: content.FullText}, nil
}

func (staticAdapter) Extensions(content *adapter.Content) *adapter.Extensions {
	return &adapter.Extensions{}
}

func (staticAdapter) Validate(draft *domain.Draft) error { return adapter.ValidateDraft(draft) }

func setupRouter(t *testing.T) (*echo.Echo, *inmem.Store) {
	t.Helper()
	docs := inmem.NewStore()
	svc := ingest.NewService(docs, docs, []adapter.Adapter{staticAdapter{Persister: adapter.Persister{Store: docs}}})

	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	NewIngestRouter(e, svc, docs).Bind()
	return e, docs
}

func TestRunBatchHandler(t *testing.T) {
	e, docs := setupRouter(t)

	body := `{"criteria":{"source":"registry","text":"water"},"workflowRunId":"run-1","stepId":"step-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/batches", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res ingest.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.SuccessfulCount)
	assert.Equal(t, 0, res.FailedCount)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, 1, docs.Len())
}

func TestRunBatchHandlerRejectsUnknownSource(t *testing.T) {
	e, _ := setupRouter(t)

	body := `{"criteria":{"source":"carrier-pigeon"},"workflowRunId":"run-1","stepId":"step-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/batches", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDocumentHandler(t *testing.T) {
	e, docs := setupRouter(t)

	id, err := docs.UpsertBySourceID(context.Background(), domain.Draft{
		Source:   domain.SourceRegistry,
		SourceID: "r-2",
		Title:    "Soil Decree",
		FullText: "decree body",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+id.String(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var doc domain.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "Soil Decree", doc.Title)
}

func TestGetDocumentHandlerNotFound(t *testing.T) {
	e, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDocumentHandlerBadID(t *testing.T) {
	e, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
