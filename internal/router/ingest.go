package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lexfold/canondoc/internal/apperr"
	"github.com/lexfold/canondoc/internal/ingest"
	"github.com/lexfold/canondoc/internal/store"
)

// IngestRouter exposes the batch ingestion operation and document lookup.
type IngestRouter struct {
	e       *echo.Echo
	service *ingest.Service
	docs    store.Store
}

func NewIngestRouter(e *echo.Echo, service *ingest.Service, docs store.Store) *IngestRouter {
	return &IngestRouter{
		e:       e,
		service: service,
		docs:    docs,
	}
}

func (r *IngestRouter) Bind() {
	r.e.POST("/api/v1/ingest/batches", r.runBatchHandler)
	r.e.GET("/api/v1/documents/:id", r.getDocumentHandler)
}

func (r *IngestRouter) runBatchHandler(c echo.Context) error {
	var req ingest.BatchRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("malformed batch request", err)
	}

	res, err := r.service.RunBatch(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, res)
}

func (r *IngestRouter) getDocumentHandler(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NewValidationWrap("document id must be a uuid", err)
	}

	doc, err := r.docs.FindByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if doc == nil {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}

	return c.JSON(http.StatusOK, doc)
}
