package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courseagent/backend/internal/http/response"
	"github.com/courseagent/backend/internal/services"
)

type IngestHandler struct {
	ingest services.IngestService
}

func NewIngestHandler(ingest services.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

type ingestCatalogReq struct {
	BaseURL string                  `json:"base_url"`
	Entries []services.CatalogEntry `json:"entries"`
}

// POST /api/ingest/catalog
func (h *IngestHandler) IngestCatalog(c *gin.Context) {
	var req ingestCatalogReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(req.Entries) == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("entries are required"))
		return
	}

	ingested, err := h.ingest.IngestCatalog(c.Request.Context(), req.BaseURL, req.Entries)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ingested": ingested})
}
