package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/courseagent/backend/internal/http/response"
	"github.com/courseagent/backend/internal/services"
)

type LessonHandler struct {
	ingest     services.IngestService
	transcribe services.TranscriptionService
}

func NewLessonHandler(ingest services.IngestService, transcribe services.TranscriptionService) *LessonHandler {
	return &LessonHandler{ingest: ingest, transcribe: transcribe}
}

type indexHTMLReq struct {
	HTMLText string `json:"html_text"`
}

// POST /api/lessons/:id/index_html
func (h *LessonHandler) IndexHTML(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_lesson_id", err)
		return
	}
	var req indexHTMLReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.HTMLText == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("html_text is required"))
		return
	}

	chunks, err := h.ingest.IndexHTML(c.Request.Context(), lessonID, req.HTMLText)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"indexed_chunks": chunks})
}

// POST /api/lessons/:id/transcribe
func (h *LessonHandler) Transcribe(c *gin.Context) {
	if h.transcribe == nil {
		response.RespondError(c, http.StatusServiceUnavailable, "transcription_unavailable",
			fmt.Errorf("transcription is not configured"))
		return
	}
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_lesson_id", err)
		return
	}

	chunks, err := h.transcribe.TranscribeLesson(c.Request.Context(), lessonID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"transcribed": true, "chunks": chunks})
}
