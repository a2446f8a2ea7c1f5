package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/courseagent/backend/internal/http/response"
	"github.com/courseagent/backend/internal/services"
)

type ChatHandler struct {
	answers services.AnswerService
}

func NewChatHandler(answers services.AnswerService) *ChatHandler {
	return &ChatHandler{answers: answers}
}

type chatReq struct {
	Prompt string `json:"prompt"`
}

// POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("prompt is required"))
		return
	}

	answer, err := h.answers.Answer(c.Request.Context(), req.Prompt)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, answer)
}
