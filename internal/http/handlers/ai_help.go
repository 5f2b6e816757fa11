package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/journey-backend/internal/http/response"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/services"
)

type AIHelpHandler struct {
	log    *logger.Logger
	aiHelp services.AIHelpService
}

func NewAIHelpHandler(log *logger.Logger, aiHelp services.AIHelpService) *AIHelpHandler {
	return &AIHelpHandler{
		log:    log.With("handler", "AIHelpHandler"),
		aiHelp: aiHelp,
	}
}

// POST /api/ai/remediation
func (h *AIHelpHandler) Remediation(c *gin.Context) {
	var req services.RemediationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.aiHelp.Remediation(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/ai/explain-term
func (h *AIHelpHandler) ExplainTerm(c *gin.Context) {
	var req services.ExplainTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.aiHelp.ExplainTerm(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}
