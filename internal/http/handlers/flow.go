package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/http/response"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/realtime"
	"github.com/yungbote/journey-backend/internal/services"
)

type FlowHandler struct {
	log    *logger.Logger
	flow   services.FlowService
	sseHub *realtime.SSEHub
}

func NewFlowHandler(log *logger.Logger, flow services.FlowService, sseHub *realtime.SSEHub) *FlowHandler {
	return &FlowHandler{
		log:    log.With("handler", "FlowHandler"),
		flow:   flow,
		sseHub: sseHub,
	}
}

type completeBlockReq struct {
	EventID    *uuid.UUID     `json:"event_id"`
	Output     map[string]any `json:"output"`
	Score      *float64       `json:"score"`
	WeakTopics []string       `json:"weak_topics"`
	Answers    map[string]int `json:"answers"`
}

// POST /api/journeys/:id/run/blocks/:blockId/complete
func (h *FlowHandler) CompleteBlock(c *gin.Context) {
	userID, journeyID, ok := callerAndJourney(c)
	if !ok {
		return
	}
	blockID := c.Param("blockId")
	if blockID == "" {
		response.RespondError(c, http.StatusBadRequest, "validation", nil)
		return
	}

	var req completeBlockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	event := services.CompletionEvent{
		BlockID:    blockID,
		Output:     req.Output,
		Score:      req.Score,
		WeakTopics: req.WeakTopics,
		Answers:    req.Answers,
	}
	if req.EventID != nil {
		event.EventID = *req.EventID
	}

	res, err := h.flow.Complete(c.Request.Context(), userID, journeyID, event)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	flushBufferedEvents(c, h.sseHub)
	response.RespondOK(c, res)
}
