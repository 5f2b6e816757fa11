package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/http/response"
	"github.com/yungbote/journey-backend/internal/platform/ctxutil"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/realtime"
	"github.com/yungbote/journey-backend/internal/requestdata"
	"github.com/yungbote/journey-backend/internal/services"
)

type RunHandler struct {
	log    *logger.Logger
	flow   services.FlowService
	sseHub *realtime.SSEHub
}

func NewRunHandler(log *logger.Logger, flow services.FlowService, sseHub *realtime.SSEHub) *RunHandler {
	return &RunHandler{
		log:    log.With("handler", "RunHandler"),
		flow:   flow,
		sseHub: sseHub,
	}
}

// callerAndJourney pulls the authenticated user and the :id route param.
func callerAndJourney(c *gin.Context) (userID, journeyID uuid.UUID, ok bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, uuid.Nil, false
	}
	journeyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return uuid.Nil, uuid.Nil, false
	}
	return rd.UserID, journeyID, true
}

// flushBufferedEvents drains run notifications parked during the request
// and broadcasts them, after the database work has committed.
func flushBufferedEvents(c *gin.Context, hub *realtime.SSEHub) {
	if hub == nil {
		return
	}
	ssd := ctxutil.GetSSEData(c.Request.Context())
	if ssd == nil {
		return
	}
	for _, msg := range ssd.Drain() {
		hub.Broadcast(msg)
	}
}

// GET /api/journeys/:id/run
func (h *RunHandler) EnterRun(c *gin.Context) {
	userID, journeyID, ok := callerAndJourney(c)
	if !ok {
		return
	}
	res, err := h.flow.Enter(c.Request.Context(), userID, journeyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	flushBufferedEvents(c, h.sseHub)
	response.RespondOK(c, res)
}

// POST /api/journeys/:id/run/restart
func (h *RunHandler) RestartRun(c *gin.Context) {
	userID, journeyID, ok := callerAndJourney(c)
	if !ok {
		return
	}
	res, err := h.flow.Restart(c.Request.Context(), userID, journeyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	flushBufferedEvents(c, h.sseHub)
	response.RespondOK(c, res)
}

// GET /api/journeys/:id/run/summary
func (h *RunHandler) RunSummary(c *gin.Context) {
	userID, journeyID, ok := callerAndJourney(c)
	if !ok {
		return
	}
	res, err := h.flow.Summary(c.Request.Context(), userID, journeyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}
