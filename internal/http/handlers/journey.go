package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/http/response"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/services"
)

type JourneyHandler struct {
	log      *logger.Logger
	journeys services.JourneyService
}

func NewJourneyHandler(log *logger.Logger, journeys services.JourneyService) *JourneyHandler {
	return &JourneyHandler{
		log:      log.With("handler", "JourneyHandler"),
		journeys: journeys,
	}
}

// GET /api/journeys
func (h *JourneyHandler) ListJourneys(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	rows, err := h.journeys.ListPublished(dbc)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"journeys": rows})
}

// GET /api/journeys/:id
func (h *JourneyHandler) GetJourney(c *gin.Context) {
	journeyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	j, err := h.journeys.GetByID(dbc, journeyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"journey": j})
}

// GET /api/journeys/:id/next-module
func (h *JourneyHandler) GetNextModule(c *gin.Context) {
	journeyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	current, err := h.journeys.GetByID(dbc, journeyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	next, err := h.journeys.NextPublishedInTrack(dbc, current)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if next == nil {
		response.RespondOK(c, gin.H{"next_module": nil})
		return
	}
	response.RespondOK(c, gin.H{"next_module": services.NextModuleRef{
		VersionID: next.ID,
		Title:     next.Title,
	}})
}
