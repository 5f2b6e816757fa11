package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/http/response"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/realtime"
	"github.com/yungbote/journey-backend/internal/requestdata"
)

// RealtimeHandler owns the SSE connections for run progress events. A user
// may hold several open streams (one per tab); subscribe and unsubscribe
// apply to all of them.
type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu      sync.RWMutex
	clients map[uuid.UUID]map[*realtime.SSEClient]struct{}
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]map[*realtime.SSEClient]struct{}),
	}
}

func (h *RealtimeHandler) caller(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func (h *RealtimeHandler) track(userID uuid.UUID, client *realtime.SSEClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[userID]
	if !ok {
		set = make(map[*realtime.SSEClient]struct{})
		h.clients[userID] = set
	}
	set[client] = struct{}{}
}

func (h *RealtimeHandler) untrack(userID uuid.UUID, client *realtime.SSEClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[userID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.clients, userID)
		}
	}
}

func (h *RealtimeHandler) clientsFor(userID uuid.UUID) []*realtime.SSEClient {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.clients[userID]
	out := make([]*realtime.SSEClient, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// GET /api/sse/stream
func (h *RealtimeHandler) Stream(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}

	client := h.hub.NewSSEClient(userID)
	h.track(userID, client)

	// Every stream hears the user's own channel without an explicit subscribe.
	h.hub.AddChannel(client, realtime.UserChannel(userID))
	h.log.Info("SSE stream open", "user_id", userID, "client_id", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.untrack(userID, client)
	h.hub.CloseClient(client)
	h.log.Info("SSE stream closed", "user_id", userID, "client_id", client.ID)
}

type sseChannelReq struct {
	Channel string `json:"channel"`
}

// POST /api/sse/subscribe
func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req sseChannelReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_channel", nil)
		return
	}
	clients := h.clientsFor(userID)
	if len(clients) == 0 {
		response.RespondError(c, http.StatusConflict, "no_active_stream", nil)
		return
	}
	for _, client := range clients {
		h.hub.AddChannel(client, req.Channel)
	}
	response.RespondOK(c, gin.H{"subscribed": req.Channel})
}

// POST /api/sse/unsubscribe
func (h *RealtimeHandler) Unsubscribe(c *gin.Context) {
	userID, ok := h.caller(c)
	if !ok {
		return
	}
	var req sseChannelReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_channel", nil)
		return
	}
	clients := h.clientsFor(userID)
	if len(clients) == 0 {
		response.RespondError(c, http.StatusConflict, "no_active_stream", nil)
		return
	}
	for _, client := range clients {
		h.hub.RemoveChannel(client, req.Channel)
	}
	response.RespondOK(c, gin.H{"unsubscribed": req.Channel})
}
