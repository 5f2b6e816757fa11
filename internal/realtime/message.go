package realtime

import "github.com/google/uuid"

// SSEEvent names a journey lifecycle event pushed to subscribed clients.
type SSEEvent string

const (
	SSEEventRunStarted     SSEEvent = "RunStarted"
	SSEEventBlockEntered   SSEEvent = "BlockEntered"
	SSEEventBlockCompleted SSEEvent = "BlockCompleted"
	SSEEventRunFinished    SSEEvent = "RunFinished"
	SSEEventRunRestarted   SSEEvent = "RunRestarted"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the per-user feed carrying every run event of that user.
func UserChannel(userID uuid.UUID) string { return "user:" + userID.String() }

// RunChannel carries events of a single run.
func RunChannel(runID uuid.UUID) string { return "run:" + runID.String() }
