package realtime

import "github.com/google/uuid"

// outboundBuffer bounds how many undelivered events a client may queue
// before Broadcast starts dropping for it.
const outboundBuffer = 10

// SSEClient is one open event-stream connection. A browser tab holds one
// client; the Channels set decides which journey and user events it hears.
type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
}

func newSSEClient(userID uuid.UUID) *SSEClient {
	return &SSEClient{
		ID:       uuid.New(),
		UserID:   userID,
		Channels: make(map[string]bool),
		Outbound: make(chan SSEMessage, outboundBuffer),
		done:     make(chan struct{}),
	}
}

// send queues msg without blocking. It reports false when the client's
// buffer is full and the message was dropped.
func (c *SSEClient) send(msg SSEMessage) bool {
	select {
	case c.Outbound <- msg:
		return true
	default:
		return false
	}
}
