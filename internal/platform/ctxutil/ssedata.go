package ctxutil

import (
	"context"

	"github.com/yungbote/journey-backend/internal/realtime"
)

type sseDataKey struct{}

// SSEData buffers realtime messages produced while a request is being
// handled. Handlers flush the buffer to the hub only after the database
// work has committed, so clients never observe state that rolled back.
type SSEData struct {
	Messages []realtime.SSEMessage
}

// AppendMessage parks msg until the handler drains the buffer.
func (d *SSEData) AppendMessage(msg realtime.SSEMessage) {
	d.Messages = append(d.Messages, msg)
}

// Drain returns the parked messages and empties the buffer, so a second
// flush on the same request delivers nothing twice.
func (d *SSEData) Drain() []realtime.SSEMessage {
	msgs := d.Messages
	d.Messages = nil
	return msgs
}

func WithSSEData(ctx context.Context) context.Context {
	return context.WithValue(ctx, sseDataKey{}, &SSEData{})
}

func GetSSEData(ctx context.Context) *SSEData {
	if ssd, ok := ctx.Value(sseDataKey{}).(*SSEData); ok {
		return ssd
	}
	return nil
}
