package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := RunChannel(uuid.New())

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, channel)

	first := SSEMessage{Channel: channel, Event: SSEEventBlockEntered, Data: map[string]any{"seq": 1}}
	second := SSEMessage{Channel: channel, Event: SSEEventBlockCompleted, Data: map[string]any{"seq": 2}}
	hub.Broadcast(first)
	hub.Broadcast(second)

	gotFirst := recvMessage(t, clientA.Outbound, time.Second)
	gotSecond := recvMessage(t, clientA.Outbound, time.Second)
	if gotFirst.Event != SSEEventBlockEntered {
		t.Fatalf("first event: want=%s got=%s", SSEEventBlockEntered, gotFirst.Event)
	}
	if gotSecond.Event != SSEEventBlockCompleted {
		t.Fatalf("second event: want=%s got=%s", SSEEventBlockCompleted, gotSecond.Event)
	}

	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, channel)
	reconnect := SSEMessage{Channel: channel, Event: SSEEventRunFinished, Data: map[string]any{"seq": 3}}
	hub.Broadcast(reconnect)
	gotReconnect := recvMessage(t, clientB.Outbound, time.Second)
	if gotReconnect.Event != SSEEventRunFinished {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventRunFinished, gotReconnect.Event)
	}
}

func TestSSEHubChannelIsolation(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	runA := RunChannel(uuid.New())
	runB := RunChannel(uuid.New())

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, runA)
	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, runB)

	hub.Broadcast(SSEMessage{Channel: runA, Event: SSEEventBlockEntered})

	got := recvMessage(t, clientA.Outbound, time.Second)
	if got.Event != SSEEventBlockEntered {
		t.Fatalf("clientA event: want=%s got=%s", SSEEventBlockEntered, got.Event)
	}
	select {
	case msg := <-clientB.Outbound:
		t.Fatalf("clientB should see nothing, got %v", msg.Event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSSEHubReplayedEventsAreDelivered(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := UserChannel(uuid.New())
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, channel)

	dup := SSEMessage{Channel: channel, Event: SSEEventBlockCompleted, Data: map[string]any{"score": 67}}
	hub.Broadcast(dup)
	hub.Broadcast(dup)

	gotOne := recvMessage(t, client.Outbound, time.Second)
	gotTwo := recvMessage(t, client.Outbound, time.Second)
	if gotOne.Event != SSEEventBlockCompleted || gotTwo.Event != SSEEventBlockCompleted {
		t.Fatalf("expected both broadcasts delivered, got=%s and %s", gotOne.Event, gotTwo.Event)
	}
}
