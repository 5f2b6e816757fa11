package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/platform/ctxutil"
	"github.com/yungbote/journey-backend/internal/realtime"
)

// RunNotifier broadcasts run lifecycle events to the user's and the run's
// SSE channels. When the request context carries an SSE buffer the message
// is parked there instead, so nothing reaches clients before the enclosing
// transaction commits.
type RunNotifier interface {
	RunStarted(ctx context.Context, userID uuid.UUID, run *types.Run)
	BlockEntered(ctx context.Context, userID uuid.UUID, run *types.Run, blockID string)
	BlockCompleted(ctx context.Context, userID uuid.UUID, run *types.Run, state *types.BlockState)
	RunFinished(ctx context.Context, userID uuid.UUID, run *types.Run, stats RunStats)
	RunRestarted(ctx context.Context, userID uuid.UUID, run *types.Run)
}

type runNotifier struct {
	emit SSEEmitter
}

func NewRunNotifier(emit SSEEmitter) RunNotifier {
	return &runNotifier{emit: emit}
}

func (n *runNotifier) send(ctx context.Context, userID uuid.UUID, runID uuid.UUID, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	msgs := []realtime.SSEMessage{
		{Channel: realtime.UserChannel(userID), Event: event, Data: data},
	}
	if runID != uuid.Nil {
		msgs = append(msgs, realtime.SSEMessage{Channel: realtime.RunChannel(runID), Event: event, Data: data})
	}
	if ssd := ctxutil.GetSSEData(ctx); ssd != nil {
		for _, m := range msgs {
			ssd.AppendMessage(m)
		}
		return
	}
	for _, m := range msgs {
		n.emit.Emit(ctx, m)
	}
}

func (n *runNotifier) RunStarted(ctx context.Context, userID uuid.UUID, run *types.Run) {
	if run == nil {
		return
	}
	n.send(ctx, userID, run.ID, realtime.SSEEventRunStarted, map[string]any{"run": run})
}

func (n *runNotifier) BlockEntered(ctx context.Context, userID uuid.UUID, run *types.Run, blockID string) {
	if run == nil || blockID == "" {
		return
	}
	n.send(ctx, userID, run.ID, realtime.SSEEventBlockEntered, map[string]any{
		"run_id":   run.ID,
		"block_id": blockID,
	})
}

func (n *runNotifier) BlockCompleted(ctx context.Context, userID uuid.UUID, run *types.Run, state *types.BlockState) {
	if run == nil || state == nil {
		return
	}
	n.send(ctx, userID, run.ID, realtime.SSEEventBlockCompleted, map[string]any{
		"run_id":      run.ID,
		"block_id":    state.BlockID,
		"block_state": state,
	})
}

func (n *runNotifier) RunFinished(ctx context.Context, userID uuid.UUID, run *types.Run, stats RunStats) {
	if run == nil {
		return
	}
	n.send(ctx, userID, run.ID, realtime.SSEEventRunFinished, map[string]any{
		"run_id": run.ID,
		"stats":  stats,
	})
}

func (n *runNotifier) RunRestarted(ctx context.Context, userID uuid.UUID, run *types.Run) {
	if run == nil {
		return
	}
	n.send(ctx, userID, run.ID, realtime.SSEEventRunRestarted, map[string]any{
		"run_id":           run.ID,
		"current_block_id": run.CurrentBlockID,
	})
}
