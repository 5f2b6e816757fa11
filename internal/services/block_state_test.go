package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/domain/journeyerr"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

// fakeStateRows implements repos.BlockStateRepo over a slice. Insert
// mirrors the live-rows unique index on (run_id, block_id): a second
// insert for the same pair is silently dropped.
type fakeStateRows struct {
	rows             []*types.BlockState
	insertCalls      int
	updateCalls      int
	deleteByRunCalls int
	lastDeletedRun   uuid.UUID
	lastUpdates      map[string]any
}

func (f *fakeStateRows) byID(id uuid.UUID) *types.BlockState {
	for _, r := range f.rows {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (f *fakeStateRows) byKey(runID uuid.UUID, blockID string) *types.BlockState {
	for _, r := range f.rows {
		if r.RunID == runID && r.BlockID == blockID {
			return r
		}
	}
	return nil
}

func (f *fakeStateRows) Get(_ dbctx.Context, runID uuid.UUID, blockID string) (*types.BlockState, error) {
	r := f.byKey(runID, blockID)
	if r == nil {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStateRows) ListByRun(_ dbctx.Context, runID uuid.UUID) ([]*types.BlockState, error) {
	var out []*types.BlockState
	for _, r := range f.rows {
		if r.RunID == runID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStateRows) Insert(_ dbctx.Context, row *types.BlockState) error {
	f.insertCalls++
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if f.byKey(row.RunID, row.BlockID) != nil {
		return nil
	}
	cp := *row
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeStateRows) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]any) error {
	f.updateCalls++
	f.lastUpdates = updates
	r := f.byID(id)
	if r == nil {
		return nil
	}
	for k, v := range updates {
		switch k {
		case "status":
			r.Status = v.(types.BlockStatus)
		case "attempts_count":
			r.AttemptsCount = v.(int)
		case "time_spent_seconds":
			r.TimeSpentSeconds = v.(int)
		case "completed_at":
			ts := v.(time.Time)
			r.CompletedAt = &ts
		case "entered_at":
			if v == nil {
				r.EnteredAt = nil
			} else {
				ts := v.(time.Time)
				r.EnteredAt = &ts
			}
		case "started_at":
			ts := v.(time.Time)
			r.StartedAt = &ts
		case "score":
			sc := v.(float64)
			r.Score = &sc
		case "weak_topics":
			r.WeakTopics = v.(datatypes.JSON)
		case "output_payload":
			r.OutputPayload = v.(datatypes.JSON)
		}
	}
	return nil
}

func (f *fakeStateRows) DeleteByRun(_ dbctx.Context, runID uuid.UUID) error {
	f.deleteByRunCalls++
	f.lastDeletedRun = runID
	var kept []*types.BlockState
	for _, r := range f.rows {
		if r.RunID != runID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

func newStateWorld(t *testing.T) (*fakeStateRows, BlockStateService) {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	states := &fakeStateRows{}
	return states, NewBlockStateService(nil, log, states)
}

func TestBlockStateLoadOrCreateInsertsFresh(t *testing.T) {
	states, svc := newStateWorld(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	runID := uuid.New()

	state, err := svc.LoadOrCreate(dbc, runID, "intro")
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if state.Status != types.BlockInProgress {
		t.Fatalf("status: want=%q got=%q", types.BlockInProgress, state.Status)
	}
	if state.EnteredAt == nil {
		t.Fatalf("entered_at: want set got=nil")
	}
	if state.StartedAt == nil {
		t.Fatalf("started_at: want set got=nil")
	}
	if state.AttemptsCount != 0 {
		t.Fatalf("attempts: want=0 got=%d", state.AttemptsCount)
	}
	if states.insertCalls != 1 {
		t.Fatalf("insert call count: want=1 got=%d", states.insertCalls)
	}
	if states.updateCalls != 0 {
		t.Fatalf("update call count: want=0 got=%d", states.updateCalls)
	}
	if len(states.rows) != 1 {
		t.Fatalf("row count: want=1 got=%d", len(states.rows))
	}
}

// Re-entering a block that already has a row re-opens it without touching
// the accumulated attempts and time.
func TestBlockStateLoadOrCreateReopensExisting(t *testing.T) {
	states, svc := newStateWorld(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	runID := uuid.New()
	started := time.Now().UTC().Add(-time.Hour)
	seed := &types.BlockState{
		ID:               uuid.New(),
		RunID:            runID,
		BlockID:          "quiz",
		Status:           types.BlockCompleted,
		AttemptsCount:    2,
		TimeSpentSeconds: 55,
		StartedAt:        &started,
	}
	states.rows = append(states.rows, seed)

	state, err := svc.LoadOrCreate(dbc, runID, "quiz")
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if state.ID != seed.ID {
		t.Fatalf("state id: want=%s got=%s", seed.ID, state.ID)
	}
	if state.Status != types.BlockInProgress {
		t.Fatalf("status: want=%q got=%q", types.BlockInProgress, state.Status)
	}
	if state.EnteredAt == nil {
		t.Fatalf("entered_at: want set got=nil")
	}
	if state.AttemptsCount != 2 || state.TimeSpentSeconds != 55 {
		t.Fatalf("accumulators touched: attempts=%d time=%d", state.AttemptsCount, state.TimeSpentSeconds)
	}
	if len(states.rows) != 1 {
		t.Fatalf("row count: want=1 got=%d", len(states.rows))
	}
	if _, ok := states.lastUpdates["started_at"]; ok {
		t.Fatalf("started_at rewritten on re-entry: %v", states.lastUpdates)
	}
}

func TestBlockStateLoadOrCreateBackfillsStartedAt(t *testing.T) {
	states, svc := newStateWorld(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	runID := uuid.New()
	seed := &types.BlockState{
		ID:      uuid.New(),
		RunID:   runID,
		BlockID: "read-1",
		Status:  types.BlockNotStarted,
	}
	states.rows = append(states.rows, seed)

	state, err := svc.LoadOrCreate(dbc, runID, "read-1")
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if state.StartedAt == nil {
		t.Fatalf("started_at: want backfilled got=nil")
	}
}

func TestBlockStateLoadOrCreateValidation(t *testing.T) {
	_, svc := newStateWorld(t)
	dbc := dbctx.Context{Ctx: context.Background()}

	if _, err := svc.LoadOrCreate(dbc, uuid.Nil, "intro"); !journeyerr.IsCode(err, journeyerr.CodeValidation) {
		t.Fatalf("nil run: want validation got=%v", err)
	}
	if _, err := svc.LoadOrCreate(dbc, uuid.New(), ""); !journeyerr.IsCode(err, journeyerr.CodeValidation) {
		t.Fatalf("empty block: want validation got=%v", err)
	}
}

func TestBlockStateCompleteAccumulates(t *testing.T) {
	states, svc := newStateWorld(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	runID := uuid.New()
	entered := time.Now().UTC().Add(-30 * time.Second)
	seed := &types.BlockState{
		ID:               uuid.New(),
		RunID:            runID,
		BlockID:          "quiz",
		Status:           types.BlockInProgress,
		AttemptsCount:    1,
		TimeSpentSeconds: 40,
		EnteredAt:        &entered,
		StartedAt:        &entered,
	}
	states.rows = append(states.rows, seed)

	score := 80.0
	updated, err := svc.Complete(dbc, runID, "quiz", BlockOutcome{
		Score:      &score,
		WeakTopics: []string{"loops"},
		Output:     map[string]any{"answers": map[string]any{"q1": 0}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if updated.Status != types.BlockCompleted {
		t.Fatalf("status: want=%q got=%q", types.BlockCompleted, updated.Status)
	}
	if updated.AttemptsCount != 2 {
		t.Fatalf("attempts: want=2 got=%d", updated.AttemptsCount)
	}
	if updated.TimeSpentSeconds != 70 {
		t.Fatalf("time spent: want=70 got=%d", updated.TimeSpentSeconds)
	}
	if updated.Score == nil || *updated.Score != 80 {
		t.Fatalf("score: want=80 got=%v", updated.Score)
	}
	if updated.CompletedAt == nil {
		t.Fatalf("completed_at: want set got=nil")
	}
	if updated.EnteredAt != nil {
		t.Fatalf("entered_at: want consumed got=%v", updated.EnteredAt)
	}
	var topics []string
	if err := json.Unmarshal(updated.WeakTopics, &topics); err != nil {
		t.Fatalf("decode weak topics: %v", err)
	}
	if len(topics) != 1 || topics[0] != "loops" {
		t.Fatalf("weak topics: want=[loops] got=%v", topics)
	}
	var payload map[string]any
	if err := json.Unmarshal(updated.OutputPayload, &payload); err != nil {
		t.Fatalf("decode output payload: %v", err)
	}
	if _, ok := payload["answers"]; !ok {
		t.Fatalf("output payload missing answers: %v", payload)
	}
}

// Completion with no prior entry still records the attempt, with a zero
// elapsed interval.
func TestBlockStateCompleteWithoutEntry(t *testing.T) {
	states, svc := newStateWorld(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	runID := uuid.New()

	updated, err := svc.Complete(dbc, runID, "read-1", BlockOutcome{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if updated.Status != types.BlockCompleted {
		t.Fatalf("status: want=%q got=%q", types.BlockCompleted, updated.Status)
	}
	if updated.AttemptsCount != 1 {
		t.Fatalf("attempts: want=1 got=%d", updated.AttemptsCount)
	}
	if updated.TimeSpentSeconds != 0 {
		t.Fatalf("time spent: want=0 got=%d", updated.TimeSpentSeconds)
	}
	if updated.Score != nil {
		t.Fatalf("score: want=nil got=%v", updated.Score)
	}
	if states.insertCalls != 1 {
		t.Fatalf("insert call count: want=1 got=%d", states.insertCalls)
	}
}

// A client clock ahead of the server must not subtract time.
func TestBlockStateCompleteClampsFutureEntry(t *testing.T) {
	states, svc := newStateWorld(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	runID := uuid.New()
	entered := time.Now().UTC().Add(45 * time.Second)
	seed := &types.BlockState{
		ID:               uuid.New(),
		RunID:            runID,
		BlockID:          "read-1",
		Status:           types.BlockInProgress,
		TimeSpentSeconds: 40,
		EnteredAt:        &entered,
		StartedAt:        &entered,
	}
	states.rows = append(states.rows, seed)

	updated, err := svc.Complete(dbc, runID, "read-1", BlockOutcome{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if updated.TimeSpentSeconds != 40 {
		t.Fatalf("time spent: want=40 got=%d", updated.TimeSpentSeconds)
	}
}

func TestBlockStateCompleteValidation(t *testing.T) {
	_, svc := newStateWorld(t)
	dbc := dbctx.Context{Ctx: context.Background()}

	if _, err := svc.Complete(dbc, uuid.Nil, "intro", BlockOutcome{}); !journeyerr.IsCode(err, journeyerr.CodeValidation) {
		t.Fatalf("nil run: want validation got=%v", err)
	}
	if _, err := svc.Complete(dbc, uuid.New(), "", BlockOutcome{}); !journeyerr.IsCode(err, journeyerr.CodeValidation) {
		t.Fatalf("empty block: want validation got=%v", err)
	}
}
