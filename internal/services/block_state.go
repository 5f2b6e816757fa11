package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/data/repos"
	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/domain/journeyerr"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

// BlockOutcome carries what a completion event reports about the block.
// Score and WeakTopics are authoritative only for non-quiz blocks; quizzes
// are rescored server-side before this is applied.
type BlockOutcome struct {
	Score      *float64
	WeakTopics []string
	Output     map[string]any
}

// BlockStateService owns the per-(run, block) attempt record. Attempts and
// time accumulate across revisits; rows disappear only on run restart.
type BlockStateService interface {
	Get(dbc dbctx.Context, runID uuid.UUID, blockID string) (*types.BlockState, error)
	ListByRun(dbc dbctx.Context, runID uuid.UUID) ([]*types.BlockState, error)
	// LoadOrCreate returns the live state for the block, inserting a fresh
	// row when none exists, and marks it entered: status in_progress,
	// entered_at stamped. Safe under concurrent re-entry.
	LoadOrCreate(dbc dbctx.Context, runID uuid.UUID, blockID string) (*types.BlockState, error)
	// Complete consumes the open entry interval: attempts_count+1,
	// time_spent_seconds += now-entered_at, status completed, outcome
	// persisted. Returns the updated row.
	Complete(dbc dbctx.Context, runID uuid.UUID, blockID string, outcome BlockOutcome) (*types.BlockState, error)
}

type blockStateService struct {
	db     *gorm.DB
	log    *logger.Logger
	states repos.BlockStateRepo
}

func NewBlockStateService(db *gorm.DB, baseLog *logger.Logger, states repos.BlockStateRepo) BlockStateService {
	return &blockStateService{
		db:     db,
		log:    baseLog.With("service", "BlockStateService"),
		states: states,
	}
}

func (s *blockStateService) Get(dbc dbctx.Context, runID uuid.UUID, blockID string) (*types.BlockState, error) {
	return s.states.Get(dbc, runID, blockID)
}

func (s *blockStateService) ListByRun(dbc dbctx.Context, runID uuid.UUID) ([]*types.BlockState, error) {
	return s.states.ListByRun(dbc, runID)
}

func (s *blockStateService) LoadOrCreate(dbc dbctx.Context, runID uuid.UUID, blockID string) (*types.BlockState, error) {
	if runID == uuid.Nil || blockID == "" {
		return nil, journeyerr.New(journeyerr.CodeValidation, "block_state.enter", "run id and block id required", nil)
	}

	now := time.Now().UTC()
	row := &types.BlockState{
		RunID:     runID,
		BlockID:   blockID,
		Status:    types.BlockInProgress,
		EnteredAt: &now,
		StartedAt: &now,
	}
	if err := s.states.Insert(dbc, row); err != nil {
		return nil, err
	}

	state, err := s.states.Get(dbc, runID, blockID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, journeyerr.New(journeyerr.CodeInternal, "block_state.enter", "block state missing after insert", nil)
	}
	if state.ID == row.ID {
		return state, nil
	}

	// Re-entry of an existing row: re-open it and start a fresh interval.
	updates := map[string]any{
		"status":     types.BlockInProgress,
		"entered_at": now,
	}
	if state.StartedAt == nil {
		updates["started_at"] = now
	}
	if err := s.states.UpdateFields(dbc, state.ID, updates); err != nil {
		return nil, err
	}
	return s.states.Get(dbc, runID, blockID)
}

func (s *blockStateService) Complete(dbc dbctx.Context, runID uuid.UUID, blockID string, outcome BlockOutcome) (*types.BlockState, error) {
	if runID == uuid.Nil || blockID == "" {
		return nil, journeyerr.New(journeyerr.CodeValidation, "block_state.complete", "run id and block id required", nil)
	}

	state, err := s.states.Get(dbc, runID, blockID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		// Completion without a prior entry still records the attempt; the
		// elapsed interval is zero because no entry was observed.
		if state, err = s.LoadOrCreate(dbc, runID, blockID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	elapsed := 0
	if state.EnteredAt != nil {
		elapsed = int(now.Sub(*state.EnteredAt).Seconds())
		if elapsed < 0 {
			elapsed = 0
		}
	}

	updates := map[string]any{
		"status":             types.BlockCompleted,
		"attempts_count":     state.AttemptsCount + 1,
		"time_spent_seconds": state.TimeSpentSeconds + elapsed,
		"completed_at":       now,
		// The entry interval is consumed; a re-entry opens the next one.
		"entered_at": nil,
	}
	if state.StartedAt == nil {
		updates["started_at"] = now
	}
	if outcome.Score != nil {
		updates["score"] = *outcome.Score
	}
	if outcome.WeakTopics != nil {
		raw, err := json.Marshal(outcome.WeakTopics)
		if err != nil {
			return nil, journeyerr.New(journeyerr.CodeInternal, "block_state.complete", "encode weak topics", err)
		}
		updates["weak_topics"] = datatypes.JSON(raw)
	}
	if outcome.Output != nil {
		raw, err := json.Marshal(outcome.Output)
		if err != nil {
			return nil, journeyerr.New(journeyerr.CodeValidation, "block_state.complete", "encode output payload", err)
		}
		updates["output_payload"] = datatypes.JSON(raw)
	}

	if err := s.states.UpdateFields(dbc, state.ID, updates); err != nil {
		return nil, err
	}
	updated, err := s.states.Get(dbc, runID, blockID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, journeyerr.New(journeyerr.CodeInternal, "block_state.complete", "block state missing after update", nil)
	}
	return updated, nil
}
