package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/data/repos"
	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/domain/journeyerr"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

// RunService owns the run row lifecycle: one non-terminal run per
// (user, journey), a durable pointer at the last block entered, and the
// restart/finalize terminal moves.
type RunService interface {
	// LoadOrCreateActive returns the active run for the pair, creating one
	// at startBlockID when none exists. Creation is atomic: concurrent
	// callers converge on the row that won the partial unique index.
	LoadOrCreateActive(dbc dbctx.Context, userID, journeyID uuid.UUID, startBlockID string) (*types.Run, bool, error)
	Get(dbc dbctx.Context, runID uuid.UUID) (*types.Run, error)
	GetActive(dbc dbctx.Context, userID, journeyID uuid.UUID) (*types.Run, error)
	LatestForJourney(dbc dbctx.Context, userID, journeyID uuid.UUID) (*types.Run, error)
	// AdvancePointer persists the pointer move before the block is
	// presented, so a reload resumes at the last block entered.
	AdvancePointer(dbc dbctx.Context, runID uuid.UUID, blockID string) error
	Finalize(dbc dbctx.Context, runID uuid.UUID) error
	// Restart resets the run to its start block: all block states deleted,
	// status in_progress, completed_at cleared. Running it twice yields the
	// same end state.
	Restart(dbc dbctx.Context, runID uuid.UUID, startBlockID string) error
}

type runService struct {
	db          *gorm.DB
	log         *logger.Logger
	runs        repos.RunRepo
	blockStates repos.BlockStateRepo
}

func NewRunService(db *gorm.DB, baseLog *logger.Logger, runs repos.RunRepo, blockStates repos.BlockStateRepo) RunService {
	return &runService{
		db:          db,
		log:         baseLog.With("service", "RunService"),
		runs:        runs,
		blockStates: blockStates,
	}
}

func (s *runService) LoadOrCreateActive(dbc dbctx.Context, userID, journeyID uuid.UUID, startBlockID string) (*types.Run, bool, error) {
	if userID == uuid.Nil || journeyID == uuid.Nil {
		return nil, false, journeyerr.New(journeyerr.CodeValidation, "run.load_or_create", "user and journey ids required", nil)
	}
	if startBlockID == "" {
		return nil, false, journeyerr.New(journeyerr.CodeValidation, "run.load_or_create", "start block id required", nil)
	}

	existing, err := s.runs.GetActive(dbc, userID, journeyID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now().UTC()
	row := &types.Run{
		UserID:         userID,
		JourneyID:      journeyID,
		CurrentBlockID: startBlockID,
		Status:         types.RunInProgress,
		StartedAt:      &now,
	}
	if err := s.runs.Insert(dbc, row); err != nil {
		return nil, false, err
	}

	// Re-read so a concurrent creator and we agree on the surviving row.
	active, err := s.runs.GetActive(dbc, userID, journeyID)
	if err != nil {
		return nil, false, err
	}
	if active == nil {
		return nil, false, journeyerr.New(journeyerr.CodeInternal, "run.load_or_create", "run missing after insert", nil)
	}
	created := active.ID == row.ID
	if created {
		s.log.Info("run created", "run_id", active.ID, "journey_id", journeyID, "user_id", userID)
	}
	return active, created, nil
}

func (s *runService) Get(dbc dbctx.Context, runID uuid.UUID) (*types.Run, error) {
	return s.runs.GetByID(dbc, runID)
}

func (s *runService) GetActive(dbc dbctx.Context, userID, journeyID uuid.UUID) (*types.Run, error) {
	return s.runs.GetActive(dbc, userID, journeyID)
}

// LatestForJourney returns the most recent run of the journey for the user,
// active or not. Used by the summary read path after a run has finished.
func (s *runService) LatestForJourney(dbc dbctx.Context, userID, journeyID uuid.UUID) (*types.Run, error) {
	if userID == uuid.Nil || journeyID == uuid.Nil {
		return nil, nil
	}
	rows, err := s.runs.ListByUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.JourneyID == journeyID {
			return r, nil
		}
	}
	return nil, nil
}

func (s *runService) AdvancePointer(dbc dbctx.Context, runID uuid.UUID, blockID string) error {
	if runID == uuid.Nil || blockID == "" {
		return journeyerr.New(journeyerr.CodeValidation, "run.advance", "run id and block id required", nil)
	}
	return s.runs.UpdateFields(dbc, runID, map[string]any{
		"current_block_id": blockID,
		"status":           types.RunInProgress,
	})
}

func (s *runService) Finalize(dbc dbctx.Context, runID uuid.UUID) error {
	if runID == uuid.Nil {
		return journeyerr.New(journeyerr.CodeValidation, "run.finalize", "run id required", nil)
	}
	now := time.Now().UTC()
	if err := s.runs.UpdateFields(dbc, runID, map[string]any{
		"status":       types.RunCompleted,
		"completed_at": now,
	}); err != nil {
		return err
	}
	s.log.Info("run finalized", "run_id", runID)
	return nil
}

func (s *runService) Restart(dbc dbctx.Context, runID uuid.UUID, startBlockID string) error {
	if runID == uuid.Nil || startBlockID == "" {
		return journeyerr.New(journeyerr.CodeValidation, "run.restart", "run id and start block id required", nil)
	}
	if err := s.blockStates.DeleteByRun(dbc, runID); err != nil {
		return err
	}
	if err := s.runs.UpdateFields(dbc, runID, map[string]any{
		"current_block_id": startBlockID,
		"status":           types.RunInProgress,
		"completed_at":     nil,
	}); err != nil {
		return err
	}
	s.log.Info("run restarted", "run_id", runID, "start_block_id", startBlockID)
	return nil
}
