package journey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

type RunRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Run, error)
	GetActive(dbc dbctx.Context, userID, journeyID uuid.UUID) (*types.Run, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Run, error)
	Insert(dbc dbctx.Context, row *types.Run) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type runRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRunRepo(db *gorm.DB, baseLog *logger.Logger) RunRepo {
	return &runRepo{db: db, log: baseLog.With("repo", "RunRepo")}
}

func (r *runRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Run, error) {
	t := dbc.DB(r.db)
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Run
	if err := t.Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, MapError("RunRepo.GetByID", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// GetActive returns the single run in a non-terminal status for the
// (user, journey) pair, or nil when none exists. The partial unique
// index idx_journey_run_active guarantees at most one such row.
func (r *runRepo) GetActive(dbc dbctx.Context, userID, journeyID uuid.UUID) (*types.Run, error) {
	t := dbc.DB(r.db)
	if userID == uuid.Nil || journeyID == uuid.Nil {
		return nil, nil
	}
	var row types.Run
	if err := t.Where("user_id = ? AND journey_id = ? AND status IN ?", userID, journeyID,
			[]types.RunStatus{types.RunNotStarted, types.RunInProgress}).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, MapError("RunRepo.GetActive", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *runRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Run, error) {
	t := dbc.DB(r.db)
	if userID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.Run
	if err := t.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, MapError("RunRepo.ListByUser", err)
	}
	return rows, nil
}

// Insert creates the row and silently does nothing when a conflicting
// row already exists. Callers re-read after insert so that concurrent
// creators converge on the row that won.
func (r *runRepo) Insert(dbc dbctx.Context, row *types.Run) error {
	t := dbc.DB(r.db)
	if row == nil || row.UserID == uuid.Nil || row.JourneyID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	err := t.Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error
	return MapError("RunRepo.Insert", err)
}

func (r *runRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	t := dbc.DB(r.db)
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	err := t.Model(&types.Run{}).Where("id = ?", id).Updates(updates).Error
	return MapError("RunRepo.UpdateFields", err)
}

func (r *runRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.DB(r.db)
	if id == uuid.Nil {
		return nil
	}
	err := t.Where("id = ?", id).Delete(&types.Run{}).Error
	return MapError("RunRepo.Delete", err)
}
