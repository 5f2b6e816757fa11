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

type RunTransitionRepo interface {
	// Create appends the transition. It reports created=false when a
	// transition with the same (run_id, event_id) already exists, which
	// is how completion replays are detected.
	Create(dbc dbctx.Context, row *types.RunTransition) (bool, error)
	ExistsByEvent(dbc dbctx.Context, runID, eventID uuid.UUID) (bool, error)
	GetByEvent(dbc dbctx.Context, runID, eventID uuid.UUID) (*types.RunTransition, error)
	ListByRun(dbc dbctx.Context, runID uuid.UUID) ([]*types.RunTransition, error)
}

type runTransitionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRunTransitionRepo(db *gorm.DB, baseLog *logger.Logger) RunTransitionRepo {
	return &runTransitionRepo{db: db, log: baseLog.With("repo", "RunTransitionRepo")}
}

func (r *runTransitionRepo) Create(dbc dbctx.Context, row *types.RunTransition) (bool, error) {
	t := dbc.DB(r.db)
	if row == nil || row.RunID == uuid.Nil || row.EventID == uuid.Nil {
		return false, nil
	}
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.OccurredAt.IsZero() {
		row.OccurredAt = now
	}

	res := t.Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, MapError("RunTransitionRepo.Create", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *runTransitionRepo) ExistsByEvent(dbc dbctx.Context, runID, eventID uuid.UUID) (bool, error) {
	t := dbc.DB(r.db)
	if runID == uuid.Nil || eventID == uuid.Nil {
		return false, nil
	}
	var count int64
	if err := t.Model(&types.RunTransition{}).
		Where("run_id = ? AND event_id = ?", runID, eventID).
		Count(&count).Error; err != nil {
		return false, MapError("RunTransitionRepo.ExistsByEvent", err)
	}
	return count > 0, nil
}

func (r *runTransitionRepo) GetByEvent(dbc dbctx.Context, runID, eventID uuid.UUID) (*types.RunTransition, error) {
	t := dbc.DB(r.db)
	if runID == uuid.Nil || eventID == uuid.Nil {
		return nil, nil
	}
	var row types.RunTransition
	if err := t.Where("run_id = ? AND event_id = ?", runID, eventID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, MapError("RunTransitionRepo.GetByEvent", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *runTransitionRepo) ListByRun(dbc dbctx.Context, runID uuid.UUID) ([]*types.RunTransition, error) {
	t := dbc.DB(r.db)
	if runID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.RunTransition
	if err := t.Where("run_id = ?", runID).
		Order("occurred_at ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, MapError("RunTransitionRepo.ListByRun", err)
	}
	return rows, nil
}
