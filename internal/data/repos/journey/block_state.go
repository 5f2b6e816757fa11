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

type BlockStateRepo interface {
	Get(dbc dbctx.Context, runID uuid.UUID, blockID string) (*types.BlockState, error)
	ListByRun(dbc dbctx.Context, runID uuid.UUID) ([]*types.BlockState, error)
	Insert(dbc dbctx.Context, row *types.BlockState) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	DeleteByRun(dbc dbctx.Context, runID uuid.UUID) error
}

type blockStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBlockStateRepo(db *gorm.DB, baseLog *logger.Logger) BlockStateRepo {
	return &blockStateRepo{db: db, log: baseLog.With("repo", "BlockStateRepo")}
}

func (r *blockStateRepo) Get(dbc dbctx.Context, runID uuid.UUID, blockID string) (*types.BlockState, error) {
	t := dbc.DB(r.db)
	if runID == uuid.Nil || blockID == "" {
		return nil, nil
	}
	var row types.BlockState
	if err := t.Where("run_id = ? AND block_id = ?", runID, blockID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, MapError("BlockStateRepo.Get", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *blockStateRepo) ListByRun(dbc dbctx.Context, runID uuid.UUID) ([]*types.BlockState, error) {
	t := dbc.DB(r.db)
	if runID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.BlockState
	if err := t.Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, MapError("BlockStateRepo.ListByRun", err)
	}
	return rows, nil
}

// Insert creates the row and silently does nothing on conflict with
// the live (run_id, block_id) index. Callers re-read after insert.
func (r *blockStateRepo) Insert(dbc dbctx.Context, row *types.BlockState) error {
	t := dbc.DB(r.db)
	if row == nil || row.RunID == uuid.Nil || row.BlockID == "" {
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
	return MapError("BlockStateRepo.Insert", err)
}

func (r *blockStateRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	t := dbc.DB(r.db)
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	err := t.Model(&types.BlockState{}).Where("id = ?", id).Updates(updates).Error
	return MapError("BlockStateRepo.UpdateFields", err)
}

// DeleteByRun soft-deletes every block state of the run. Soft-deleted
// rows drop out of idx_journey_block_state_live, so a restarted run
// can re-enter the same block ids with fresh rows.
func (r *blockStateRepo) DeleteByRun(dbc dbctx.Context, runID uuid.UUID) error {
	t := dbc.DB(r.db)
	if runID == uuid.Nil {
		return nil
	}
	err := t.Where("run_id = ?", runID).Delete(&types.BlockState{}).Error
	return MapError("BlockStateRepo.DeleteByRun", err)
}
