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

type JourneyRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Journey, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Journey, error)
	ListPublished(dbc dbctx.Context) ([]*types.Journey, error)
	GetPublishedByTrackAndOrder(dbc dbctx.Context, trackID uuid.UUID, orderIndex int) (*types.Journey, error)
	Upsert(dbc dbctx.Context, row *types.Journey) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
}

type journeyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJourneyRepo(db *gorm.DB, baseLog *logger.Logger) JourneyRepo {
	return &journeyRepo{db: db, log: baseLog.With("repo", "JourneyRepo")}
}

func (r *journeyRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Journey, error) {
	t := dbc.DB(r.db)
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Journey
	if err := t.Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, MapError("JourneyRepo.GetByID", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *journeyRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Journey, error) {
	t := dbc.DB(r.db)
	if slug == "" {
		return nil, nil
	}
	var row types.Journey
	if err := t.Where("slug = ?", slug).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, MapError("JourneyRepo.GetBySlug", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *journeyRepo) ListPublished(dbc dbctx.Context) ([]*types.Journey, error) {
	t := dbc.DB(r.db)
	var rows []*types.Journey
	if err := t.Where("status = ?", types.JourneyPublished).
		Order("track_id ASC, order_index ASC").
		Find(&rows).Error; err != nil {
		return nil, MapError("JourneyRepo.ListPublished", err)
	}
	return rows, nil
}

func (r *journeyRepo) GetPublishedByTrackAndOrder(dbc dbctx.Context, trackID uuid.UUID, orderIndex int) (*types.Journey, error) {
	t := dbc.DB(r.db)
	if trackID == uuid.Nil {
		return nil, nil
	}
	var row types.Journey
	if err := t.Where("track_id = ? AND order_index = ? AND status = ?", trackID, orderIndex, types.JourneyPublished).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, MapError("JourneyRepo.GetPublishedByTrackAndOrder", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *journeyRepo) Upsert(dbc dbctx.Context, row *types.Journey) error {
	t := dbc.DB(r.db)
	if row == nil || row.Slug == "" {
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

	err := t.Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "slug"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{gorm.Expr("deleted_at IS NULL")}},
			DoUpdates: clause.AssignmentColumns([]string{
				"track_id",
				"order_index",
				"title",
				"description",
				"status",
				"graph",
				"updated_at",
			}),
		}).
		Create(row).Error
	return MapError("JourneyRepo.Upsert", err)
}

func (r *journeyRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	t := dbc.DB(r.db)
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	err := t.Model(&types.Journey{}).Where("id = ?", id).Updates(updates).Error
	return MapError("JourneyRepo.UpdateFields", err)
}
