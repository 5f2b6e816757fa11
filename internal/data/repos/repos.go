package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/data/repos/journey"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

type JourneyRepo = journey.JourneyRepo
type RunRepo = journey.RunRepo
type BlockStateRepo = journey.BlockStateRepo
type RunTransitionRepo = journey.RunTransitionRepo

func NewJourneyRepo(db *gorm.DB, baseLog *logger.Logger) JourneyRepo {
	return journey.NewJourneyRepo(db, baseLog)
}

func NewRunRepo(db *gorm.DB, baseLog *logger.Logger) RunRepo {
	return journey.NewRunRepo(db, baseLog)
}

func NewBlockStateRepo(db *gorm.DB, baseLog *logger.Logger) BlockStateRepo {
	return journey.NewBlockStateRepo(db, baseLog)
}

func NewRunTransitionRepo(db *gorm.DB, baseLog *logger.Logger) RunTransitionRepo {
	return journey.NewRunTransitionRepo(db, baseLog)
}
