package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/data/repos"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

type Repos struct {
	Journey       repos.JourneyRepo
	Run           repos.RunRepo
	BlockState    repos.BlockStateRepo
	RunTransition repos.RunTransitionRepo

	Tx repos.TxRunner
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Journey:       repos.NewJourneyRepo(db, log),
		Run:           repos.NewRunRepo(db, log),
		BlockState:    repos.NewBlockStateRepo(db, log),
		RunTransition: repos.NewRunTransitionRepo(db, log),
		Tx:            repos.NewGormTxRunner(db),
	}
}
