package db

import (
	"fmt"

	types "github.com/yungbote/journey-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Journey{},
		&types.Run{},
		&types.BlockState{},
		&types.RunTransition{},
	)
}

// EnsureJourneyIndexes creates the partial unique indexes GORM tags cannot
// express. They are the persistence half of the engine's idempotency story:
// one active run per (user, journey), one live state row per (run, block),
// and a reusable slug for seeding.
func EnsureJourneyIndexes(db *gorm.DB) error {
	// uuid-ossp is already enabled in NewPostgresService, but safe to re-run
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_journey_run_active
		ON journey_run(user_id, journey_id)
		WHERE deleted_at IS NULL AND status IN ('not_started', 'in_progress');
	`).Error; err != nil {
		return fmt.Errorf("create idx_journey_run_active: %w", err)
	}
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_journey_block_state_live
		ON journey_block_state(run_id, block_id)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_journey_block_state_live: %w", err)
	}
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_journey_slug_live
		ON journey(slug)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_journey_slug_live: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureJourneyIndexes(s.db); err != nil {
		s.log.Error("Journey index migration failed", "error", err)
		return err
	}
	return nil
}
