package journey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RunStatus string

const (
	RunNotStarted RunStatus = "not_started"
	RunInProgress RunStatus = "in_progress"
	RunCompleted  RunStatus = "completed"
	RunAbandoned  RunStatus = "abandoned"
)

// Active reports whether the run still accepts progress. At most one active
// run may exist per (user, journey); a partial unique index enforces this.
func (s RunStatus) Active() bool {
	return s == RunNotStarted || s == RunInProgress
}

// Run is one user's traversal of a journey graph. CurrentBlockID always
// points at the last block entered, so a reload resumes exactly there.
type Run struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_journey_run_user_journey,priority:1" json:"user_id"`
	JourneyID uuid.UUID `gorm:"type:uuid;not null;index:idx_journey_run_user_journey,priority:2;index" json:"journey_id"`

	CurrentBlockID string `gorm:"column:current_block_id;type:text;not null" json:"current_block_id"`

	Status RunStatus `gorm:"column:status;type:text;not null;default:'not_started';index" json:"status"`

	StartedAt   *time.Time `gorm:"column:started_at;index" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at;index" json:"completed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Run) TableName() string { return "journey_run" }
