package journey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BlockStatus string

const (
	BlockNotStarted BlockStatus = "not_started"
	BlockInProgress BlockStatus = "in_progress"
	BlockCompleted  BlockStatus = "completed"
	BlockFailed     BlockStatus = "failed"
	BlockSkipped    BlockStatus = "skipped"
)

// BlockState is the persisted attempt record for one block within one run.
// AttemptsCount and TimeSpentSeconds accumulate across revisits and the row
// is removed only by a run restart. Unique per (run_id, block_id) among
// live rows.
type BlockState struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	RunID   uuid.UUID `gorm:"type:uuid;not null;index:idx_journey_block_state_run_block,priority:1;index" json:"run_id"`
	BlockID string    `gorm:"column:block_id;type:text;not null;index:idx_journey_block_state_run_block,priority:2" json:"block_id"`

	Status BlockStatus `gorm:"column:status;type:text;not null;default:'not_started'" json:"status"`

	AttemptsCount    int `gorm:"column:attempts_count;not null;default:0" json:"attempts_count"`
	TimeSpentSeconds int `gorm:"column:time_spent_seconds;not null;default:0" json:"time_spent_seconds"`

	Score      *float64       `gorm:"column:score" json:"score,omitempty"`
	WeakTopics datatypes.JSON `gorm:"column:weak_topics;type:jsonb" json:"weak_topics,omitempty"`

	OutputPayload datatypes.JSON `gorm:"column:output_payload;type:jsonb" json:"output_payload,omitempty"`

	// EnteredAt is the last time the block was entered, the basis for the
	// elapsed time added on completion.
	EnteredAt   *time.Time `gorm:"column:entered_at" json:"entered_at,omitempty"`
	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (BlockState) TableName() string { return "journey_block_state" }
