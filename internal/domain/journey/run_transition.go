package journey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TransitionKind string

const (
	TransitionAdvance  TransitionKind = "advance"
	TransitionFinalize TransitionKind = "finalize"
	TransitionRestart  TransitionKind = "restart"
)

// RunTransition is an append-only log of run pointer movements. The unique
// (run_id, event_id) pair makes a replayed completion event detectable.
type RunTransition struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	RunID   uuid.UUID `gorm:"type:uuid;not null;index:idx_journey_run_transition_run_event,unique,priority:1" json:"run_id"`
	EventID uuid.UUID `gorm:"type:uuid;not null;index:idx_journey_run_transition_run_event,unique,priority:2;index" json:"event_id"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Kind TransitionKind `gorm:"column:kind;type:text;not null;index" json:"kind"`

	FromBlockID string  `gorm:"column:from_block_id;type:text" json:"from_block_id,omitempty"`
	ToBlockID   *string `gorm:"column:to_block_id;type:text" json:"to_block_id,omitempty"`

	OccurredAt time.Time      `gorm:"column:occurred_at;not null;index" json:"occurred_at"`
	Payload    datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (RunTransition) TableName() string { return "journey_run_transition" }
