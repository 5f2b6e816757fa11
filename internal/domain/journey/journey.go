package journey

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JourneyStatus string

const (
	JourneyDraft     JourneyStatus = "draft"
	JourneyPublished JourneyStatus = "published"
	JourneyArchived  JourneyStatus = "archived"
)

// Journey is one runnable unit of a track. The graph column holds the
// definition document verbatim.
type Journey struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	TrackID    uuid.UUID `gorm:"type:uuid;not null;index:idx_journey_track_order,priority:1" json:"track_id"`
	OrderIndex int       `gorm:"column:order_index;not null;default:0;index:idx_journey_track_order,priority:2" json:"order_index"`

	Slug        string `gorm:"column:slug;type:text;not null;index" json:"slug"`
	Title       string `gorm:"column:title;type:text;not null" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description,omitempty"`

	Status JourneyStatus `gorm:"column:status;type:text;not null;default:'draft';index" json:"status"`

	Graph datatypes.JSON `gorm:"column:graph;type:jsonb;not null" json:"graph"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Journey) TableName() string { return "journey" }
