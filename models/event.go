package models

import (
	"time"

	"gorm.io/gorm"
)

// ScheduledEvent is a calendar-facing record of one planned outreach
// moment. EventKey is deterministic (e.g. sequence_12_step_34) so creating
// the same logical event twice merges instead of duplicating.
type ScheduledEvent struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	EventKey string `gorm:"uniqueIndex;not null" json:"event_key"`
	Kind     string `gorm:"not null;index" json:"kind"` // sequence_step, promotion_touchpoint
	RefID    uint   `gorm:"index" json:"ref_id"`        // id of the step/event row this mirrors

	Title        string    `json:"title"`
	ToEmail      string    `json:"to_email"`
	Template     string    `gorm:"type:text" json:"template"`
	ScheduledFor time.Time `gorm:"not null;index" json:"scheduled_for"`

	Completed bool       `gorm:"default:false" json:"completed"`
	SentAt    *time.Time `json:"sent_at"`
	MessageID string     `json:"message_id"`
}
