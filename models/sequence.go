package models

import (
	"time"

	"gorm.io/gorm"
)

// Sequence represents a linear, ordered outreach sequence. Step dates
// cascade: each step fires DelayDays after the previous step's computed
// date, with the first step pinned to StartDate.
type Sequence struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Name      string    `gorm:"not null" json:"name"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	Status    string    `gorm:"default:'active'" json:"status"` // active, completed, canceled

	// Relations
	Steps []SequenceStep `gorm:"foreignKey:SequenceID" json:"steps,omitempty"`
}

// SequenceStep represents one step in an outreach sequence.
//
// Status here and the Completed flag on the matching ScheduledEvent are
// deliberately dual-written; the event record is a denormalized calendar
// cache of this row.
type SequenceStep struct {
	gorm.Model
	SequenceID uint `gorm:"not null;index" json:"sequence_id"`

	StepNumber int    `gorm:"not null" json:"step_number"`
	DelayDays  int    `gorm:"not null" json:"delay_days"` // days after the previous step; 0 for the first
	ToEmail    string `gorm:"not null" json:"to_email"`
	Template   string `gorm:"type:text" json:"template"`

	ScheduledFor time.Time  `gorm:"not null;index" json:"scheduled_for"`
	Status       string     `gorm:"default:'open'" json:"status"` // open, completed, skipped
	CompletedAt  *time.Time `json:"completed_at"`
	SkippedAt    *time.Time `json:"skipped_at"`
}
