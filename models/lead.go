package models

import (
	"time"

	"gorm.io/gorm"
)

// Lead represents a single prospect moving through the follow-up pipeline.
// NextActionAt is the single source of truth for "when is this lead due";
// the whole scheduling engine reads and writes that one field.
type Lead struct {
	gorm.Model
	UserID    uint  `gorm:"not null;index" json:"user_id"`
	ContactID *uint `gorm:"index" json:"contact_id,omitempty"`

	Name    string `gorm:"not null" json:"name"`
	Product string `json:"product"`
	Email   string `gorm:"index" json:"email"`
	Phone   string `json:"phone"`
	Notes   string `gorm:"type:text" json:"notes"`

	// Pipeline position
	StageID     string `gorm:"index" json:"stage_id"`
	StageStatus string `gorm:"default:'pending'" json:"stage_status"` // pending, completed
	Status      string `gorm:"default:'open'" json:"status"`          // open, closed
	State       string `gorm:"default:'open'" json:"state"`           // open, closed_won, closed_lost, drop_out
	Source      string `gorm:"default:'pipeline'" json:"source"`      // pipeline, contact

	// Scheduling
	NextActionAt *time.Time `gorm:"index" json:"next_action_at"`
	LastActionAt *time.Time `json:"last_action_at"`
	Archived     bool       `gorm:"default:false" json:"archived"`

	// Relations
	Contact       *Contact       `json:"contact,omitempty"`
	SnapSnapshots []SnapSnapshot `gorm:"foreignKey:LeadID" json:"snap_snapshots,omitempty"`
}
