package models

import (
	"time"

	"gorm.io/gorm"
)

// Promotion represents a one-off touchpoint campaign anchored to an end
// date. The lead selection is captured once at creation time and never
// recomputed.
type Promotion struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Name           string    `gorm:"not null" json:"name"`
	EndDate        time.Time `gorm:"not null" json:"end_date"`
	SnapWindowDays int       `gorm:"default:1" json:"snap_window_days"`
	Status         string    `gorm:"default:'scheduled'" json:"status"` // scheduled, completed, canceled

	// Targeting rule tags and the optional search narrowing term.
	Targeting  []string `gorm:"type:jsonb;serializer:json" json:"targeting"`
	SearchTerm string   `json:"search_term"`

	// Lead ids captured at creation; immutable afterwards.
	LeadIDs []uint `gorm:"type:jsonb;serializer:json" json:"lead_ids"`

	// Relations
	Touchpoints []PromotionTouchpoint `gorm:"foreignKey:PromotionID" json:"touchpoints,omitempty"`
	Events      []PromotionEvent      `gorm:"foreignKey:PromotionID" json:"events,omitempty"`
}

// PromotionTouchpoint is one scheduled contact attempt within a promotion,
// counted backward from the campaign end date. Touchpoint order is
// independent of offset size.
type PromotionTouchpoint struct {
	gorm.Model
	PromotionID uint `gorm:"not null;index" json:"promotion_id"`

	Name       string `json:"name"`
	StepNumber int    `gorm:"not null" json:"step_number"`
	OffsetDays int    `gorm:"not null" json:"offset_days"` // days before EndDate
	Template   string `gorm:"type:text" json:"template"`
}

// PromotionEvent is one (promotion x lead x touchpoint) send, created in
// bulk at promotion creation and never regenerated.
type PromotionEvent struct {
	gorm.Model
	PromotionID  uint `gorm:"not null;index" json:"promotion_id"`
	LeadID       uint `gorm:"not null;index" json:"lead_id"`
	TouchpointID uint `gorm:"not null;index" json:"touchpoint_id"`

	ScheduledFor time.Time `gorm:"not null;index" json:"scheduled_for"`
	Template     string    `gorm:"type:text" json:"template"`
	Completed    bool      `gorm:"default:false" json:"completed"`
	Archived     bool      `gorm:"default:false" json:"archived"`
	SentAt       *time.Time `json:"sent_at"`
	MessageID    string     `json:"message_id"`
}

// SnapSnapshot preserves a lead's organic schedule at the moment it was
// suspended ("snapped") because a promotional touchpoint landed nearby.
// Restoration is not implemented; the snapshot keeps it possible.
type SnapSnapshot struct {
	gorm.Model
	UserID      uint `gorm:"not null;index" json:"user_id"`
	LeadID      uint `gorm:"not null;index" json:"lead_id"`
	PromotionID uint `gorm:"index" json:"promotion_id"`

	OriginalScheduledAt time.Time `json:"original_scheduled_at"`
	OriginalStageID     string    `json:"original_stage_id"`
	SnappedAt           time.Time `json:"snapped_at"`
}
