package models

import (
	"time"

	"gorm.io/gorm"
)

// RolloverState records the last nightly rollover run per user. The job
// must never apply its effects twice for the same calendar day key: the
// key is checked before any mutation and written only after every lead
// reschedule succeeded.
type RolloverState struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	LastRunDayKey string     `json:"last_run_day_key"` // YYYY-MM-DD, user-local
	LastRunAt     *time.Time `json:"last_run_at"`
	Timezone      string     `gorm:"default:'UTC'" json:"timezone"`
}
