package models

import (
	"gorm.io/gorm"
)

// User represents a user account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	TokenVersion int    `gorm:"default:0" json:"-"`

	// Profile information
	Name     *string `json:"name,omitempty"`
	Company  *string `json:"company,omitempty"`
	Timezone string  `gorm:"default:'UTC'" json:"timezone"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`

	// Relations
	Leads      []Lead      `gorm:"foreignKey:UserID" json:"leads,omitempty"`
	Contacts   []Contact   `gorm:"foreignKey:UserID" json:"contacts,omitempty"`
	Promotions []Promotion `gorm:"foreignKey:UserID" json:"promotions,omitempty"`
	Sequences  []Sequence  `gorm:"foreignKey:UserID" json:"sequences,omitempty"`
}
