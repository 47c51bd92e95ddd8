package models

import (
	"time"

	"gorm.io/gorm"
)

// Contact represents an address-book entry; a lead may be sourced from one.
type Contact struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `gorm:"index" json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
	Notes     string `gorm:"type:text" json:"notes"`

	// Relations
	Leads []Lead `gorm:"foreignKey:ContactID" json:"leads,omitempty"`
}

// Task is a free-standing to-do item shown on the calendar.
type Task struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Title string     `gorm:"not null" json:"title"`
	Notes string     `gorm:"type:text" json:"notes"`
	DueAt *time.Time `gorm:"index" json:"due_at"`
	Done  bool       `gorm:"default:false" json:"done"`
}
