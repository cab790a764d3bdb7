// Package models contains database model definitions.
package models

import "time"

// Setting represents a configuration setting stored in the database.
// Keys are globally unique; Group is informational and only used to
// load related settings together for the admin screens.
type Setting struct {
	// ID is the unique identifier for the setting.
	ID uint64 `gorm:"primaryKey"`
	// Key is the globally unique setting key.
	Key string `gorm:"uniqueIndex;size:100;not null"`
	// Value is the setting value, always stored as text.
	Value string `gorm:"type:text"`
	// Group organizes settings for display (company, invoice, email, notification).
	Group string `gorm:"column:setting_group;size:50;index"`
	// UpdatedAt is the timestamp when the setting was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Setting model.
func (Setting) TableName() string {
	return "settings"
}
