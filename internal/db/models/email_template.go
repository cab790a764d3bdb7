package models

import "time"

// EmailTemplate represents a stored subject/body pair with {{placeholder}}
// tokens for variable substitution. The default set is seeded the first
// time the template store is found empty; thereafter templates are only
// changed through explicit edits.
type EmailTemplate struct {
	// ID is the unique identifier for the template.
	ID uint64 `gorm:"primaryKey"`
	// Name is the unique template name, e.g. "invoice" or "payment_reminder".
	Name string `gorm:"uniqueIndex;size:100;not null"`
	// Subject is the email subject line, may contain {{placeholder}} tokens.
	Subject string `gorm:"size:255;not null"`
	// Body is the email body, may contain {{placeholder}} tokens.
	Body string `gorm:"type:text;not null"`
	// Variables is a JSON-encoded list of placeholder names.
	// Advisory only, used by the admin UI; rendering does not consult it.
	Variables string `gorm:"type:text"`
	// CreatedAt is the timestamp when the template was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the template was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the EmailTemplate model.
func (EmailTemplate) TableName() string {
	return "email_templates"
}
