package models

import "time"

// Customer represents a customer record.
// Email is optional; customers without an email address simply never
// receive order or payment notifications.
type Customer struct {
	// ID is the unique identifier for the customer.
	ID uint64 `gorm:"primaryKey"`
	// Name is the customer's display name.
	Name string `gorm:"size:100;not null"`
	// Phone is the customer's phone number.
	Phone string `gorm:"size:30"`
	// Email is the customer's email address, may be empty.
	Email string `gorm:"size:255"`
	// Address is the customer's postal address.
	Address string `gorm:"type:text"`
	// CreatedAt is the timestamp when the customer was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the customer was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Customer model.
func (Customer) TableName() string {
	return "customers"
}
