package models

import "time"

// Product represents an inventory item.
type Product struct {
	// ID is the unique identifier for the product.
	ID uint64 `gorm:"primaryKey"`
	// ItemName is the product's display name.
	ItemName string `gorm:"size:100;not null"`
	// ItemCode is the unique stock keeping code.
	ItemCode string `gorm:"uniqueIndex;size:50;not null"`
	// HSN is the harmonized system nomenclature code printed on invoices.
	HSN string `gorm:"size:20"`
	// UnitType is the unit of measure (pcs, kg, ...).
	UnitType string `gorm:"size:20"`
	// Qty is the quantity currently in stock.
	Qty float64
	// Price is the unit selling price.
	Price float64
	// CreatedAt is the timestamp when the product was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the product was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Product model.
func (Product) TableName() string {
	return "products"
}
