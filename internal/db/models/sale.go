package models

import "time"

// PaymentStatus represents the payment state of a sale.
type PaymentStatus string

const (
	// PaymentStatusPaid indicates the sale is fully paid.
	PaymentStatusPaid PaymentStatus = "Paid"
	// PaymentStatusPartial indicates the sale is partially paid.
	PaymentStatusPartial PaymentStatus = "Partial"
	// PaymentStatusUnpaid indicates no payment has been received.
	PaymentStatusUnpaid PaymentStatus = "Unpaid"
)

// Sale represents an invoiced sale with its line items.
type Sale struct {
	// ID is the unique identifier for the sale.
	ID uint64 `gorm:"primaryKey"`
	// InvoiceNumber is the unique, settings-driven invoice number (e.g. INV-1001).
	InvoiceNumber string `gorm:"uniqueIndex;size:50;not null"`
	// CustomerID is the ID of the customer this sale belongs to.
	CustomerID uint64 `gorm:"index"`
	// Customer is the associated customer (loaded via foreign key).
	Customer Customer `gorm:"foreignKey:CustomerID"`
	// Items are the line items of the sale.
	Items []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	// Subtotal is the sum of line totals before tax and discount.
	Subtotal float64
	// TaxAmount is the tax charged on the sale.
	TaxAmount float64
	// DiscountAmount is the discount applied to the sale.
	DiscountAmount float64
	// TotalPrice is the grand total.
	TotalPrice float64
	// PaymentMethod records how the sale was or will be paid (Cash, Card, UPI, ...).
	PaymentMethod string `gorm:"size:50"`
	// PaymentStatus is the payment state (Paid, Partial, Unpaid).
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'Unpaid'"`
	// DueDate is the payment due date derived from the invoice settings.
	DueDate time.Time
	// CreatedAt is the timestamp when the sale was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the sale was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Sale model.
func (Sale) TableName() string {
	return "sales"
}

// SaleItem represents one line of a sale.
type SaleItem struct {
	// ID is the unique identifier for the line item.
	ID uint64 `gorm:"primaryKey"`
	// SaleID is the ID of the sale this line belongs to.
	SaleID uint64 `gorm:"index;not null"`
	// ProductID is the ID of the sold product.
	ProductID uint64 `gorm:"not null"`
	// Product is the associated product (loaded via foreign key).
	Product Product `gorm:"foreignKey:ProductID"`
	// Quantity is the amount sold in product units.
	Quantity float64
	// Price is the unit price at the time of sale.
	Price float64
	// Total is Quantity * Price.
	Total float64
}

// TableName specifies the database table name for the SaleItem model.
func (SaleItem) TableName() string {
	return "sale_items"
}
