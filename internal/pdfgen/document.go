// Package pdfgen renders printable invoice documents. A nil Renderer
// is a valid runtime condition; callers fall back to the web invoice
// view when no renderer is wired.
package pdfgen

import (
	"time"

	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/db/models"
	"github.com/billgix/billgix/internal/settings"
)

// Line is one invoice row.
type Line struct {
	Name      string
	HSN       string
	Quantity  float64
	UnitType  string
	UnitPrice float64
	Total     float64
}

// InvoiceDocument carries everything the renderer needs. It is fully
// resolved up front so rendering needs no database access.
type InvoiceDocument struct {
	Number        string
	Date          time.Time
	DueDate       time.Time
	PaymentMethod string
	PaymentStatus string

	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
	CompanyEmail   string

	CustomerName    string
	CustomerAddress string
	CustomerPhone   string
	CustomerEmail   string

	Lines []Line

	Subtotal float64
	TaxLabel string
	Tax      float64
	Discount float64
	Total    float64

	CurrencySymbol string
	SymbolPosition string

	IncludeLogo bool
	FooterText  string
	Terms       string
}

// Renderer produces a PDF from a resolved invoice document.
type Renderer interface {
	RenderInvoice(doc InvoiceDocument) ([]byte, error)
}

// DocumentFromSale resolves company and invoice settings and folds the
// sale into a renderable document. The sale must have Customer and
// Items (with Product) preloaded.
func DocumentFromSale(db *gorm.DB, sale *models.Sale) InvoiceDocument {
	company := settings.Resolve(db, settings.GroupCompany, settings.CompanyDefaults())
	invoice := settings.Resolve(db, settings.GroupInvoice, settings.InvoiceDefaults())

	doc := InvoiceDocument{
		Number:        sale.InvoiceNumber,
		Date:          sale.CreatedAt,
		DueDate:       sale.DueDate,
		PaymentMethod: sale.PaymentMethod,
		PaymentStatus: string(sale.PaymentStatus),

		CompanyName:    company.Get(settings.KeyCompanyName),
		CompanyAddress: company.Get("company_address"),
		CompanyPhone:   company.Get("company_phone"),
		CompanyEmail:   company.Get(settings.KeyCompanyEmail),

		CustomerName:    sale.Customer.Name,
		CustomerAddress: sale.Customer.Address,
		CustomerPhone:   sale.Customer.Phone,
		CustomerEmail:   sale.Customer.Email,

		Subtotal: sale.Subtotal,
		TaxLabel: invoice.Get("invoice_tax_label"),
		Tax:      sale.TaxAmount,
		Discount: sale.DiscountAmount,
		Total:    sale.TotalPrice,

		CurrencySymbol: company.Get(settings.KeyCurrency),
		SymbolPosition: invoice.Get(settings.KeySymbolPosition),

		IncludeLogo: invoice.Bool("invoice_include_logo"),
		FooterText:  invoice.Get("invoice_footer_text"),
		Terms:       invoice.Get("invoice_terms"),
	}

	for _, item := range sale.Items {
		doc.Lines = append(doc.Lines, Line{
			Name:      item.Product.ItemName,
			HSN:       item.Product.HSN,
			Quantity:  item.Quantity,
			UnitType:  item.Product.UnitType,
			UnitPrice: item.Price,
			Total:     item.Total,
		})
	}

	return doc
}
