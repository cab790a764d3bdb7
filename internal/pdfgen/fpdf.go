package pdfgen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/billgix/billgix/internal/billing"
)

// FPDF renders invoices with the core Helvetica fonts on A4 pages.
type FPDF struct{}

// NewFPDF returns the default invoice renderer.
func NewFPDF() *FPDF {
	return &FPDF{}
}

// RenderInvoice lays out the invoice and returns the PDF bytes.
func (r *FPDF) RenderInvoice(doc InvoiceDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	money := func(amount float64) string {
		// Core fonts are cp1252; the rupee glyph has no slot there.
		symbol := doc.CurrencySymbol
		if symbol == "₹" {
			symbol = "Rs."
		}

		return billing.FormatAmount(amount, symbol, doc.SymbolPosition)
	}

	if doc.IncludeLogo {
		pdf.SetFont("Helvetica", "B", 20)
		pdf.CellFormat(0, 10, tr(doc.CompanyName), "", 1, "L", false, 0, "")
	} else {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, tr(doc.CompanyName), "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "", 9)

	for _, line := range []string{doc.CompanyAddress, doc.CompanyPhone, doc.CompanyEmail} {
		if line != "" {
			pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, "INVOICE", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(95, 6, tr("Invoice No: "+doc.Number), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Date: "+doc.Date.Format("02 Jan 2006"), "", 1, "R", false, 0, "")

	pdf.CellFormat(95, 6, tr("Status: "+doc.PaymentStatus), "", 0, "L", false, 0, "")

	if !doc.DueDate.IsZero() {
		pdf.CellFormat(0, 6, "Due: "+doc.DueDate.Format("02 Jan 2006"), "", 1, "R", false, 0, "")
	} else {
		pdf.Ln(6)
	}

	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "Bill To", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(doc.CustomerName), "", 1, "L", false, 0, "")

	for _, line := range []string{doc.CustomerAddress, doc.CustomerPhone, doc.CustomerEmail} {
		if line != "" {
			pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(70, 7, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "HSN", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 7, "Rate", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 7, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)

	for _, line := range doc.Lines {
		qty := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", line.Quantity), "0"), ".")
		if line.UnitType != "" {
			qty += " " + line.UnitType
		}

		pdf.CellFormat(70, 7, tr(line.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, tr(line.HSN), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, tr(qty), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, tr(money(line.UnitPrice)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, tr(money(line.Total)), "1", 1, "R", false, 0, "")
	}

	summary := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}

		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(120, 7, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, tr(value), "1", 1, "R", false, 0, "")
	}

	summary("Subtotal", money(doc.Subtotal), false)

	if doc.Tax != 0 {
		label := doc.TaxLabel
		if label == "" {
			label = "Tax"
		}

		summary(label, money(doc.Tax), false)
	}

	if doc.Discount != 0 {
		summary("Discount", "-"+money(doc.Discount), false)
	}

	summary("Total", money(doc.Total), true)

	pdf.Ln(6)

	if doc.Terms != "" {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(0, 5, "Terms & Conditions", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.MultiCell(0, 4, tr(doc.Terms), "", "L", false)
		pdf.Ln(3)
	}

	if doc.FooterText != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 6, tr(doc.FooterText), "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer

	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrapf(err, "rendering invoice %s", doc.Number)
	}

	return buf.Bytes(), nil
}
