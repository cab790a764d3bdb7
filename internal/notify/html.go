package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/billgix/billgix/internal/db/models"
)

// The notification bodies are fixed HTML layouts. Values are inserted
// verbatim, without escaping, matching how the stored templates are
// rendered.

func wrapLayout(headerColor, title, subtitle, inner string) string {
	var b strings.Builder

	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">`)
	fmt.Fprintf(&b, `<div style="background-color: %s; color: white; padding: 20px; text-align: center;">`, headerColor)
	fmt.Fprintf(&b, `<h1 style="margin: 0;">%s</h1>`, title)

	if subtitle != "" {
		fmt.Fprintf(&b, `<p style="margin: 5px 0 0 0;">%s</p>`, subtitle)
	}

	b.WriteString(`</div>`)
	b.WriteString(`<div style="padding: 20px; border: 1px solid #eee; border-top: none;">`)
	b.WriteString(inner)
	b.WriteString(`</div></div>`)

	return b.String()
}

func footerBlock(footer string) string {
	return `<div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; color: #666; font-size: 12px;">` + footer + `</div>`
}

func formatQty(qty float64, unit string) string {
	s := strconv.FormatFloat(qty, 'f', -1, 64)
	if unit != "" {
		s += " " + unit
	}

	return s
}

func orderConfirmationBody(sale *models.Sale, companyName string, money func(float64) string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<p>Dear %s,</p>`, sale.Customer.Name)
	b.WriteString(`<p>Thank you for your order! We're pleased to confirm that your order has been received and is being processed.</p>`)
	b.WriteString(`<h3 style="margin-top: 20px; border-bottom: 1px solid #eee; padding-bottom: 10px;">Order Summary</h3>`)

	b.WriteString(`<table style="width: 100%; border-collapse: collapse; margin-top: 15px;">`)
	b.WriteString(`<thead><tr style="background-color: #f3f4f6;">` +
		`<th style="padding: 10px; text-align: left; border-bottom: 1px solid #eee;">Item</th>` +
		`<th style="padding: 10px; text-align: center; border-bottom: 1px solid #eee;">Quantity</th>` +
		`<th style="padding: 10px; text-align: right; border-bottom: 1px solid #eee;">Price</th>` +
		`<th style="padding: 10px; text-align: right; border-bottom: 1px solid #eee;">Total</th>` +
		`</tr></thead><tbody>`)

	for _, item := range sale.Items {
		fmt.Fprintf(&b, `<tr>`+
			`<td style="padding: 10px; border-bottom: 1px solid #eee;">%s (%s)</td>`+
			`<td style="padding: 10px; text-align: center; border-bottom: 1px solid #eee;">%s</td>`+
			`<td style="padding: 10px; text-align: right; border-bottom: 1px solid #eee;">%s</td>`+
			`<td style="padding: 10px; text-align: right; border-bottom: 1px solid #eee;">%s</td>`+
			`</tr>`,
			item.Product.ItemName, item.Product.ItemCode,
			formatQty(item.Quantity, item.Product.UnitType),
			money(item.Price), money(item.Total))
	}

	fmt.Fprintf(&b, `</tbody><tfoot><tr style="font-weight: bold;">`+
		`<td colspan="3" style="padding: 10px; text-align: right; border-top: 2px solid #eee;">Grand Total:</td>`+
		`<td style="padding: 10px; text-align: right; border-top: 2px solid #eee;">%s</td>`+
		`</tr></tfoot></table>`, money(sale.TotalPrice))

	b.WriteString(`<div style="margin-top: 20px; background-color: #f9fafb; padding: 15px; border-radius: 5px;">`)
	b.WriteString(`<h4 style="margin-top: 0;">Payment Information</h4>`)
	fmt.Fprintf(&b, `<p><strong>Payment Method:</strong> %s</p>`, sale.PaymentMethod)
	fmt.Fprintf(&b, `<p><strong>Status:</strong> %s</p>`, sale.PaymentStatus)
	b.WriteString(`</div>`)

	b.WriteString(`<p style="margin-top: 20px;">If you have any questions about your order, please contact us.</p>`)
	fmt.Fprintf(&b, `<p>Best regards,<br>%s</p>`, companyName)

	return wrapLayout("#bb0620", "Order Confirmation", "Invoice #"+sale.InvoiceNumber, b.String())
}

func lowStockBody(product *models.Product, threshold, productURL string) string {
	var b strings.Builder

	b.WriteString(`<p>This is an automated notification to inform you that the following product has reached the low stock threshold:</p>`)

	b.WriteString(`<div style="margin: 20px 0; padding: 15px; background-color: #f9fafb; border-left: 4px solid #f44336;">`)
	fmt.Fprintf(&b, `<h3 style="margin-top: 0;">%s</h3>`, product.ItemName)
	fmt.Fprintf(&b, `<p><strong>Code:</strong> %s</p>`, product.ItemCode)
	fmt.Fprintf(&b, `<p><strong>Current Stock:</strong> %s</p>`, formatQty(product.Qty, product.UnitType))
	fmt.Fprintf(&b, `<p><strong>Low Stock Threshold:</strong> %s %s</p>`, threshold, product.UnitType)
	b.WriteString(`</div>`)

	b.WriteString(`<p>Please take action to replenish the inventory as soon as possible.</p>`)

	fmt.Fprintf(&b, `<div style="margin-top: 20px; text-align: center;">`+
		`<a href="%s" style="background-color: #bb0620; color: white; padding: 10px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">View Product</a>`+
		`</div>`, productURL)

	return wrapLayout("#f44336", "Low Stock Alert", "", b.String())
}

func paymentConfirmationBody(sale *models.Sale, companyName string, money func(float64) string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<p>Dear %s,</p>`, sale.Customer.Name)
	fmt.Fprintf(&b, `<p>Thank you for your payment of <strong>%s</strong> for Invoice #%s.</p>`,
		money(sale.TotalPrice), sale.InvoiceNumber)

	b.WriteString(`<div style="margin: 20px 0; padding: 15px; background-color: #f9fafb; border-left: 4px solid #4caf50;">`)
	fmt.Fprintf(&b, `<p style="margin: 0;"><strong>Payment Method:</strong> %s</p>`, sale.PaymentMethod)
	fmt.Fprintf(&b, `<p style="margin: 5px 0 0 0;"><strong>Date:</strong> %s</p>`, time.Now().Format("January 02, 2006"))
	b.WriteString(`</div>`)

	b.WriteString(`<p>Your payment has been successfully processed and recorded in our system.</p>`)
	b.WriteString(`<p>If you have any questions, please don't hesitate to contact us.</p>`)
	fmt.Fprintf(&b, `<p>Best regards,<br>%s</p>`, companyName)

	return wrapLayout("#4caf50", "Payment Confirmation", "Invoice #"+sale.InvoiceNumber, b.String())
}

func invoiceEmailBody(sale *models.Sale, companyName string, attached bool, invoiceURL string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `<p>Dear %s,</p>`, sale.Customer.Name)
	fmt.Fprintf(&b, `<p>Please find attached your invoice for your recent purchase from %s.</p>`, companyName)

	if attached {
		b.WriteString(`<p>Your invoice is attached to this email as a PDF document.</p>`)
	} else {
		b.WriteString(`<p>You can view your invoice online by clicking the button below:</p>`)
		fmt.Fprintf(&b, `<div style="margin: 20px 0; text-align: center;">`+
			`<a href="%s" style="background-color: #bb0620; color: white; padding: 10px 20px; text-decoration: none; border-radius: 4px; display: inline-block;">View Invoice</a>`+
			`</div>`, invoiceURL)
	}

	b.WriteString(`<p>If you have any questions regarding your invoice, please don't hesitate to contact us.</p>`)
	b.WriteString(`<p>Thank you for your business!</p>`)
	fmt.Fprintf(&b, `<p>Best regards,<br>%s</p>`, companyName)

	return wrapLayout("#bb0620", "Invoice", "#"+sale.InvoiceNumber, b.String())
}
