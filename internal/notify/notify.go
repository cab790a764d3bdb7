// Package notify decides, per business event, whether a notification
// is enabled, resolves its recipient, renders the content and hands it
// to the mail transport. Dispatch outcomes are results, not errors:
// a disabled flag or a missing recipient is an expected skip.
package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/billing"
	"github.com/billgix/billgix/internal/db/models"
	"github.com/billgix/billgix/internal/mail"
	"github.com/billgix/billgix/internal/pdfgen"
	"github.com/billgix/billgix/internal/settings"
)

// EventType identifies a dispatchable business event.
type EventType string

const (
	// EventSaleCreated fires after a sale with line items is stored.
	EventSaleCreated EventType = "sale_created"
	// EventLowStock fires when a product's stock is observed at or
	// below the configured threshold.
	EventLowStock EventType = "low_stock"
	// EventPaymentReceived fires when a sale's payment status moves
	// to Paid.
	EventPaymentReceived EventType = "payment_received"
	// EventInvoiceEmail is an explicit user action, never automatic.
	EventInvoiceEmail EventType = "invoice_email"
)

// Status is the outcome class of a dispatch.
type Status string

const (
	// StatusDispatched means content was rendered and handed to the
	// transport.
	StatusDispatched Status = "dispatched"
	// StatusSkipped means the event was intentionally not sent.
	StatusSkipped Status = "skipped"
)

// Skip reasons reported in Result.Reason.
const (
	ReasonDisabled         = "notifications disabled for this event"
	ReasonMissingRecipient = "no recipient address"
	ReasonStockNotLow      = "stock above low stock threshold"
)

// ErrUnknownEvent is returned for event types the dispatcher does not
// handle.
var ErrUnknownEvent = errors.New("unknown notification event type")

// Result is the outcome of a single dispatch.
type Result struct {
	Status Status
	Reason string
}

func dispatched() Result {
	return Result{Status: StatusDispatched}
}

func skipped(reason string) Result {
	return Result{Status: StatusSkipped, Reason: reason}
}

// Dispatcher evaluates the per-event state machine. Enablement flags,
// thresholds and recipients are resolved from the settings store on
// every call, never cached.
type Dispatcher struct {
	db      *gorm.DB
	mailer  mail.Sender
	docs    pdfgen.Renderer
	baseURL string
}

// New returns a dispatcher. docs may be nil: invoice emails then carry
// a link to the printable view instead of a PDF attachment.
func New(db *gorm.DB, mailer mail.Sender, docs pdfgen.Renderer, baseURL string) *Dispatcher {
	return &Dispatcher{db: db, mailer: mailer, docs: docs, baseURL: baseURL}
}

// Dispatch runs the state machine for one event. A skip is reported in
// the result, not as an error; errors are reserved for entity lookup
// and transport failures, which callers log and swallow because
// notifications are best-effort.
func (d *Dispatcher) Dispatch(ctx context.Context, event EventType, entityID uint64) (Result, error) {
	switch event {
	case EventSaleCreated:
		return d.saleCreated(ctx, entityID)
	case EventLowStock:
		return d.lowStock(ctx, entityID)
	case EventPaymentReceived:
		return d.paymentReceived(ctx, entityID)
	case EventInvoiceEmail:
		return d.invoiceEmail(ctx, entityID)
	default:
		return Result{}, errors.Wrapf(ErrUnknownEvent, "%q", event)
	}
}

func (d *Dispatcher) saleCreated(ctx context.Context, saleID uint64) (Result, error) {
	notif := settings.Resolve(d.db, settings.GroupNotification, settings.NotificationDefaults())

	if !notif.Bool(settings.KeyNotifyNewOrder) {
		return skipped(ReasonDisabled), nil
	}

	sale, err := d.loadSale(saleID)
	if err != nil {
		return Result{}, err
	}

	if sale.Customer.Email == "" {
		return skipped(ReasonMissingRecipient), nil
	}

	subject := "Your Order Confirmation - " + sale.InvoiceNumber
	body := orderConfirmationBody(sale, d.companyName(), d.money())

	if err := d.send(ctx, sale.Customer.Email, subject, body); err != nil {
		return Result{}, err
	}

	return dispatched(), nil
}

func (d *Dispatcher) lowStock(ctx context.Context, productID uint64) (Result, error) {
	notif := settings.Resolve(d.db, settings.GroupNotification, settings.NotificationDefaults())

	if !notif.Bool(settings.KeyNotifyLowStock) {
		return skipped(ReasonDisabled), nil
	}

	var product models.Product

	if err := d.db.First(&product, productID).Error; err != nil {
		return Result{}, errors.Wrapf(err, "loading product %d", productID)
	}

	// The threshold is read here, at dispatch time, so settings edits
	// take effect for the very next event.
	threshold := notif.Float(settings.KeyLowStockThreshold, 5)
	if product.Qty > threshold {
		return skipped(ReasonStockNotLow), nil
	}

	recipient := notif.Get(settings.KeyAdminEmail)
	if recipient == "" {
		email := settings.Resolve(d.db, settings.GroupEmail, settings.EmailDefaults())
		recipient = email.Get(settings.KeyEmailFrom)
	}

	if recipient == "" {
		return skipped(ReasonMissingRecipient), nil
	}

	subject := "Low Stock Alert - " + product.ItemName
	productURL := fmt.Sprintf("%s/products/%d/edit", d.baseURL, product.ID)
	body := lowStockBody(&product, notif.Get(settings.KeyLowStockThreshold), productURL)

	if err := d.send(ctx, recipient, subject, body); err != nil {
		return Result{}, err
	}

	return dispatched(), nil
}

func (d *Dispatcher) paymentReceived(ctx context.Context, saleID uint64) (Result, error) {
	notif := settings.Resolve(d.db, settings.GroupNotification, settings.NotificationDefaults())

	if !notif.Bool(settings.KeyNotifyPaymentReceived) {
		return skipped(ReasonDisabled), nil
	}

	sale, err := d.loadSale(saleID)
	if err != nil {
		return Result{}, err
	}

	if sale.Customer.Email == "" {
		return skipped(ReasonMissingRecipient), nil
	}

	subject := "Payment Confirmation - Invoice #" + sale.InvoiceNumber
	body := paymentConfirmationBody(sale, d.companyName(), d.money())

	if err := d.send(ctx, sale.Customer.Email, subject, body); err != nil {
		return Result{}, err
	}

	return dispatched(), nil
}

// invoiceEmail has no enablement flag: it only runs on explicit user
// action. A missing document renderer is a policy branch, not an
// error: the mail still goes out with a link to the printable view.
func (d *Dispatcher) invoiceEmail(ctx context.Context, saleID uint64) (Result, error) {
	sale, err := d.loadSale(saleID)
	if err != nil {
		return Result{}, err
	}

	if sale.Customer.Email == "" {
		return skipped(ReasonMissingRecipient), nil
	}

	var attachments []string

	if d.docs != nil {
		data, renderErr := d.docs.RenderInvoice(pdfgen.DocumentFromSale(d.db, sale))
		if renderErr != nil {
			log.Error().Err(renderErr).Str("invoice", sale.InvoiceNumber).Msg("Invoice PDF rendering failed, sending link instead")
		} else {
			path := filepath.Join(os.TempDir(), fmt.Sprintf("Invoice_%s_%s.pdf", sale.InvoiceNumber, uuid.NewString()))

			if writeErr := os.WriteFile(path, data, 0o600); writeErr != nil {
				log.Error().Err(writeErr).Str("invoice", sale.InvoiceNumber).Msg("Writing invoice PDF failed, sending link instead")
			} else {
				// The temp file lives exactly as long as this
				// invocation, whether the send succeeds or not.
				defer os.Remove(path)

				attachments = append(attachments, path)
			}
		}
	}

	companyName := d.companyName()
	subject := fmt.Sprintf("Invoice #%s - %s", sale.InvoiceNumber, companyName)
	invoiceURL := fmt.Sprintf("%s/sales/%d/print", d.baseURL, sale.ID)
	body := invoiceEmailBody(sale, companyName, len(attachments) > 0, invoiceURL)

	if err := d.send(ctx, sale.Customer.Email, subject, body, attachments...); err != nil {
		return Result{}, err
	}

	return dispatched(), nil
}

func (d *Dispatcher) loadSale(saleID uint64) (*models.Sale, error) {
	var sale models.Sale

	err := d.db.Preload("Customer").Preload("Items.Product").First(&sale, saleID).Error
	if err != nil {
		return nil, errors.Wrapf(err, "loading sale %d", saleID)
	}

	return &sale, nil
}

// send appends the configured footer and hands the message to the
// transport.
func (d *Dispatcher) send(ctx context.Context, to, subject, htmlBody string, attachments ...string) error {
	footer := settings.Lookup(d.db, settings.KeyEmailFooter, "Thank you for using Billgix")

	msg := &mail.Message{
		To:          to,
		Subject:     subject,
		HTMLBody:    htmlBody + footerBlock(footer),
		Attachments: attachments,
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		return errors.Wrapf(err, "dispatching %q to %s", subject, to)
	}

	return nil
}

// money returns a formatter bound to the currency settings as resolved
// right now.
func (d *Dispatcher) money() func(float64) string {
	company := settings.Resolve(d.db, settings.GroupCompany, settings.CompanyDefaults())
	invoice := settings.Resolve(d.db, settings.GroupInvoice, settings.InvoiceDefaults())

	symbol := company.Get(settings.KeyCurrency)
	position := invoice.Get(settings.KeySymbolPosition)

	return func(amount float64) string {
		return billing.FormatAmount(amount, symbol, position)
	}
}

func (d *Dispatcher) companyName() string {
	company := settings.Resolve(d.db, settings.GroupCompany, settings.CompanyDefaults())

	return company.Get(settings.KeyCompanyName)
}
