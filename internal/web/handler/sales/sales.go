// Package sales provides handlers for sale creation, invoicing and
// payment tracking. Sale mutations trigger best-effort notification
// dispatches after the database work has committed.
package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/billing"
	"github.com/billgix/billgix/internal/config"
	"github.com/billgix/billgix/internal/db/models"
	"github.com/billgix/billgix/internal/notify"
	"github.com/billgix/billgix/internal/pdfgen"
	"github.com/billgix/billgix/internal/settings"
	"github.com/billgix/billgix/internal/web/handler"
	"github.com/billgix/billgix/internal/web/navigation"
)

const (
	// Path is the path to the sale pages.
	Path = "/sales"

	// ListTemplate renders the sales table.
	ListTemplate = "sales/sales"

	// FormTemplate renders the new sale form.
	FormTemplate = "sales/form"

	// ViewTemplate renders the sale detail page.
	ViewTemplate = "sales/view"

	// PrintTemplate renders the printable invoice, outside the base
	// layout. It is the target of the invoice email fallback link.
	PrintTemplate = "sales/print"
)

// Service is the sales handler service.
type Service struct {
	handler.Service
	cfg        *config.Config
	db         *gorm.DB
	validator  *validator.Validate
	dispatcher *notify.Dispatcher
	docs       pdfgen.Renderer
}

// Handler is the sales handler.
var Handler = Service{}

// Init initializes the sales handler. docs may be nil: the PDF
// download route then redirects to the printable view.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, dispatcher *notify.Dispatcher, docs pdfgen.Renderer) error {
	if app == nil || cfg == nil || db == nil || dispatcher == nil {
		return errors.New("app, cfg, db or dispatcher is nil")
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()
	s.dispatcher = dispatcher
	s.docs = docs

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Get("/new", s.New)
		router.Post(handler.RouterRootPath, s.Create)
		router.Get("/:id", s.View)
		router.Get("/:id/print", s.Print)
		router.Get("/:id/pdf", s.PDF)
		router.Post("/:id/pay", s.MarkPaid)
		router.Post("/:id/email", s.EmailInvoice)
	})

	return nil
}

func nav(pageTitle string) *navigation.Context {
	return navigation.ForPage(pageTitle, "sales", "sales", "Billing", Path)
}

// money returns an amount formatter bound to the current currency
// settings.
func (s *Service) money() func(float64) string {
	company := settings.Resolve(s.db, settings.GroupCompany, settings.CompanyDefaults())
	invoice := settings.Resolve(s.db, settings.GroupInvoice, settings.InvoiceDefaults())

	symbol := company.Get(settings.KeyCurrency)
	position := invoice.Get(settings.KeySymbolPosition)

	return func(amount float64) string {
		return billing.FormatAmount(amount, symbol, position)
	}
}

// List handles the sales table rendering.
func (s *Service) List(c *fiber.Ctx) error {
	var sales []models.Sale

	if err := s.db.Preload("Customer").Order("created_at desc").Find(&sales).Error; err != nil {
		log.Error().Err(err).Msg("failed to load sales")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load sales")
	}

	money := s.money()

	rows := make([]fiber.Map, 0, len(sales))
	for _, sale := range sales {
		rows = append(rows, fiber.Map{
			"Sale":  sale,
			"Total": money(sale.TotalPrice),
		})
	}

	return c.Render(ListTemplate, fiber.Map{
		"Navigation": nav("Sales"),
		"Sales":      rows,
	}, handler.BaseLayout)
}

// View handles the sale detail page rendering.
func (s *Service) View(c *fiber.Ctx) error {
	sale, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Sale not found")
	}

	money := s.money()

	items := make([]fiber.Map, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, fiber.Map{
			"Item":  item,
			"Price": money(item.Price),
			"Total": money(item.Total),
		})
	}

	return c.Render(ViewTemplate, fiber.Map{
		"Navigation": nav("Invoice " + sale.InvoiceNumber),
		"Sale":       sale,
		"Items":      items,
		"Subtotal":   money(sale.Subtotal),
		"Tax":        money(sale.TaxAmount),
		"Discount":   money(sale.DiscountAmount),
		"Total":      money(sale.TotalPrice),
		"PDFEnabled": s.docs != nil,
	}, handler.BaseLayout)
}

// Print handles the printable invoice rendering, without the base
// layout.
func (s *Service) Print(c *fiber.Ctx) error {
	sale, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Sale not found")
	}

	doc := pdfgen.DocumentFromSale(s.db, sale)
	money := s.money()

	items := make([]fiber.Map, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, fiber.Map{
			"Item":  item,
			"Price": money(item.Price),
			"Total": money(item.Total),
		})
	}

	return c.Render(PrintTemplate, fiber.Map{
		"Doc":      doc,
		"Sale":     sale,
		"Items":    items,
		"Subtotal": money(sale.Subtotal),
		"Tax":      money(sale.TaxAmount),
		"Discount": money(sale.DiscountAmount),
		"Total":    money(sale.TotalPrice),
	})
}

// PDF handles the invoice PDF download. Without a renderer the
// printable view serves as the fallback.
func (s *Service) PDF(c *fiber.Ctx) error {
	sale, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Sale not found")
	}

	if s.docs == nil {
		return c.Redirect(Path + "/" + c.Params("id") + "/print")
	}

	data, err := s.docs.RenderInvoice(pdfgen.DocumentFromSale(s.db, sale))
	if err != nil {
		log.Error().Err(err).Str("invoice", sale.InvoiceNumber).Msg("failed to render invoice PDF")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to render PDF")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "Invoice_"+sale.InvoiceNumber+".pdf"))

	return c.Send(data)
}

// MarkPaid handles the payment received action.
func (s *Service) MarkPaid(c *fiber.Ctx) error {
	sale, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Sale not found")
	}

	if sale.PaymentStatus != models.PaymentStatusPaid {
		sale.PaymentStatus = models.PaymentStatusPaid

		if err := s.db.Model(sale).Update("payment_status", models.PaymentStatusPaid).Error; err != nil {
			log.Error().Err(err).Uint64("id", sale.ID).Msg("failed to mark sale paid")
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to update sale")
		}

		s.dispatch(c.UserContext(), notify.EventPaymentReceived, sale.ID)
	}

	return c.Redirect(Path + "/" + c.Params("id"))
}

// EmailInvoice handles the explicit invoice email action.
func (s *Service) EmailInvoice(c *fiber.Ctx) error {
	sale, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Sale not found")
	}

	s.dispatch(c.UserContext(), notify.EventInvoiceEmail, sale.ID)

	return c.Redirect(Path + "/" + c.Params("id"))
}

// dispatch hands an event to the dispatcher and logs the outcome.
// Notification failures never surface to the user: the business
// operation has already committed.
func (s *Service) dispatch(ctx context.Context, event notify.EventType, entityID uint64) {
	result, err := s.dispatcher.Dispatch(ctx, event, entityID)
	if err != nil {
		log.Error().Err(err).Str("event", string(event)).Uint64("entity", entityID).Msg("Notification dispatch failed")
		return
	}

	if result.Status == notify.StatusSkipped {
		log.Debug().Str("event", string(event)).Uint64("entity", entityID).Str("reason", result.Reason).Msg("Notification skipped")
		return
	}

	log.Info().Str("event", string(event)).Uint64("entity", entityID).Msg("Notification dispatched")
}

func (s *Service) load(c *fiber.Ctx) (*models.Sale, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, err
	}

	var sale models.Sale

	if err := s.db.Preload("Customer").Preload("Items.Product").First(&sale, id).Error; err != nil {
		return nil, err
	}

	return &sale, nil
}
