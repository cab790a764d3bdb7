// Package invoice provides the invoice layout and numbering settings page.
package invoice

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/config"
	"github.com/billgix/billgix/internal/settings"
	"github.com/billgix/billgix/internal/web/handler"
	"github.com/billgix/billgix/internal/web/navigation"
)

const (
	// Path is the path to the invoice settings page.
	Path = "settings/invoice"
)

// Form carries the invoice settings fields.
type Form struct {
	Prefix             string  `form:"invoice_prefix" validate:"required"`
	NextNumber         int     `form:"invoice_next_number" validate:"gte=1"`
	FooterText         string  `form:"invoice_footer_text"`
	Terms              string  `form:"invoice_terms"`
	IncludeLogo        string  `form:"invoice_include_logo"`
	TaxLabel           string  `form:"invoice_tax_label"`
	DefaultTaxRate     float64 `form:"invoice_default_tax_rate" validate:"gte=0,lte=100"`
	DueDays            int     `form:"invoice_due_days" validate:"gte=0"`
	SymbolPosition     string  `form:"invoice_currency_symbol_position" validate:"oneof=before after"`
	EnableInvoiceEmail string  `form:"enable_invoice_email"`
}

// Service is the invoice settings handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the invoice settings handler.
var Handler = Service{}

// Init initializes the invoice settings handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	app.Route("/"+Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

func (s *Service) nav() *navigation.Context {
	return navigation.ForPage("Invoice Settings", "settings", "invoice", "Settings", "/"+Path)
}

func (s *Service) render(c *fiber.Ctx, extra fiber.Map) error {
	data := fiber.Map{
		"Navigation": s.nav(),
		"Settings":   settings.Resolve(s.db, settings.GroupInvoice, settings.InvoiceDefaults()),
	}

	for k, v := range extra {
		data[k] = v
	}

	return c.Render(Path, data, handler.BaseLayout)
}

// Get handles the invoice settings page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.render(c, nil)
}

func checkbox(value string) string {
	if value == "on" || value == "1" || value == "true" {
		return "1"
	}

	return "0"
}

// Post handles the invoice settings form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		c.Status(fiber.StatusBadRequest)
		return s.render(c, fiber.Map{"Error": "Invalid form data"})
	}

	if err := s.validator.Struct(form); err != nil {
		c.Status(fiber.StatusBadRequest)
		return s.render(c, fiber.Map{"Error": "Validation failed: " + err.Error()})
	}

	pairs := map[string]string{
		settings.KeyInvoicePrefix:     form.Prefix,
		settings.KeyInvoiceNextNumber: strconv.Itoa(form.NextNumber),
		"invoice_footer_text":         form.FooterText,
		"invoice_terms":               form.Terms,
		"invoice_include_logo":        checkbox(form.IncludeLogo),
		"invoice_tax_label":           form.TaxLabel,
		"invoice_default_tax_rate":    strconv.FormatFloat(form.DefaultTaxRate, 'f', -1, 64),
		"invoice_due_days":            strconv.Itoa(form.DueDays),
		settings.KeySymbolPosition:    form.SymbolPosition,
		"enable_invoice_email":        checkbox(form.EnableInvoiceEmail),
	}

	for key, value := range pairs {
		if err := settings.Upsert(s.db, key, value, settings.GroupInvoice); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to save invoice setting")
			c.Status(fiber.StatusInternalServerError)
			return s.render(c, fiber.Map{"Error": "Failed to save settings"})
		}
	}

	log.Info().Msg("Invoice settings saved")

	return s.render(c, fiber.Map{"Success": "Settings saved successfully"})
}
