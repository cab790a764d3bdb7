// Package company provides the company branding settings page.
package company

import (
	"errors"

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
	// Path is the path to the company settings page.
	Path = "settings/company"
)

// Form carries the company settings fields.
type Form struct {
	CompanyName    string `form:"company_name" validate:"required"`
	CompanyEmail   string `form:"company_email" validate:"omitempty,email"`
	CompanyPhone   string `form:"company_phone"`
	CompanyAddress string `form:"company_address"`
	Currency       string `form:"currency" validate:"required"`
}

// Service is the company settings handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the company settings handler.
var Handler = Service{}

// Init initializes the company settings handler.
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
	return navigation.ForPage("Company Settings", "settings", "company", "Settings", "/"+Path)
}

func (s *Service) values() settings.Values {
	return settings.Resolve(s.db, settings.GroupCompany, settings.CompanyDefaults())
}

// Get handles the company settings page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render(Path, fiber.Map{
		"Navigation": s.nav(),
		"Settings":   s.values(),
	}, handler.BaseLayout)
}

// Post handles the company settings form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(Path, fiber.Map{
			"Navigation": s.nav(),
			"Settings":   s.values(),
			"Error":      "Invalid form data",
		}, handler.BaseLayout)
	}

	if err := s.validator.Struct(form); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(Path, fiber.Map{
			"Navigation": s.nav(),
			"Settings":   s.values(),
			"Error":      "Validation failed: " + err.Error(),
		}, handler.BaseLayout)
	}

	pairs := map[string]string{
		settings.KeyCompanyName:  form.CompanyName,
		settings.KeyCompanyEmail: form.CompanyEmail,
		"company_phone":          form.CompanyPhone,
		"company_address":        form.CompanyAddress,
		settings.KeyCurrency:     form.Currency,
	}

	for key, value := range pairs {
		if err := settings.Upsert(s.db, key, value, settings.GroupCompany); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to save company setting")
			return c.Status(fiber.StatusInternalServerError).Render(Path, fiber.Map{
				"Navigation": s.nav(),
				"Settings":   s.values(),
				"Error":      "Failed to save settings",
			}, handler.BaseLayout)
		}
	}

	log.Info().Msg("Company settings saved")

	return c.Render(Path, fiber.Map{
		"Navigation": s.nav(),
		"Settings":   s.values(),
		"Success":    "Settings saved successfully",
	}, handler.BaseLayout)
}
