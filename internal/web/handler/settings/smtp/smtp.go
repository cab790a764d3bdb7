// Package smtp provides the outbound email settings page.
package smtp

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
	// Path is the path to the email settings page.
	Path = "settings/smtp"
)

// Form carries the email settings fields. Checkbox values arrive as
// "on" when checked and are absent otherwise.
type Form struct {
	SMTPEnabled    string `form:"smtp_enabled"`
	SMTPHost       string `form:"smtp_host"`
	SMTPPort       int    `form:"smtp_port" validate:"gte=0,lte=65535"`
	SMTPUsername   string `form:"smtp_username"`
	SMTPPassword   string `form:"smtp_password"`
	SMTPEncryption string `form:"smtp_encryption" validate:"omitempty,oneof=tls ssl none"`
	EmailFrom      string `form:"email_from" validate:"omitempty,email"`
	EmailFromName  string `form:"email_from_name"`
	EmailFooter    string `form:"email_footer"`
}

// Service is the email settings handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the email settings handler.
var Handler = Service{}

// Init initializes the email settings handler.
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
	return navigation.ForPage("Email Settings", "settings", "smtp", "Settings", "/"+Path)
}

func (s *Service) values() settings.Values {
	return settings.Resolve(s.db, settings.GroupEmail, settings.EmailDefaults())
}

func (s *Service) render(c *fiber.Ctx, extra fiber.Map) error {
	data := fiber.Map{
		"Navigation": s.nav(),
		"Settings":   s.values(),
	}

	for k, v := range extra {
		data[k] = v
	}

	return c.Render(Path, data, handler.BaseLayout)
}

// Get handles the email settings page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.render(c, nil)
}

func checkbox(value string) string {
	if value == "on" || value == "1" || value == "true" {
		return "1"
	}

	return "0"
}

// Post handles the email settings form submission.
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
		settings.KeySMTPEnabled:    checkbox(form.SMTPEnabled),
		"smtp_host":                form.SMTPHost,
		"smtp_port":                strconv.Itoa(form.SMTPPort),
		"smtp_username":            form.SMTPUsername,
		"smtp_encryption":          form.SMTPEncryption,
		settings.KeyEmailFrom:      form.EmailFrom,
		settings.KeyEmailFromName:  form.EmailFromName,
		settings.KeyEmailFooter:    form.EmailFooter,
	}

	// Keep the stored password when the field is left blank.
	if form.SMTPPassword != "" {
		pairs["smtp_password"] = form.SMTPPassword
	}

	for key, value := range pairs {
		if err := settings.Upsert(s.db, key, value, settings.GroupEmail); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to save email setting")
			c.Status(fiber.StatusInternalServerError)
			return s.render(c, fiber.Map{"Error": "Failed to save settings"})
		}
	}

	log.Info().Msg("Email settings saved")

	return s.render(c, fiber.Map{"Success": "Settings saved successfully"})
}
