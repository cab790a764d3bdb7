// Package notification provides the notification settings page: which
// events send mail, who receives stock alerts and at what threshold.
package notification

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
	// Path is the path to the notification settings page.
	Path = "settings/notification"
)

// Form carries the notification settings fields.
type Form struct {
	NotifyNewOrder        string  `form:"notify_new_order"`
	NotifyLowStock        string  `form:"notify_low_stock"`
	NotifyPaymentReceived string  `form:"notify_payment_received"`
	LowStockThreshold     float64 `form:"low_stock_threshold" validate:"gte=0"`
	AdminEmail            string  `form:"admin_email" validate:"omitempty,email"`
	PaymentReminderDays   int     `form:"payment_reminder_days" validate:"gte=0"`
	OutOfStock            string  `form:"out_of_stock_notification"`
	DailyReport           string  `form:"daily_report_summary"`
}

// Service is the notification settings handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the notification settings handler.
var Handler = Service{}

// Init initializes the notification settings handler.
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
	return navigation.ForPage("Notification Settings", "settings", "notification", "Settings", "/"+Path)
}

func (s *Service) render(c *fiber.Ctx, extra fiber.Map) error {
	data := fiber.Map{
		"Navigation": s.nav(),
		"Settings":   settings.Resolve(s.db, settings.GroupNotification, settings.NotificationDefaults()),
	}

	for k, v := range extra {
		data[k] = v
	}

	return c.Render(Path, data, handler.BaseLayout)
}

// Get handles the notification settings page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.render(c, nil)
}

func checkbox(value string) string {
	if value == "on" || value == "1" || value == "true" {
		return "1"
	}

	return "0"
}

// Post handles the notification settings form submission.
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
		settings.KeyNotifyNewOrder:        checkbox(form.NotifyNewOrder),
		settings.KeyNotifyLowStock:        checkbox(form.NotifyLowStock),
		settings.KeyNotifyPaymentReceived: checkbox(form.NotifyPaymentReceived),
		settings.KeyLowStockThreshold:     strconv.FormatFloat(form.LowStockThreshold, 'f', -1, 64),
		settings.KeyAdminEmail:            form.AdminEmail,
		"payment_reminder_days":           strconv.Itoa(form.PaymentReminderDays),
		"out_of_stock_notification":       checkbox(form.OutOfStock),
		"daily_report_summary":            checkbox(form.DailyReport),
	}

	for key, value := range pairs {
		if err := settings.Upsert(s.db, key, value, settings.GroupNotification); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to save notification setting")
			c.Status(fiber.StatusInternalServerError)
			return s.render(c, fiber.Map{"Error": "Failed to save settings"})
		}
	}

	log.Info().Msg("Notification settings saved")

	return s.render(c, fiber.Map{"Success": "Settings saved successfully"})
}
