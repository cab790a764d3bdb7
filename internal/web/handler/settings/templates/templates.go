// Package templates provides CRUD pages for the stored email
// templates, including a rendered preview with sample variables.
package templates

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/config"
	"github.com/billgix/billgix/internal/db/controller/template"
	"github.com/billgix/billgix/internal/db/models"
	"github.com/billgix/billgix/internal/render"
	"github.com/billgix/billgix/internal/settings"
	"github.com/billgix/billgix/internal/web/handler"
	"github.com/billgix/billgix/internal/web/navigation"
)

const (
	// Path is the path to the template settings pages.
	Path = "settings/templates"

	// ListTemplate renders the template table.
	ListTemplate = "settings/templates"

	// EditTemplate renders the template edit form.
	EditTemplate = "settings/template_edit"
)

// Form carries the template edit fields. Variables is a comma
// separated list of advisory placeholder names.
type Form struct {
	Name      string `form:"name" validate:"required"`
	Subject   string `form:"subject" validate:"required"`
	Body      string `form:"body" validate:"required"`
	Variables string `form:"variables"`
}

// sampleValues feeds the preview renderer. Placeholders outside this
// map stay verbatim in the preview, which shows editors exactly how an
// unknown token behaves in real mail.
var sampleValues = map[string]string{
	"customer_name":  "Ann",
	"invoice_number": "INV-1001",
	"amount":         "1,234.50",
	"due_date":       "01 Apr 2025",
	"payment_method": "Cash",
	"order_date":     "10 Mar 2025",
	"username":       "ann",
}

// Service is the template settings handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the template settings handler.
var Handler = Service{}

// Init initializes the template settings handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	app.Route("/"+Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Get("/new", s.New)
		router.Post(handler.RouterRootPath, s.Create)
		router.Get("/:id", s.Edit)
		router.Post("/:id", s.Update)
		router.Post("/:id/delete", s.Delete)
		router.Post("/:id/preview", s.Preview)
	})

	return nil
}

func (s *Service) nav(pageTitle string) *navigation.Context {
	return navigation.ForPage(pageTitle, "settings", "templates", "Settings", "/"+Path)
}

// List handles the template table rendering. The default set is seeded
// on first access when the store is empty.
func (s *Service) List(c *fiber.Ctx) error {
	companyName := settings.Lookup(s.db, settings.KeyCompanyName, "Billgix")

	if err := template.EnsureDefaults(s.db, companyName); err != nil {
		log.Error().Err(err).Msg("failed to seed default templates")
	}

	list, err := template.List(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load templates")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load templates")
	}

	return c.Render(ListTemplate, fiber.Map{
		"Navigation": s.nav("Email Templates"),
		"Templates":  list,
	}, handler.BaseLayout)
}

// New handles the empty template form rendering.
func (s *Service) New(c *fiber.Ctx) error {
	return c.Render(EditTemplate, fiber.Map{
		"Navigation": s.nav("New Template"),
		"Template":   &models.EmailTemplate{},
		"Action":     "/" + Path,
	}, handler.BaseLayout)
}

// Create handles the new template submission.
func (s *Service) Create(c *fiber.Ctx) error {
	return s.save(c, &models.EmailTemplate{}, "/"+Path)
}

// Edit handles the pre-filled template form rendering.
func (s *Service) Edit(c *fiber.Ctx) error {
	tmpl, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Template not found")
	}

	return c.Render(EditTemplate, fiber.Map{
		"Navigation": s.nav("Edit Template"),
		"Template":   tmpl,
		"Variables":  strings.Join(template.DecodeVariables(tmpl.Variables), ", "),
		"Action":     "/" + Path + "/" + c.Params("id"),
	}, handler.BaseLayout)
}

// Update handles the template edit submission.
func (s *Service) Update(c *fiber.Ctx) error {
	tmpl, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Template not found")
	}

	return s.save(c, tmpl, "/"+Path+"/"+c.Params("id"))
}

func (s *Service) save(c *fiber.Ctx, tmpl *models.EmailTemplate, action string) error {
	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		return s.renderFormError(c, tmpl, action, "Invalid form data")
	}

	if err := s.validator.Struct(form); err != nil {
		return s.renderFormError(c, tmpl, action, "Validation failed: "+err.Error())
	}

	tmpl.Name = form.Name
	tmpl.Subject = form.Subject
	tmpl.Body = form.Body
	tmpl.Variables = template.EncodeVariables(splitVariables(form.Variables))

	if err := template.Save(s.db, tmpl); err != nil {
		log.Error().Err(err).Str("name", tmpl.Name).Msg("failed to save template")
		return s.renderFormError(c, tmpl, action, "Failed to save template")
	}

	log.Info().Str("name", tmpl.Name).Msg("Email template saved")

	return c.Redirect("/" + Path)
}

// Delete handles template deletion.
func (s *Service) Delete(c *fiber.Ctx) error {
	tmpl, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Template not found")
	}

	if err := template.Delete(s.db, tmpl.ID); err != nil {
		log.Error().Err(err).Uint64("id", tmpl.ID).Msg("failed to delete template")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to delete template")
	}

	log.Info().Str("name", tmpl.Name).Msg("Email template deleted")

	return c.Redirect("/" + Path)
}

// Preview renders the stored template with sample variables and
// returns the raw HTML.
func (s *Service) Preview(c *fiber.Ctx) error {
	tmpl, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Template not found")
	}

	vars := make(map[string]string, len(sampleValues)+1)
	for k, v := range sampleValues {
		vars[k] = v
	}

	vars["company_name"] = settings.Lookup(s.db, settings.KeyCompanyName, "Billgix")

	subject, body := render.Template(tmpl, vars)

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)

	return c.SendString("<h4>" + subject + "</h4>" + body)
}

func (s *Service) load(c *fiber.Ctx) (*models.EmailTemplate, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, err
	}

	return template.GetByID(s.db, uint64(id))
}

func (s *Service) renderFormError(c *fiber.Ctx, tmpl *models.EmailTemplate, action, message string) error {
	return c.Status(fiber.StatusBadRequest).Render(EditTemplate, fiber.Map{
		"Navigation": s.nav("Template"),
		"Template":   tmpl,
		"Action":     action,
		"Error":      message,
	}, handler.BaseLayout)
}

func splitVariables(raw string) []string {
	parts := strings.Split(raw, ",")

	out := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
