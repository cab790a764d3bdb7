// Package customers provides handlers for customer record management.
package customers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/config"
	"github.com/billgix/billgix/internal/db/models"
	"github.com/billgix/billgix/internal/web/handler"
	"github.com/billgix/billgix/internal/web/navigation"
)

const (
	// Path is the path to the customer pages.
	Path = "/customers"

	// ListTemplate renders the customer table.
	ListTemplate = "customers/customers"

	// FormTemplate renders the create/edit form.
	FormTemplate = "customers/form"
)

// Form carries the customer create/edit fields. Email is optional;
// customers without one never receive notifications.
type Form struct {
	Name    string `form:"name" validate:"required"`
	Phone   string `form:"phone"`
	Email   string `form:"email" validate:"omitempty,email"`
	Address string `form:"address"`
}

// Service is the customers handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the customers handler.
var Handler = Service{}

// Init initializes the customers handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Get("/new", s.New)
		router.Post(handler.RouterRootPath, s.Create)
		router.Get("/:id/edit", s.Edit)
		router.Post("/:id", s.Update)
		router.Post("/:id/delete", s.Delete)
	})

	return nil
}

func nav(pageTitle string) *navigation.Context {
	return navigation.ForPage(pageTitle, "customers", "customers", "Contacts", Path)
}

// List handles the customer table rendering.
func (s *Service) List(c *fiber.Ctx) error {
	var customers []models.Customer

	if err := s.db.Order("name asc").Find(&customers).Error; err != nil {
		log.Error().Err(err).Msg("failed to load customers")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load customers")
	}

	return c.Render(ListTemplate, fiber.Map{
		"Navigation": nav("Customers"),
		"Customers":  customers,
	}, handler.BaseLayout)
}

// New handles the empty customer form rendering.
func (s *Service) New(c *fiber.Ctx) error {
	return c.Render(FormTemplate, fiber.Map{
		"Navigation": nav("New Customer"),
		"Customer":   &models.Customer{},
		"Action":     Path,
	}, handler.BaseLayout)
}

// Create handles the customer create form submission.
func (s *Service) Create(c *fiber.Ctx) error {
	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		return s.renderFormError(c, Path, &models.Customer{}, "Invalid form data")
	}

	customer := models.Customer{
		Name:    form.Name,
		Phone:   form.Phone,
		Email:   form.Email,
		Address: form.Address,
	}

	if err := s.validator.Struct(form); err != nil {
		return s.renderFormError(c, Path, &customer, "Validation failed: "+err.Error())
	}

	if err := s.db.Create(&customer).Error; err != nil {
		log.Error().Err(err).Str("name", form.Name).Msg("failed to create customer")
		return s.renderFormError(c, Path, &customer, "Failed to save customer")
	}

	log.Info().Str("name", customer.Name).Msg("Customer created")

	return c.Redirect(Path)
}

// Edit handles the pre-filled customer form rendering.
func (s *Service) Edit(c *fiber.Ctx) error {
	customer, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Customer not found")
	}

	return c.Render(FormTemplate, fiber.Map{
		"Navigation": nav("Edit Customer"),
		"Customer":   customer,
		"Action":     Path + "/" + c.Params("id"),
	}, handler.BaseLayout)
}

// Update handles the customer edit form submission.
func (s *Service) Update(c *fiber.Ctx) error {
	customer, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Customer not found")
	}

	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		return s.renderFormError(c, Path+"/"+c.Params("id"), customer, "Invalid form data")
	}

	if err := s.validator.Struct(form); err != nil {
		return s.renderFormError(c, Path+"/"+c.Params("id"), customer, "Validation failed: "+err.Error())
	}

	customer.Name = form.Name
	customer.Phone = form.Phone
	customer.Email = form.Email
	customer.Address = form.Address

	if err := s.db.Save(customer).Error; err != nil {
		log.Error().Err(err).Uint64("id", customer.ID).Msg("failed to update customer")
		return s.renderFormError(c, Path+"/"+c.Params("id"), customer, "Failed to save customer")
	}

	log.Info().Uint64("id", customer.ID).Msg("Customer updated")

	return c.Redirect(Path)
}

// Delete handles customer deletion.
func (s *Service) Delete(c *fiber.Ctx) error {
	customer, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Customer not found")
	}

	if err := s.db.Delete(customer).Error; err != nil {
		log.Error().Err(err).Uint64("id", customer.ID).Msg("failed to delete customer")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to delete customer")
	}

	log.Info().Uint64("id", customer.ID).Msg("Customer deleted")

	return c.Redirect(Path)
}

func (s *Service) load(c *fiber.Ctx) (*models.Customer, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, err
	}

	var customer models.Customer

	if err := s.db.First(&customer, id).Error; err != nil {
		return nil, err
	}

	return &customer, nil
}

func (s *Service) renderFormError(c *fiber.Ctx, action string, customer *models.Customer, message string) error {
	return c.Status(fiber.StatusBadRequest).Render(FormTemplate, fiber.Map{
		"Navigation": nav("Customer"),
		"Customer":   customer,
		"Action":     action,
		"Error":      message,
	}, handler.BaseLayout)
}
