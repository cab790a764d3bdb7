// Package products provides handlers for inventory item management.
package products

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
	// Path is the path to the product pages.
	Path = "/products"

	// ListTemplate renders the product table.
	ListTemplate = "products/products"

	// FormTemplate renders the create/edit form.
	FormTemplate = "products/form"
)

// Form carries the product create/edit fields.
type Form struct {
	ItemName string  `form:"item_name" validate:"required"`
	ItemCode string  `form:"item_code" validate:"required"`
	HSN      string  `form:"hsn"`
	UnitType string  `form:"unit_type"`
	Qty      float64 `form:"qty" validate:"gte=0"`
	Price    float64 `form:"price" validate:"gte=0"`
}

// Service is the products handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the products handler.
var Handler = Service{}

// Init initializes the products handler.
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
	return navigation.ForPage(pageTitle, "products", "products", "Inventory", Path)
}

// List handles the product table rendering.
func (s *Service) List(c *fiber.Ctx) error {
	var products []models.Product

	if err := s.db.Order("item_name asc").Find(&products).Error; err != nil {
		log.Error().Err(err).Msg("failed to load products")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load products")
	}

	return c.Render(ListTemplate, fiber.Map{
		"Navigation": nav("Products"),
		"Products":   products,
	}, handler.BaseLayout)
}

// New handles the empty product form rendering.
func (s *Service) New(c *fiber.Ctx) error {
	return c.Render(FormTemplate, fiber.Map{
		"Navigation": nav("New Product"),
		"Product":    &models.Product{},
		"Action":     Path,
	}, handler.BaseLayout)
}

// Create handles the product create form submission.
func (s *Service) Create(c *fiber.Ctx) error {
	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		return s.renderFormError(c, Path, &models.Product{}, "Invalid form data")
	}

	product := models.Product{
		ItemName: form.ItemName,
		ItemCode: form.ItemCode,
		HSN:      form.HSN,
		UnitType: form.UnitType,
		Qty:      form.Qty,
		Price:    form.Price,
	}

	if err := s.validator.Struct(form); err != nil {
		return s.renderFormError(c, Path, &product, "Validation failed: "+err.Error())
	}

	if err := s.db.Create(&product).Error; err != nil {
		log.Error().Err(err).Str("item_code", form.ItemCode).Msg("failed to create product")
		return s.renderFormError(c, Path, &product, "Failed to save product")
	}

	log.Info().Str("item_code", product.ItemCode).Msg("Product created")

	return c.Redirect(Path)
}

// Edit handles the pre-filled product form rendering.
func (s *Service) Edit(c *fiber.Ctx) error {
	product, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Product not found")
	}

	return c.Render(FormTemplate, fiber.Map{
		"Navigation": nav("Edit Product"),
		"Product":    product,
		"Action":     Path + "/" + c.Params("id"),
	}, handler.BaseLayout)
}

// Update handles the product edit form submission.
func (s *Service) Update(c *fiber.Ctx) error {
	product, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Product not found")
	}

	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		return s.renderFormError(c, Path+"/"+c.Params("id"), product, "Invalid form data")
	}

	if err := s.validator.Struct(form); err != nil {
		return s.renderFormError(c, Path+"/"+c.Params("id"), product, "Validation failed: "+err.Error())
	}

	product.ItemName = form.ItemName
	product.ItemCode = form.ItemCode
	product.HSN = form.HSN
	product.UnitType = form.UnitType
	product.Qty = form.Qty
	product.Price = form.Price

	if err := s.db.Save(product).Error; err != nil {
		log.Error().Err(err).Uint64("id", product.ID).Msg("failed to update product")
		return s.renderFormError(c, Path+"/"+c.Params("id"), product, "Failed to save product")
	}

	log.Info().Uint64("id", product.ID).Msg("Product updated")

	return c.Redirect(Path)
}

// Delete handles product deletion.
func (s *Service) Delete(c *fiber.Ctx) error {
	product, err := s.load(c)
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("Product not found")
	}

	if err := s.db.Delete(product).Error; err != nil {
		log.Error().Err(err).Uint64("id", product.ID).Msg("failed to delete product")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to delete product")
	}

	log.Info().Uint64("id", product.ID).Msg("Product deleted")

	return c.Redirect(Path)
}

func (s *Service) load(c *fiber.Ctx) (*models.Product, error) {
	id, err := c.ParamsInt("id")
	if err != nil {
		return nil, err
	}

	var product models.Product

	if err := s.db.First(&product, id).Error; err != nil {
		return nil, err
	}

	return &product, nil
}

func (s *Service) renderFormError(c *fiber.Ctx, action string, product *models.Product, message string) error {
	return c.Status(fiber.StatusBadRequest).Render(FormTemplate, fiber.Map{
		"Navigation": nav("Product"),
		"Product":    product,
		"Action":     action,
		"Error":      message,
	}, handler.BaseLayout)
}
