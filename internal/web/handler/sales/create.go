package sales

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/billing"
	"github.com/billgix/billgix/internal/db/models"
	"github.com/billgix/billgix/internal/notify"
	"github.com/billgix/billgix/internal/settings"
	"github.com/billgix/billgix/internal/web/handler"
)

// CreateForm carries the new sale submission. product_id and quantity
// are parallel arrays, one entry per line item.
type CreateForm struct {
	CustomerID     uint64    `form:"customer_id" validate:"required"`
	PaymentMethod  string    `form:"payment_method"`
	PaymentStatus  string    `form:"payment_status"`
	DiscountAmount float64   `form:"discount_amount" validate:"gte=0"`
	ProductIDs     []uint64  `form:"product_id" validate:"required,min=1"`
	Quantities     []float64 `form:"quantity" validate:"required,min=1"`
}

// ErrLineItemMismatch is returned when the line item arrays differ in
// length.
var ErrLineItemMismatch = errors.New("line item fields do not match up")

// New handles the new sale form rendering.
func (s *Service) New(c *fiber.Ctx) error {
	var (
		customersList []models.Customer
		productsList  []models.Product
	)

	if err := s.db.Order("name asc").Find(&customersList).Error; err != nil {
		log.Error().Err(err).Msg("failed to load customers for sale form")
	}

	if err := s.db.Order("item_name asc").Find(&productsList).Error; err != nil {
		log.Error().Err(err).Msg("failed to load products for sale form")
	}

	return c.Render(FormTemplate, fiber.Map{
		"Navigation": nav("New Sale"),
		"Customers":  customersList,
		"Products":   productsList,
	}, handler.BaseLayout)
}

// Create handles the new sale submission: it stores the sale with its
// line items, decrements stock and allocates the invoice number in one
// transaction, then dispatches notifications.
func (s *Service) Create(c *fiber.Ctx) error {
	form := new(CreateForm)

	if err := c.BodyParser(form); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid form data")
	}

	if err := s.validator.Struct(form); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Validation failed: " + err.Error())
	}

	if len(form.ProductIDs) != len(form.Quantities) {
		return c.Status(fiber.StatusBadRequest).SendString(ErrLineItemMismatch.Error())
	}

	invoice := settings.Resolve(s.db, settings.GroupInvoice, settings.InvoiceDefaults())

	taxRate := invoice.Float("invoice_default_tax_rate", 18)
	dueDays := invoice.Int("invoice_due_days", 30)

	paymentStatus := models.PaymentStatus(form.PaymentStatus)
	if paymentStatus != models.PaymentStatusPaid && paymentStatus != models.PaymentStatusPartial {
		paymentStatus = models.PaymentStatusUnpaid
	}

	sale := models.Sale{
		CustomerID:     form.CustomerID,
		PaymentMethod:  form.PaymentMethod,
		PaymentStatus:  paymentStatus,
		DiscountAmount: form.DiscountAmount,
		DueDate:        time.Now().AddDate(0, 0, dueDays),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i, productID := range form.ProductIDs {
			quantity := form.Quantities[i]
			if quantity <= 0 {
				return errors.Errorf("invalid quantity for product %d", productID)
			}

			var product models.Product

			if err := tx.First(&product, productID).Error; err != nil {
				return errors.Wrapf(err, "loading product %d", productID)
			}

			lineTotal := quantity * product.Price

			sale.Items = append(sale.Items, models.SaleItem{
				ProductID: product.ID,
				Quantity:  quantity,
				Price:     product.Price,
				Total:     lineTotal,
			})
			sale.Subtotal += lineTotal

			if err := tx.Model(&product).Update("qty", gorm.Expr("qty - ?", quantity)).Error; err != nil {
				return errors.Wrapf(err, "decrementing stock for product %d", productID)
			}
		}

		sale.TaxAmount = sale.Subtotal * taxRate / 100
		sale.TotalPrice = sale.Subtotal + sale.TaxAmount - sale.DiscountAmount

		number, err := billing.NextInvoiceNumber(tx)
		if err != nil {
			return err
		}

		sale.InvoiceNumber = number

		return tx.Create(&sale).Error
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create sale")
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to create sale")
	}

	log.Info().Str("invoice", sale.InvoiceNumber).Float64("total", sale.TotalPrice).Msg("Sale created")

	// Notifications run after the commit and never fail the request.
	ctx := c.UserContext()

	s.dispatch(ctx, notify.EventSaleCreated, sale.ID)

	for _, item := range sale.Items {
		s.dispatch(ctx, notify.EventLowStock, item.ProductID)
	}

	if paymentStatus == models.PaymentStatusPaid {
		s.dispatch(ctx, notify.EventPaymentReceived, sale.ID)
	}

	if invoice.Bool("enable_invoice_email") {
		s.dispatch(ctx, notify.EventInvoiceEmail, sale.ID)
	}

	return c.Redirect(Path + "/" + strconv.FormatUint(sale.ID, 10))
}
