package sales

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/config"
	"github.com/billgix/billgix/internal/db/models"
	"github.com/billgix/billgix/internal/mail"
	"github.com/billgix/billgix/internal/notify"
	"github.com/billgix/billgix/internal/settings"
)

type noOpViews struct{}

func (noOpViews) Load() error { return nil }

func (noOpViews) Render(w io.Writer, name string, _ interface{}, _ ...string) error {
	_, _ = io.WriteString(w, name)
	return nil
}

// fakeSender records outgoing mail instead of delivering it.
type fakeSender struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (f *fakeSender) Send(_ context.Context, msg *mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.messages = append(f.messages, *msg)

	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.messages)
}

func newTestService(t *testing.T) (*fiber.App, *gorm.DB, *fakeSender) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Setting{},
		&models.Customer{},
		&models.Product{},
		&models.Sale{},
		&models.SaleItem{},
	))

	app := fiber.New(fiber.Config{Views: noOpViews{}})
	cfg := &config.Config{Webserver: config.Webserver{URL: "http://localhost", Port: 3000}}

	sender := &fakeSender{}
	dispatcher := notify.New(db, sender, nil, cfg.Webserver.URL)

	var s Service
	require.NoError(t, s.Init(app, cfg, db, dispatcher, nil))

	return app, db, sender
}

func seedCatalog(t *testing.T, db *gorm.DB) (models.Customer, models.Product) {
	t.Helper()

	customer := models.Customer{Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, db.Create(&customer).Error)

	product := models.Product{ItemName: "Plum Cake", ItemCode: "PC-01", UnitType: "pcs", Qty: 10, Price: 450}
	require.NoError(t, db.Create(&product).Error)

	return customer, product
}

func postForm(t *testing.T, app *fiber.App, target string, form url.Values) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	return resp
}

func TestCreate_ComputesTotalsAndDecrementsStock(t *testing.T) {
	app, db, _ := newTestService(t)
	customer, product := seedCatalog(t, db)

	resp := postForm(t, app, Path+"/", url.Values{
		"customer_id":     {"1"},
		"product_id":      {"1"},
		"quantity":        {"2"},
		"discount_amount": {"0"},
		"payment_method":  {"Cash"},
		"payment_status":  {"Unpaid"},
	})
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusFound, resp.StatusCode)

	var sale models.Sale
	require.NoError(t, db.Preload("Items").First(&sale).Error)

	assert.Equal(t, customer.ID, sale.CustomerID)
	assert.Equal(t, "INV-1001", sale.InvoiceNumber)
	assert.InDelta(t, 900, sale.Subtotal, 0.001)
	// default tax rate is 18%
	assert.InDelta(t, 162, sale.TaxAmount, 0.001)
	assert.InDelta(t, 1062, sale.TotalPrice, 0.001)
	require.Len(t, sale.Items, 1)
	assert.InDelta(t, 2, sale.Items[0].Quantity, 0.001)

	// stock decremented inside the same transaction
	var got models.Product
	require.NoError(t, db.First(&got, product.ID).Error)
	assert.InDelta(t, 8, got.Qty, 0.001)

	// invoice counter advanced for the next sale
	values := settings.Resolve(db, settings.GroupInvoice, settings.InvoiceDefaults())
	assert.Equal(t, 1002, values.Int(settings.KeyInvoiceNextNumber, 0))
}

func TestCreate_AppliesDiscount(t *testing.T) {
	app, db, _ := newTestService(t)
	seedCatalog(t, db)

	resp := postForm(t, app, Path+"/", url.Values{
		"customer_id":     {"1"},
		"product_id":      {"1"},
		"quantity":        {"2"},
		"discount_amount": {"62"},
	})
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusFound, resp.StatusCode)

	var sale models.Sale
	require.NoError(t, db.First(&sale).Error)
	assert.InDelta(t, 1000, sale.TotalPrice, 0.001)
}

func TestCreate_LineItemMismatch(t *testing.T) {
	app, db, _ := newTestService(t)
	seedCatalog(t, db)

	resp := postForm(t, app, Path+"/", url.Values{
		"customer_id": {"1"},
		"product_id":  {"1", "1"},
		"quantity":    {"2"},
	})
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreate_UnknownProductRollsBack(t *testing.T) {
	app, db, _ := newTestService(t)
	seedCatalog(t, db)

	resp := postForm(t, app, Path+"/", url.Values{
		"customer_id": {"1"},
		"product_id":  {"99"},
		"quantity":    {"1"},
	})
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&count).Error)
	assert.Zero(t, count)

	// counter must not advance on a rolled back sale
	values := settings.Resolve(db, settings.GroupInvoice, settings.InvoiceDefaults())
	assert.Equal(t, 1001, values.Int(settings.KeyInvoiceNextNumber, 0))
}

func TestCreate_SendsOrderConfirmationByDefault(t *testing.T) {
	app, db, sender := newTestService(t)
	seedCatalog(t, db)

	resp := postForm(t, app, Path+"/", url.Values{
		"customer_id": {"1"},
		"product_id":  {"1"},
		"quantity":    {"2"},
	})
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, 1, sender.count())
	assert.Equal(t, "ann@example.com", sender.messages[0].To)
	assert.Contains(t, sender.messages[0].Subject, "Your Order Confirmation")
}

func TestCreate_NoMailWhenNotificationsDisabled(t *testing.T) {
	app, db, sender := newTestService(t)
	seedCatalog(t, db)

	require.NoError(t, settings.Upsert(db, settings.KeyNotifyNewOrder, "0", settings.GroupNotification))

	resp := postForm(t, app, Path+"/", url.Values{
		"customer_id": {"1"},
		"product_id":  {"1"},
		"quantity":    {"2"},
	})
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Zero(t, sender.count())
}

func seedSale(t *testing.T, db *gorm.DB) models.Sale {
	t.Helper()

	customer, product := seedCatalog(t, db)

	sale := models.Sale{
		InvoiceNumber: "INV-1001",
		CustomerID:    customer.ID,
		Items: []models.SaleItem{
			{ProductID: product.ID, Quantity: 2, Price: 450, Total: 900},
		},
		Subtotal:      900,
		TaxAmount:     162,
		TotalPrice:    1062,
		PaymentMethod: "Cash",
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	require.NoError(t, db.Create(&sale).Error)

	return sale
}

func TestMarkPaid_UpdatesStatusAndNotifies(t *testing.T) {
	app, db, sender := newTestService(t)
	sale := seedSale(t, db)

	require.NoError(t, settings.Upsert(db, settings.KeyNotifyPaymentReceived, "1", settings.GroupNotification))

	resp := postForm(t, app, Path+"/1/pay", url.Values{})
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)

	var got models.Sale
	require.NoError(t, db.First(&got, sale.ID).Error)
	assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)

	require.Equal(t, 1, sender.count())
	assert.Contains(t, sender.messages[0].Subject, "Payment Confirmation")
}

func TestMarkPaid_AlreadyPaidDoesNotNotifyAgain(t *testing.T) {
	app, db, sender := newTestService(t)
	sale := seedSale(t, db)

	require.NoError(t, settings.Upsert(db, settings.KeyNotifyPaymentReceived, "1", settings.GroupNotification))
	require.NoError(t, db.Model(&sale).Update("payment_status", models.PaymentStatusPaid).Error)

	resp := postForm(t, app, Path+"/1/pay", url.Values{})
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Zero(t, sender.count())
}

func TestEmailInvoice_SendsWithoutEnablementFlag(t *testing.T) {
	app, db, sender := newTestService(t)
	seedSale(t, db)

	resp := postForm(t, app, Path+"/1/email", url.Values{})
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)

	require.Equal(t, 1, sender.count())
	assert.Contains(t, sender.messages[0].Subject, "Invoice #INV-1001")
}

func TestPDF_WithoutRendererRedirectsToPrint(t *testing.T) {
	app, db, _ := newTestService(t)
	seedSale(t, db)

	req := httptest.NewRequest(http.MethodGet, Path+"/1/pdf", nil)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, Path+"/1/print", resp.Header.Get("Location"))
}

func TestView_UnknownSale(t *testing.T) {
	app, _, _ := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, Path+"/42", nil)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
