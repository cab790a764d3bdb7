package notify

import (
	"context"
	"os"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/db/models"
	"github.com/billgix/billgix/internal/mail"
	"github.com/billgix/billgix/internal/pdfgen"
	"github.com/billgix/billgix/internal/settings"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(
		&models.Setting{},
		&models.Customer{},
		&models.Product{},
		&models.Sale{},
		&models.SaleItem{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

type fakeSender struct {
	calls int
	last  *mail.Message
	err   error

	// attachment paths that existed on disk at send time
	liveAttachments []string
}

func (f *fakeSender) Send(_ context.Context, msg *mail.Message) error {
	f.calls++
	f.last = msg

	for _, path := range msg.Attachments {
		if _, err := os.Stat(path); err == nil {
			f.liveAttachments = append(f.liveAttachments, path)
		}
	}

	return f.err
}

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) RenderInvoice(pdfgen.InvoiceDocument) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}

	return []byte("%PDF-1.4 fake"), nil
}

func seedSale(t *testing.T, db *gorm.DB, customerEmail string) *models.Sale {
	t.Helper()

	product := models.Product{ItemName: "Plum Cake", ItemCode: "PC-01", UnitType: "pcs", Qty: 10, Price: 450}
	require.NoError(t, db.Create(&product).Error)

	sale := models.Sale{
		InvoiceNumber: "INV-1001",
		Customer:      models.Customer{Name: "Ann", Email: customerEmail},
		Items: []models.SaleItem{
			{ProductID: product.ID, Quantity: 2, Price: 450, Total: 900},
		},
		Subtotal:      900,
		TaxAmount:     334.5,
		TotalPrice:    1234.5,
		PaymentMethod: "Cash",
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	require.NoError(t, db.Create(&sale).Error)

	return &sale
}

func TestDispatchSaleCreated(t *testing.T) {
	t.Run("disabled flag skips before recipient check", func(t *testing.T) {
		db := setupTestDB(t)
		sale := seedSale(t, db, "ann@example.com")

		require.NoError(t, settings.Upsert(db, settings.KeyNotifyNewOrder, "0", settings.GroupNotification))

		sender := &fakeSender{}
		d := New(db, sender, nil, "http://shop.local")

		result, err := d.Dispatch(context.Background(), EventSaleCreated, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusSkipped, result.Status)
		assert.Equal(t, ReasonDisabled, result.Reason)
		assert.Zero(t, sender.calls)
	})

	t.Run("missing customer email", func(t *testing.T) {
		db := setupTestDB(t)
		sale := seedSale(t, db, "")

		sender := &fakeSender{}
		d := New(db, sender, nil, "http://shop.local")

		result, err := d.Dispatch(context.Background(), EventSaleCreated, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusSkipped, result.Status)
		assert.Equal(t, ReasonMissingRecipient, result.Reason)
		assert.Zero(t, sender.calls)
	})

	t.Run("dispatched exactly once with rendered content", func(t *testing.T) {
		db := setupTestDB(t)
		sale := seedSale(t, db, "ann@example.com")

		sender := &fakeSender{}
		d := New(db, sender, nil, "http://shop.local")

		result, err := d.Dispatch(context.Background(), EventSaleCreated, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusDispatched, result.Status)
		require.Equal(t, 1, sender.calls)

		assert.Equal(t, "ann@example.com", sender.last.To)
		assert.Equal(t, "Your Order Confirmation - INV-1001", sender.last.Subject)
		assert.Contains(t, sender.last.HTMLBody, "Plum Cake (PC-01)")
		assert.Contains(t, sender.last.HTMLBody, "2 pcs")
		assert.Contains(t, sender.last.HTMLBody, "₹1,234.50")
		assert.Contains(t, sender.last.HTMLBody, "Thank you for using Billgix")
	})

	t.Run("unknown sale id", func(t *testing.T) {
		db := setupTestDB(t)

		d := New(db, &fakeSender{}, nil, "http://shop.local")

		_, err := d.Dispatch(context.Background(), EventSaleCreated, 999)
		require.Error(t, err)
	})
}

func TestDispatchLowStock(t *testing.T) {
	seedProduct := func(t *testing.T, db *gorm.DB, qty float64) *models.Product {
		t.Helper()

		product := models.Product{ItemName: "Cookies", ItemCode: "CK-01", UnitType: "kg", Qty: qty}
		require.NoError(t, db.Create(&product).Error)

		return &product
	}

	t.Run("disabled flag", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, 1)

		require.NoError(t, settings.Upsert(db, settings.KeyNotifyLowStock, "0", settings.GroupNotification))

		sender := &fakeSender{}
		d := New(db, sender, nil, "http://shop.local")

		result, err := d.Dispatch(context.Background(), EventLowStock, product.ID)
		require.NoError(t, err)
		assert.Equal(t, ReasonDisabled, result.Reason)
		assert.Zero(t, sender.calls)
	})

	t.Run("threshold is read at dispatch time", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, 8)

		sender := &fakeSender{}
		d := New(db, sender, nil, "http://shop.local")

		// default threshold is 5, stock of 8 is fine
		result, err := d.Dispatch(context.Background(), EventLowStock, product.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusSkipped, result.Status)
		assert.Equal(t, ReasonStockNotLow, result.Reason)

		require.NoError(t, settings.Upsert(db, settings.KeyLowStockThreshold, "10", settings.GroupNotification))

		result, err = d.Dispatch(context.Background(), EventLowStock, product.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusDispatched, result.Status)
		assert.Equal(t, 1, sender.calls)
	})

	t.Run("admin email preferred over from address", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, 2)

		require.NoError(t, settings.Upsert(db, settings.KeyAdminEmail, "owner@example.com", settings.GroupNotification))

		sender := &fakeSender{}
		d := New(db, sender, nil, "http://shop.local")

		result, err := d.Dispatch(context.Background(), EventLowStock, product.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusDispatched, result.Status)
		assert.Equal(t, "owner@example.com", sender.last.To)
		assert.Contains(t, sender.last.Subject, "Cookies")
		assert.Contains(t, sender.last.HTMLBody, "2 kg")
	})

	t.Run("falls back to from address", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, 2)

		require.NoError(t, settings.Upsert(db, settings.KeyEmailFrom, "shop@example.com", settings.GroupEmail))

		sender := &fakeSender{}
		d := New(db, sender, nil, "http://shop.local")

		result, err := d.Dispatch(context.Background(), EventLowStock, product.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusDispatched, result.Status)
		assert.Equal(t, "shop@example.com", sender.last.To)
	})

	t.Run("no recipient anywhere", func(t *testing.T) {
		db := setupTestDB(t)
		product := seedProduct(t, db, 2)

		require.NoError(t, settings.Upsert(db, settings.KeyEmailFrom, "", settings.GroupEmail))

		sender := &fakeSender{}
		d := New(db, sender, nil, "http://shop.local")

		result, err := d.Dispatch(context.Background(), EventLowStock, product.ID)
		require.NoError(t, err)
		assert.Equal(t, ReasonMissingRecipient, result.Reason)
		assert.Zero(t, sender.calls)
	})
}

func TestDispatchPaymentReceived(t *testing.T) {
	t.Run("disabled flag", func(t *testing.T) {
		db := setupTestDB(t)
		sale := seedSale(t, db, "ann@example.com")

		require.NoError(t, settings.Upsert(db, settings.KeyNotifyPaymentReceived, "0", settings.GroupNotification))

		sender := &fakeSender{}
		d := New(db, sender, nil, "http://shop.local")

		result, err := d.Dispatch(context.Background(), EventPaymentReceived, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, ReasonDisabled, result.Reason)
		assert.Zero(t, sender.calls)
	})

	t.Run("dispatched with formatted amount", func(t *testing.T) {
		db := setupTestDB(t)
		sale := seedSale(t, db, "ann@example.com")

		sender := &fakeSender{}
		d := New(db, sender, nil, "http://shop.local")

		result, err := d.Dispatch(context.Background(), EventPaymentReceived, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusDispatched, result.Status)
		assert.Equal(t, "Payment Confirmation - Invoice #INV-1001", sender.last.Subject)
		assert.Contains(t, sender.last.HTMLBody, "₹1,234.50")
		assert.Contains(t, sender.last.HTMLBody, "Cash")
	})

	t.Run("missing customer email", func(t *testing.T) {
		db := setupTestDB(t)
		sale := seedSale(t, db, "")

		sender := &fakeSender{}
		d := New(db, sender, nil, "http://shop.local")

		result, err := d.Dispatch(context.Background(), EventPaymentReceived, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, ReasonMissingRecipient, result.Reason)
	})
}

func TestDispatchInvoiceEmail(t *testing.T) {
	t.Run("no renderer falls back to link", func(t *testing.T) {
		db := setupTestDB(t)
		sale := seedSale(t, db, "ann@example.com")

		sender := &fakeSender{}
		d := New(db, sender, nil, "http://shop.local")

		result, err := d.Dispatch(context.Background(), EventInvoiceEmail, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusDispatched, result.Status)
		assert.Empty(t, sender.last.Attachments)
		assert.Contains(t, sender.last.HTMLBody, "View Invoice")
		assert.Contains(t, sender.last.HTMLBody, "http://shop.local/sales/")
	})

	t.Run("attachment present at send time, gone afterwards", func(t *testing.T) {
		db := setupTestDB(t)
		sale := seedSale(t, db, "ann@example.com")

		sender := &fakeSender{}
		d := New(db, sender, &fakeRenderer{}, "http://shop.local")

		result, err := d.Dispatch(context.Background(), EventInvoiceEmail, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusDispatched, result.Status)

		require.Len(t, sender.liveAttachments, 1)
		assert.NoFileExists(t, sender.liveAttachments[0])
		assert.Contains(t, sender.last.HTMLBody, "attached to this email")
	})

	t.Run("temp file removed on transport failure", func(t *testing.T) {
		db := setupTestDB(t)
		sale := seedSale(t, db, "ann@example.com")

		sender := &fakeSender{err: errors.New("smtp down")}
		d := New(db, sender, &fakeRenderer{}, "http://shop.local")

		_, err := d.Dispatch(context.Background(), EventInvoiceEmail, sale.ID)
		require.Error(t, err)

		require.Len(t, sender.liveAttachments, 1)
		assert.NoFileExists(t, sender.liveAttachments[0])
	})

	t.Run("renderer failure still dispatches with link", func(t *testing.T) {
		db := setupTestDB(t)
		sale := seedSale(t, db, "ann@example.com")

		sender := &fakeSender{}
		d := New(db, sender, &fakeRenderer{err: errors.New("font missing")}, "http://shop.local")

		result, err := d.Dispatch(context.Background(), EventInvoiceEmail, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusDispatched, result.Status)
		assert.Empty(t, sender.last.Attachments)
		assert.Contains(t, sender.last.HTMLBody, "View Invoice")
	})

	t.Run("missing customer email", func(t *testing.T) {
		db := setupTestDB(t)
		sale := seedSale(t, db, "")

		sender := &fakeSender{}
		d := New(db, sender, &fakeRenderer{}, "http://shop.local")

		result, err := d.Dispatch(context.Background(), EventInvoiceEmail, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, ReasonMissingRecipient, result.Reason)
		assert.Zero(t, sender.calls)
	})
}

func TestDispatchUnknownEvent(t *testing.T) {
	d := New(setupTestDB(t), &fakeSender{}, nil, "http://shop.local")

	_, err := d.Dispatch(context.Background(), EventType("carrier_pigeon"), 1)
	require.ErrorIs(t, err, ErrUnknownEvent)
}
