package settings

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Setting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestResolve(t *testing.T) {
	db := setupTestDB(t)

	defaults := map[string]string{
		"invoice_prefix":      "INV-",
		"invoice_next_number": "1001",
		"invoice_tax_label":   "GST",
	}

	t.Run("all defaults when store empty", func(t *testing.T) {
		values := Resolve(db, GroupInvoice, defaults)

		for k, v := range defaults {
			assert.Equal(t, v, values.Get(k))
		}
	})

	t.Run("stored value overrides default", func(t *testing.T) {
		require.NoError(t, Upsert(db, "invoice_prefix", "KRZ-", GroupInvoice))

		values := Resolve(db, GroupInvoice, defaults)
		assert.Equal(t, "KRZ-", values.Get("invoice_prefix"))
		assert.Equal(t, "1001", values.Get("invoice_next_number"))
	})

	t.Run("stored key outside defaults is kept", func(t *testing.T) {
		require.NoError(t, Upsert(db, "invoice_due_days", "45", GroupInvoice))

		values := Resolve(db, GroupInvoice, defaults)
		assert.Equal(t, "45", values.Get("invoice_due_days"))
	})

	t.Run("fails closed on nil database", func(t *testing.T) {
		values := Resolve(nil, GroupInvoice, defaults)

		for k, v := range defaults {
			assert.Equal(t, v, values.Get(k))
		}
	})

	t.Run("does not mutate the defaults map", func(t *testing.T) {
		_ = Resolve(db, GroupInvoice, defaults)
		assert.Equal(t, "INV-", defaults["invoice_prefix"])
	})
}

func TestUpsertIdempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Upsert(db, "currency", "₹", GroupCompany))
	require.NoError(t, Upsert(db, "currency", "₹", GroupCompany))

	values := Resolve(db, GroupCompany, CompanyDefaults())
	assert.Equal(t, "₹", values.Get(KeyCurrency))

	var count int64
	db.Model(&models.Setting{}).Where("key = ?", "currency").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestLookup(t *testing.T) {
	db := setupTestDB(t)

	assert.Equal(t, "fallback", Lookup(db, "missing", "fallback"))
	assert.Equal(t, "fallback", Lookup(nil, "missing", "fallback"))

	require.NoError(t, Upsert(db, "admin_email", "ops@example.com", GroupNotification))
	assert.Equal(t, "ops@example.com", Lookup(db, "admin_email", ""))
}

func TestLookupLocked(t *testing.T) {
	db := setupTestDB(t)

	assert.Equal(t, "fallback", LookupLocked(db, "missing", "fallback"))
	assert.Equal(t, "fallback", LookupLocked(nil, "missing", "fallback"))

	require.NoError(t, Upsert(db, KeyInvoiceNextNumber, "1050", GroupInvoice))

	err := db.Transaction(func(tx *gorm.DB) error {
		assert.Equal(t, "1050", LookupLocked(tx, KeyInvoiceNextNumber, "1001"))
		return nil
	})
	require.NoError(t, err)
}

func TestValuesHelpers(t *testing.T) {
	values := Values{
		"flag_on":   "1",
		"flag_off":  "0",
		"threshold": "5",
		"rate":      "18.5",
		"bad":       "x",
	}

	assert.True(t, values.Bool("flag_on"))
	assert.False(t, values.Bool("flag_off"))
	assert.False(t, values.Bool("missing"))

	assert.Equal(t, 5, values.Int("threshold", 10))
	assert.Equal(t, 10, values.Int("bad", 10))
	assert.Equal(t, 10, values.Int("missing", 10))

	assert.InDelta(t, 18.5, values.Float("rate", 0), 0.0001)
	assert.InDelta(t, 1.0, values.Float("bad", 1.0), 0.0001)
}

func TestDefaultsAreFresh(t *testing.T) {
	first := NotificationDefaults()
	first["low_stock_threshold"] = "99"

	second := NotificationDefaults()
	assert.Equal(t, "5", second["low_stock_threshold"])
}
