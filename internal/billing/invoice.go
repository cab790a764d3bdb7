package billing

import (
	"strconv"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/settings"
)

// ErrDBNil is returned when invoice numbering is attempted without a
// database handle.
var ErrDBNil = errors.New("gorm.DB is nil")

// NextInvoiceNumber allocates the next invoice number from the invoice
// settings group and advances the stored counter. The returned value is
// the configured prefix joined with the counter, e.g. "INV-1001".
func NextInvoiceNumber(db *gorm.DB) (string, error) {
	if db == nil {
		return "", ErrDBNil
	}

	values := settings.Resolve(db, settings.GroupInvoice, settings.InvoiceDefaults())

	prefix := values.Get(settings.KeyInvoicePrefix)

	// The counter row is read under a lock held for the caller's
	// transaction so two concurrent sales cannot allocate the same
	// number and trip the InvoiceNumber unique index.
	next, err := strconv.Atoi(settings.LookupLocked(db, settings.KeyInvoiceNextNumber, values.Get(settings.KeyInvoiceNextNumber)))
	if err != nil {
		next = 1001
	}

	number := prefix + strconv.Itoa(next)

	err = settings.Upsert(db, settings.KeyInvoiceNextNumber, strconv.Itoa(next+1), settings.GroupInvoice)
	if err != nil {
		return "", errors.Wrap(err, "advancing invoice counter")
	}

	return number, nil
}
