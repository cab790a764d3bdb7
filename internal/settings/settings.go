// Package settings resolves effective configuration by overlaying
// persisted settings rows onto compiled-in defaults.
//
// The resolver fails closed: if the settings store is unreachable the
// default-only map is returned and the failure is logged, so rendering
// code downstream never sees an undefined key or an error.
package settings

import (
	"strconv"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/billgix/billgix/internal/db/controller/setting"
)

// Values is an effective configuration map for one settings group.
type Values map[string]string

// Get returns the value for key, or the empty string when absent.
func (v Values) Get(key string) string {
	return v[key]
}

// Bool interprets the stored value as a flag. Only "1" is true,
// matching the form-checkbox convention used by the admin screens.
func (v Values) Bool(key string) bool {
	return v[key] == "1"
}

// Int returns the value parsed as an integer, or def when missing or malformed.
func (v Values) Int(key string, def int) int {
	n, err := strconv.Atoi(v[key])
	if err != nil {
		return def
	}

	return n
}

// Float returns the value parsed as a float, or def when missing or malformed.
func (v Values) Float(key string, def float64) float64 {
	f, err := strconv.ParseFloat(v[key], 64)
	if err != nil {
		return def
	}

	return f
}

// Resolve merges persisted settings for a group with the given defaults.
// Persisted values override defaults; defaults fill any missing key.
// On storage failure the defaults are returned unchanged so callers can
// keep rendering with compiled-in values.
func Resolve(db *gorm.DB, group string, defaults map[string]string) Values {
	merged := make(Values, len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}

	rows, err := setting.GetGroup(db, group)
	if err != nil {
		log.Warn().Err(err).Str("group", group).Msg("settings store unreachable, using defaults")
		return merged
	}

	for _, row := range rows {
		merged[row.Key] = row.Value
	}

	return merged
}

// Upsert stores a single setting value, creating the row with the given
// group when the key does not exist yet. Upsert matches by key alone;
// callers must not rely on group-scoped key uniqueness.
func Upsert(db *gorm.DB, key, value, group string) error {
	_, err := setting.Set(db, key, value, group)
	return err
}

// Lookup returns the stored value for a single key, or def when the key
// has no row or the store is unreachable.
func Lookup(db *gorm.DB, key, def string) string {
	row, err := setting.Get(db, key)
	if err != nil {
		return def
	}

	return row.Value
}

// LookupLocked is Lookup with the row locked for the remainder of the
// caller's transaction, for read-then-write sequences such as advancing
// the invoice counter. SQLite has no FOR UPDATE and serializes writers
// itself, so the plain read is used there.
func LookupLocked(db *gorm.DB, key, def string) string {
	if db != nil && db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	return Lookup(db, key, def)
}
