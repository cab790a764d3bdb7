package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/config"
	"github.com/billgix/billgix/internal/db/controller/template"
	"github.com/billgix/billgix/internal/db/models"
	"github.com/billgix/billgix/internal/settings"
)

func seed(_ *config.Config, db *gorm.DB) {
	// Seed initial data if user table is empty

	var count int64

	db.Model(&models.User{}).Count(&count)

	if count == 0 {
		db.Create(
			&models.User{
				Username: "admin",
				Password: models.HashPassword("changeme"),
				Active:   true,
				Role:     models.RoleAdmin,
			},
		)

		log.Info().Msg("Seeded default admin user, change its password after first login")
	}

	// Seed the default email templates when the store is empty.
	companyName := settings.Lookup(db, settings.KeyCompanyName, "Billgix")

	if err := template.EnsureDefaults(db, companyName); err != nil {
		log.Error().Err(err).Msg("failed to seed default email templates")
	}
}
