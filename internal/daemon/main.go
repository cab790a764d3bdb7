// Package daemon bootstraps the application: database, session store,
// mail transport, PDF renderer and the web service.
package daemon

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/storage"
	"github.com/gofiber/storage/memory/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/config"
	"github.com/billgix/billgix/internal/db/dsn"
	"github.com/billgix/billgix/internal/db/models"
	"github.com/billgix/billgix/internal/logger"
	"github.com/billgix/billgix/internal/mail"
	"github.com/billgix/billgix/internal/pdfgen"
	"github.com/billgix/billgix/internal/web"
	"github.com/billgix/billgix/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	webService web.Service
	cfg        *config.Config
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	if err := logger.Init(cfg.Log); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize logger")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Setting{},
		&models.EmailTemplate{},
		&models.Customer{},
		&models.Product{},
		&models.Sale{},
		&models.SaleItem{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	seed(cfg, db)

	session.Init(openSessionStorage(cfg))

	mailer := mail.NewFromSettings(db)
	docs := pdfgen.NewFPDF()

	return &Daemon{
		webService: *web.New(cfg, db, mailer, docs),
		cfg:        cfg,
	}
}

// openDialector picks the gorm driver from the configured engine.
// sqlite is the default for single-host installs.
func openDialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DB.GormEngine {
	case "mysql":
		return gormmysql.Open(dsn.Create(cfg))
	case "postgres":
		return gormpostgres.Open(dsn.CreatePostgres(cfg))
	default:
		file := cfg.DB.File
		if file == "" {
			file = "billgix.db"
		}

		return sqlite.Open(file)
	}
}

// openSessionStorage backs sessions with the mysql store when that
// engine is configured, an in-process store otherwise.
func openSessionStorage(cfg *config.Config) storage.Storage {
	if cfg.DB.GormEngine == "mysql" {
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	}

	return memory.New()
}
