// Package dashboard renders the sales and stock overview page.
package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/billing"
	"github.com/billgix/billgix/internal/config"
	"github.com/billgix/billgix/internal/db/models"
	"github.com/billgix/billgix/internal/settings"
	"github.com/billgix/billgix/internal/web/handler"
	"github.com/billgix/billgix/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"

	recentSalesLimit = 5
)

// Stats holds the headline figures shown at the top of the page.
type Stats struct {
	TodayTotal    string
	TodayCount    int64
	MonthTotal    string
	MonthCount    int64
	ProductCount  int64
	CustomerCount int64
}

// LowStockItem is one row of the low stock table.
type LowStockItem struct {
	Product   models.Product
	Threshold string
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return nil
	}

	s.db = db
	s.cfg = cfg

	app.Get(Path, s.Get)

	return nil
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.ForPage("Dashboard", "dashboard", "dashboard", "", Path)

	company := settings.Resolve(s.db, settings.GroupCompany, settings.CompanyDefaults())
	invoice := settings.Resolve(s.db, settings.GroupInvoice, settings.InvoiceDefaults())
	notif := settings.Resolve(s.db, settings.GroupNotification, settings.NotificationDefaults())

	symbol := company.Get(settings.KeyCurrency)
	position := invoice.Get(settings.KeySymbolPosition)

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var stats Stats

	var todayTotal, monthTotal float64

	s.db.Model(&models.Sale{}).Where("created_at >= ?", startOfDay).Count(&stats.TodayCount)
	s.db.Model(&models.Sale{}).Where("created_at >= ?", startOfDay).
		Select("COALESCE(SUM(total_price), 0)").Scan(&todayTotal)

	s.db.Model(&models.Sale{}).Where("created_at >= ?", startOfMonth).Count(&stats.MonthCount)
	s.db.Model(&models.Sale{}).Where("created_at >= ?", startOfMonth).
		Select("COALESCE(SUM(total_price), 0)").Scan(&monthTotal)

	s.db.Model(&models.Product{}).Count(&stats.ProductCount)
	s.db.Model(&models.Customer{}).Count(&stats.CustomerCount)

	stats.TodayTotal = billing.FormatAmount(todayTotal, symbol, position)
	stats.MonthTotal = billing.FormatAmount(monthTotal, symbol, position)

	// Low stock list uses the threshold as resolved right now.
	threshold := notif.Float(settings.KeyLowStockThreshold, 5)

	var lowStockProducts []models.Product

	if err := s.db.Where("qty <= ?", threshold).Order("qty asc").Find(&lowStockProducts).Error; err != nil {
		log.Error().Err(err).Msg("failed to load low stock products")
	}

	lowStock := make([]LowStockItem, 0, len(lowStockProducts))
	for _, product := range lowStockProducts {
		lowStock = append(lowStock, LowStockItem{
			Product:   product,
			Threshold: notif.Get(settings.KeyLowStockThreshold),
		})
	}

	var recentSales []models.Sale

	if err := s.db.Preload("Customer").Order("created_at desc").Limit(recentSalesLimit).Find(&recentSales).Error; err != nil {
		log.Error().Err(err).Msg("failed to load recent sales")
	}

	recent := make([]fiber.Map, 0, len(recentSales))
	for _, sale := range recentSales {
		recent = append(recent, fiber.Map{
			"Sale":  sale,
			"Total": billing.FormatAmount(sale.TotalPrice, symbol, position),
		})
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation":  nav,
		"Stats":       stats,
		"LowStock":    lowStock,
		"RecentSales": recent,
	}, handler.BaseLayout)
}
