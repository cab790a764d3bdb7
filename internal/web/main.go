// Package web assembles the fiber application: template engine, access
// logging, session auth and the page handlers.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/billgix/billgix/internal/config"
	fiberlogger "github.com/billgix/billgix/internal/logger/adapter/fiber"
	"github.com/billgix/billgix/internal/mail"
	"github.com/billgix/billgix/internal/notify"
	"github.com/billgix/billgix/internal/pdfgen"
	"github.com/billgix/billgix/internal/web/handler/customers"
	"github.com/billgix/billgix/internal/web/handler/dashboard"
	"github.com/billgix/billgix/internal/web/handler/login"
	"github.com/billgix/billgix/internal/web/handler/logout"
	"github.com/billgix/billgix/internal/web/handler/products"
	"github.com/billgix/billgix/internal/web/handler/sales"
	companysettings "github.com/billgix/billgix/internal/web/handler/settings/company"
	invoicesettings "github.com/billgix/billgix/internal/web/handler/settings/invoice"
	notificationsettings "github.com/billgix/billgix/internal/web/handler/settings/notification"
	smtpsettings "github.com/billgix/billgix/internal/web/handler/settings/smtp"
	templatesettings "github.com/billgix/billgix/internal/web/handler/settings/templates"
	authmw "github.com/billgix/billgix/internal/web/middleware/auth"
)

const checkAlivePath = "/checkalive"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration and
// collaborators. docs may be nil when no PDF renderer is available.
func New(cfg *config.Config, db *gorm.DB, mailer mail.Sender, docs pdfgen.Renderer) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in dev mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("dev mode enabled: using local filesystem for templates")
	}

	// Add template helper functions
	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	templateEngine.AddFunc("sub", func(a, b int) int {
		return a - b
	})
	templateEngine.AddFunc("formatDate", func(t time.Time) string {
		if t.IsZero() {
			return ""
		}

		return t.Format("02 Jan 2006")
	})

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "Billgix",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	// access logging
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: checkAlivePath,
	}))

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
			},
		),
	)

	// session auth middleware
	app.Use(authmw.Middleware)

	// init web service
	service := &Service{
		cfg: cfg,
		App: app,
		db:  db,
	}

	service.alive.Store(true)

	dispatcher := notify.New(db, mailer, docs, cfg.Webserver.URL)

	// init handlers (they register their own routes)
	mustInit(login.Handler.Init(app, cfg, db))
	logout.Handler.Init(app, cfg)
	mustInit(dashboard.Handler.Init(app, cfg, db))
	mustInit(products.Handler.Init(app, cfg, db))
	mustInit(customers.Handler.Init(app, cfg, db))
	mustInit(sales.Handler.Init(app, cfg, db, dispatcher, docs))
	mustInit(companysettings.Handler.Init(app, cfg, db))
	mustInit(smtpsettings.Handler.Init(app, cfg, db))
	mustInit(invoicesettings.Handler.Init(app, cfg, db))
	mustInit(notificationsettings.Handler.Init(app, cfg, db))
	mustInit(templatesettings.Handler.Init(app, cfg, db))

	// liveness endpoint for load balancers
	app.Get(checkAlivePath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	// prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// redirect root to dashboard
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard")
	})

	return service
}

func mustInit(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize web handler")
	}
}
