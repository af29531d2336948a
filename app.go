package main

import (
	"fmt"
	"time"

	"vendicraft/internal/cart"
	"vendicraft/internal/config"
	"vendicraft/internal/handlers"
	"vendicraft/internal/middleware"
	"vendicraft/internal/models"
	"vendicraft/internal/repositories"
	"vendicraft/internal/services"
	"vendicraft/internal/session"
	"vendicraft/internal/whatsapp"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Repositories groups the storage backends the app runs on.
type Repositories struct {
	Products repositories.ProductRepository
	Orders   repositories.OrderRepository
	Users    repositories.UserRepository
}

// gormRepositories returns repositories backed by db.
func gormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Products: repositories.NewGORMProductRepository(db),
		Orders:   repositories.NewGORMOrderRepository(db),
		Users:    repositories.NewGORMUserRepository(db),
	}
}

// memoryRepositories returns process-local repositories, lost on exit.
func memoryRepositories() Repositories {
	return Repositories{
		Products: repositories.NewMemoryProductRepository(),
		Orders:   repositories.NewMemoryOrderRepository(),
		Users:    repositories.NewMemoryUserRepository(),
	}
}

// openDatabase connects to the configured database. The "memory" driver
// needs no connection and yields a nil *gorm.DB.
func openDatabase(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "memory":
		return nil, nil
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// migrate creates or updates the tables of every persisted model.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}, &models.User{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// Options carries the optional collaborators of the app.
type Options struct {
	Publisher services.OrderEventPublisher
	Uploader  services.ImageUploader
	Logger    *zap.Logger
}

// App is the assembled storefront.
type App struct {
	Fiber    *fiber.App
	Catalog  *services.ProductService
	Sessions *session.Registry

	audit  *session.Subscription
	logger *zap.Logger
}

// NewApp wires services, handlers and routes on top of repos.
func NewApp(cfg config.Config, repos Repositories, opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// --- Services ---
	sessions := session.NewRegistry()
	authService := services.NewAuthService(repos.Users, sessions, cfg.JWTSecret, log.Named("auth"))
	productService := services.NewProductService(repos.Products, opts.Uploader, cfg.CloudinaryFolder, log.Named("catalog"))
	carts := cart.NewStore()
	cartService := services.NewCartService(carts, productService, log.Named("cart"))
	formatter := whatsapp.NewFormatter(cfg.StoreName, cfg.MessageLocale, cfg.CurrencySuffix)
	checkoutService := services.NewCheckoutService(carts, formatter, cfg.OwnerWhatsAppNumber, log.Named("checkout"))
	paymentService := services.NewPaymentService(repos.Orders, opts.Publisher, log.Named("payment"))
	orderService := services.NewOrderService(repos.Orders, log.Named("orders"))

	audit := sessions.Subscribe(func(e session.Event) {
		log.Info("session event",
			zap.String("kind", string(e.Kind)),
			zap.String("user_id", e.Session.UserID),
			zap.String("username", e.Session.Username))
	})

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, log)
	productHandler := handlers.NewProductHandler(productService, log)
	cartHandler := handlers.NewCartHandler(cartService, checkoutService, log)
	paymentHandler := handlers.NewPaymentHandler(paymentService, log)
	orderHandler := handlers.NewOrderHandler(orderService, log)

	app := fiber.New(fiber.Config{
		AppName:   cfg.StoreName,
		BodyLimit: 10 * 1024 * 1024, // product pictures
	})
	app.Use(logger.New())

	requireAuth := middleware.AuthRequired(authService, log)

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1, requireAuth)
	productHandler.RegisterRoutes(apiV1, requireAuth)
	cartHandler.RegisterRoutes(apiV1)
	paymentHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1.Group("", requireAuth))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"catalog":  productService.State(),
			"sessions": sessions.Active(),
		})
	})

	return &App{
		Fiber:    app,
		Catalog:  productService,
		Sessions: sessions,
		audit:    audit,
		logger:   log,
	}
}

// Close releases what NewApp acquired. It does not stop the server.
func (a *App) Close() {
	a.audit.Close()
}
