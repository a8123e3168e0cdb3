package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"lapak/internal/config"
	"lapak/internal/flash"
	"lapak/internal/handlers"
	"lapak/internal/middleware"
	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"
	"lapak/pkg/rabbitmq"
	"lapak/views"
)

func main() {
	cfg := config.Load()

	// --- Optional RabbitMQ client ---
	// Checkout events are published when a broker URL is configured; the
	// shop works fine without one.
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		events = mqClient

		// Log-only consumer for shop events. A real deployment would hand
		// these to a fulfilment or notification worker.
		log.Println("Starting RabbitMQ consumer for shop events...")
		if err := mqClient.ConsumeShopEvents(func(msg amqp.Delivery) error {
			log.Printf("Received shop event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
			return nil
		}); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	app, err := NewApp(cfg, events)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	if cfg.OpenBrowser {
		time.AfterFunc(time.Second, func() {
			openBrowser("http://127.0.0.1" + cfg.AppPort)
		})
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// NewApp wires the storage, services and handlers into a ready-to-serve
// Fiber app. It migrates the schema and seeds the catalog when empty.
func NewApp(cfg *config.Config, events services.EventPublisher) (*fiber.App, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.CartItem{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	catalogService := services.NewCatalogService(productRepo)
	cartService := services.NewCartService(cartRepo, productRepo, events)

	if err := catalogService.SeedIfEmpty(defaultCatalog()); err != nil {
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}

	// --- Initialize Handlers ---
	flashes := flash.NewStore()
	authHandler := handlers.NewAuthHandler(authService, flashes)
	shopHandler := handlers.NewShopHandler(catalogService, cartService, flashes)
	apiHandler := handlers.NewAPIHandler(authService, catalogService, cartService)

	// --- Initialize Fiber App ---
	engine := html.NewFileSystem(http.FS(views.FS), ".html")
	engine.AddFunc("price", handlers.FormatCents)
	engine.AddFunc("lineTotal", func(cents int64, qty int) int64 {
		return cents * int64(qty)
	})

	app := fiber.New(fiber.Config{
		Views: engine,
	})

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	loadUser := middleware.LoadUser(authService)
	requireUser := middleware.RequireUser(authService)

	// --- Browser Routes ---
	authHandler.RegisterRoutes(app, requireUser)
	shopHandler.RegisterRoutes(app, loadUser, requireUser)

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	apiHandler.RegisterRoutes(apiV1, middleware.APIAuthRequired(authService))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app, nil
}

// openDB opens the configured storage backend. The default is a single
// local SQLite file.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DBDSN), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// defaultCatalog is the demo product list inserted on first start.
func defaultCatalog() []models.Product {
	return []models.Product{
		{Name: "Mechanical Keyboard", PriceCents: 12000, Description: "Clicky and tactical.",
			ImageURL: "https://placehold.co/300x200?text=Keyboard"},
		{Name: "Gaming Mouse", PriceCents: 6050, Description: "High DPI precision.",
			ImageURL: "https://placehold.co/300x200?text=Mouse"},
		{Name: "4K Monitor", PriceCents: 35000, Description: "Crystal clear display.",
			ImageURL: "https://placehold.co/300x200?text=Monitor"},
		{Name: "Headset", PriceCents: 8000, Description: "Noise cancelling.",
			ImageURL: "https://placehold.co/300x200?text=Headset"},
		{Name: "Webcam", PriceCents: 4550, Description: "1080p streaming.",
			ImageURL: "https://placehold.co/300x200?text=Webcam"},
		{Name: "USB-C Hub", PriceCents: 3275, Description: "Seven ports in one.",
			ImageURL: "https://placehold.co/300x200?text=Hub"},
		{Name: "Desk Mat", PriceCents: 2200, Description: "Full-width cloth mat.",
			ImageURL: "https://placehold.co/300x200?text=Desk+Mat"},
	}
}

// openBrowser opens a browser tab pointed at the shop. Best effort only.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Could not open browser: %v", err)
	}
}
