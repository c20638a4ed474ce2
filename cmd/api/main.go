package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/fleetdesk_api/internal/cache"
	"github.com/GTDGit/fleetdesk_api/internal/config"
	"github.com/GTDGit/fleetdesk_api/internal/database"
	"github.com/GTDGit/fleetdesk_api/internal/handler"
	"github.com/GTDGit/fleetdesk_api/internal/middleware"
	"github.com/GTDGit/fleetdesk_api/internal/repository"
	"github.com/GTDGit/fleetdesk_api/internal/service"
	"github.com/GTDGit/fleetdesk_api/internal/sse"
	"github.com/GTDGit/fleetdesk_api/internal/utils"
	"github.com/GTDGit/fleetdesk_api/internal/worker"
)

// main is the entrypoint for the fleetdesk API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting fleetdesk api")
	utils.InitJWT(cfg.JWTSecret, cfg.JWTTTL)

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Initialize caches
	latestCache := cache.NewLatestActivityCache(redisClient, cfg.History.LatestTTL)
	storeCache := cache.NewQuoteStoreCache(redisClient, cfg.Quote.StoreTTL)

	// 4. Initialize SSE hub
	hub := sse.NewHub()

	// 5. Initialize repositories
	adminRepo := repository.NewAdminUserRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	officeRepo := repository.NewOfficeRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)

	// 6. Initialize services
	adminAuthSvc := service.NewAdminAuthService(adminRepo)
	historySvc := service.NewHistoryService(historyRepo, latestCache, sse.NewHubNotifier(hub), cfg.History.LatestLimit)
	productSvc := service.NewProductService(productRepo, historySvc)
	officeSvc := service.NewOfficeService(officeRepo, historySvc)
	quoteSvc := service.NewQuoteService(quoteRepo, historySvc)
	wizardSvc := service.NewWizardService(storeCache, quoteSvc, cfg.Quote.PersistServices, cfg.Quote.StoreTTL)
	dispatchSvc := service.NewDispatchService(quoteRepo, cfg.Quote.WebhookURL, cfg.Quote.WebhookSecret)

	// 6a. Seed the first operator
	if cfg.Admin.Email != "" {
		seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := adminAuthSvc.EnsureAdmin(seedCtx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
		seedCancel()
		if err != nil {
			log.Error().Err(err).Msg("admin seeding failed")
			fmt.Fprintf(os.Stderr, "admin seeding failed: %v\n", err)
			os.Exit(1)
		}
	}

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:  handler.NewHealthHandler(db.PingContext, redisClient.Ping, hub.ClientCount),
		Auth:    handler.NewAuthHandler(adminAuthSvc),
		History: handler.NewHistoryHandler(historySvc),
		SSE:     handler.NewSSEHandler(hub),
		Product: handler.NewProductManagementHandler(productSvc),
		Office:  handler.NewOfficeHandler(officeSvc),
		Quote:   handler.NewQuoteHandler(quoteSvc, wizardSvc),
		Wizard:  handler.NewWizardHandler(wizardSvc),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()
	loginLimiter := middleware.NewInvalidAuthRateLimiter()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw, loginLimiter)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go loginLimiter.Start(ctx)
	go wizardSvc.Start(ctx)
	if dispatchSvc.Enabled() {
		go worker.NewQuoteDispatchWorker(dispatchSvc, cfg.Worker.DispatchInterval).Start(ctx)
	} else {
		log.Warn().Msg("QUOTE_WEBHOOK_URL not set - quote dispatch disabled")
	}

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	History *handler.HistoryHandler
	SSE     *handler.SSEHandler
	Product *handler.ProductManagementHandler
	Office  *handler.OfficeHandler
	Quote   *handler.QuoteHandler
	Wizard  *handler.WizardHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, loginLimiter *middleware.InvalidAuthRateLimiter) {
	router.GET("/v1/health", handlers.Health.GetHealth)
	router.POST("/v1/auth/login", loginLimiter.Handle(), handlers.Auth.Login)

	// EventSource cannot send headers; the stream authenticates via ?token=.
	router.GET("/v1/history/stream", handlers.SSE.Stream)

	v1 := router.Group("/v1")
	v1.Use(jwtMiddleware.Handle())
	{
		v1.GET("/auth/me", handlers.Auth.Me)

		// Activity history
		v1.GET("/history", handlers.History.List)
		v1.GET("/history/latest", handlers.History.Latest)
		v1.GET("/history/:id", handlers.History.Get)
		v1.GET("/history/:id/details", handlers.History.Details)

		// Product catalog
		v1.GET("/products", handlers.Product.ListProducts)
		v1.POST("/products", handlers.Product.CreateProduct)
		v1.POST("/products/bulk", handlers.Product.BulkCreateProducts)
		v1.POST("/products/bulk-delete", handlers.Product.BulkDeleteProducts)
		v1.GET("/products/:id", handlers.Product.GetProduct)
		v1.PATCH("/products/:id", handlers.Product.UpdateProduct)
		v1.DELETE("/products/:id", handlers.Product.DeleteProduct)

		// Offices
		v1.GET("/offices", handlers.Office.ListOffices)
		v1.POST("/offices", handlers.Office.CreateOffice)
		v1.GET("/offices/:id", handlers.Office.GetOffice)
		v1.PATCH("/offices/:id", handlers.Office.UpdateOffice)
		v1.DELETE("/offices/:id", handlers.Office.DeleteOffice)

		// Quote wizard
		v1.GET("/quote/store", handlers.Wizard.GetStore)
		v1.POST("/quote/wizard/:flow/events", handlers.Wizard.FireEvent)
		v1.DELETE("/quote/products/:id", handlers.Wizard.RemoveProduct)
		v1.DELETE("/quote/services/:id", handlers.Wizard.RemoveService)

		// Submitted quotes
		v1.POST("/quotes", handlers.Quote.Submit)
		v1.GET("/quotes", handlers.Quote.List)
		v1.GET("/quotes/:id", handlers.Quote.Get)
		v1.POST("/quotes/:id/cancel", handlers.Quote.Cancel)
	}
}

func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
