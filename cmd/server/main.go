package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	invoicingapp "github.com/TOPOSV/Fakturace/internal/application/invoicing"
	partnerapp "github.com/TOPOSV/Fakturace/internal/application/partner"
	domaininvoicing "github.com/TOPOSV/Fakturace/internal/domain/invoicing"
	"github.com/TOPOSV/Fakturace/internal/domain/partner"
	"github.com/TOPOSV/Fakturace/internal/infrastructure/cache"
	"github.com/TOPOSV/Fakturace/internal/infrastructure/config"
	"github.com/TOPOSV/Fakturace/internal/infrastructure/logger"
	"github.com/TOPOSV/Fakturace/internal/infrastructure/persistence"
	"github.com/TOPOSV/Fakturace/internal/infrastructure/registry"
	"github.com/TOPOSV/Fakturace/internal/interfaces/http/handler"
	"github.com/TOPOSV/Fakturace/internal/interfaces/http/middleware"
	"github.com/TOPOSV/Fakturace/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Fakturace",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, gormLogLevel))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully",
		zap.String("driver", cfg.Database.Driver),
	)

	// Initialize repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)

	// Company registry lookup (ARES) with caching, if enabled
	var companyRegistry partner.CompanyRegistry
	if cfg.Registry.Enabled {
		cacheFactory := cache.NewCompanyCacheFactory(cfg.Cache, cfg.Redis, cache.WithLogger(log))
		companyCache, err := cacheFactory.CreateCache()
		if err != nil {
			log.Fatal("Failed to initialize company cache", zap.Error(err))
		}
		aresClient := registry.NewAresClient(cfg.Registry)
		companyRegistry = registry.NewCachedRegistry(aresClient, companyCache, cfg.Registry.CacheTTL)
		log.Info("Company registry lookup enabled",
			zap.String("base_url", cfg.Registry.BaseURL),
			zap.String("cache_backend", cfg.Cache.Backend),
			zap.Duration("cache_ttl", cfg.Registry.CacheTTL),
		)
	}

	// Initialize application services
	sequencer := domaininvoicing.NewNumberSequencer(invoiceRepo)
	conversionService := invoicingapp.NewConversionService(
		invoiceRepo,
		sequencer,
		invoicingapp.WithConversionDueDays(cfg.Invoicing.DueDays),
	)
	invoiceService := invoicingapp.NewInvoiceService(
		invoiceRepo,
		clientRepo,
		sequencer,
		conversionService,
		invoicingapp.WithSupplierVATPayer(cfg.Invoicing.VATPayer),
		invoicingapp.WithAutoConvert(cfg.Invoicing.AutoConvert),
		invoicingapp.WithDueDays(cfg.Invoicing.DueDays),
		invoicingapp.WithDefaultCurrency(cfg.Invoicing.DefaultCurrency),
	)

	clientOpts := []partnerapp.ClientServiceOption{}
	if companyRegistry != nil {
		clientOpts = append(clientOpts, partnerapp.WithCompanyRegistry(companyRegistry))
	}
	clientService := partnerapp.NewClientService(clientRepo, clientOpts...)

	// Initialize HTTP handlers
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, conversionService)
	clientHandler := handler.NewClientHandler(clientService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID first so recovery and logging carry it
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(invoiceHandler).
		Register(clientHandler).
		Register(systemHandler)
	r.Setup()

	// Health check endpoint outside API versioning, for load balancer probes
	r.Health(systemHandler.Health)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
