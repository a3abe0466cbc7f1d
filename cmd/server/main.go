package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/profilesync/internal/application/profilesync"
	"github.com/storefront/profilesync/internal/domain/identity"
	"github.com/storefront/profilesync/internal/infrastructure/config"
	"github.com/storefront/profilesync/internal/infrastructure/event"
	identityclient "github.com/storefront/profilesync/internal/infrastructure/identity"
	"github.com/storefront/profilesync/internal/infrastructure/logger"
	"github.com/storefront/profilesync/internal/infrastructure/persistence"
	"github.com/storefront/profilesync/internal/infrastructure/syncstate"
	"github.com/storefront/profilesync/internal/interfaces/http/handler"
	"github.com/storefront/profilesync/internal/interfaces/http/middleware"
	"github.com/storefront/profilesync/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const version = "1.0.0"

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

	log.Info("Starting profile sync service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Initialize repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)

	// Sync exclusion store: Redis when configured, process-local otherwise
	var exclusions identity.SyncExclusions
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cancel()
		exclusions = syncstate.NewRedisExclusionSetWithClient(redisClient, "sync:exclusion:", cfg.Sync.ExclusionTTL)
		log.Info("Using Redis-backed sync exclusions",
			zap.String("host", cfg.Redis.Host),
			zap.Duration("ttl", cfg.Sync.ExclusionTTL),
		)
	} else {
		exclusions = syncstate.NewInMemoryExclusionSet()
		log.Info("Using in-memory sync exclusions")
	}
	processed := syncstate.NewProcessedRegistry()

	// Identity service client
	accountClient, err := identityclient.NewClient(&identityclient.ClientConfig{
		BaseURL:        cfg.Identity.BaseURL,
		APIToken:       cfg.Identity.APIToken,
		TimeoutSeconds: cfg.Identity.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to create identity service client", zap.Error(err))
	}

	// Initialize event bus and sync subscribers
	eventBus := event.NewInMemoryEventBus(log)

	enricherOpts := []profilesync.EnricherOption{
		profilesync.WithLoggingEmail(cfg.Identity.LoggingEmail),
	}
	if cfg.Sync.AbortOnMappingError {
		enricherOpts = append(enricherOpts, profilesync.WithMappingErrorPolicy(profilesync.AbortOnMappingError))
	}
	enricher := profilesync.NewCustomerEnricher(
		accountClient, customerRepo, exclusions, processed, eventBus, log,
		enricherOpts...,
	)

	// Passive on-load enrichment is configurable; the manual trigger
	// endpoint always works through the enricher directly.
	if cfg.Sync.EnrichmentEnabled {
		eventBus.Subscribe(enricher)
		log.Info("Profile enrichment enabled",
			zap.Bool("abort_on_mapping_error", cfg.Sync.AbortOnMappingError),
		)
	}

	if cfg.Sync.ReversePushEnabled {
		pusher := profilesync.NewAccountPusher(accountClient, exclusions, log)
		eventBus.Subscribe(pusher)
		log.Info("Reverse profile push enabled")
	}

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Initialize application services
	customerService := profilesync.NewCustomerService(customerRepo, eventBus, log)
	syncService := profilesync.NewSyncService(customerRepo, enricher, log)

	// Initialize handlers
	customerHandler := handler.NewCustomerHandler(customerService)
	syncHandler := handler.NewSyncHandler(syncService)
	systemHandler := handler.NewSystemHandler(version, db)

	// Setup gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS())

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	customerRoutes := router.NewDomainGroup("customers", "/customers")
	customerRoutes.POST("", customerHandler.Create)
	customerRoutes.GET("", customerHandler.List)
	customerRoutes.GET("/:id", customerHandler.GetByID)
	customerRoutes.PUT("/:id", customerHandler.UpdateProfile)
	customerRoutes.PUT("/:id/account", customerHandler.LinkAccount)
	customerRoutes.POST("/:id/sync", syncHandler.TriggerSync)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/health", systemHandler.Health)

	r.Register(customerRoutes).Register(systemRoutes)
	r.Setup()

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

	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
