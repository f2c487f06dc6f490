package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	lendingapp "github.com/loanbook/backend/internal/application/lending"
	partyapp "github.com/loanbook/backend/internal/application/party"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/infrastructure/cache"
	"github.com/loanbook/backend/internal/infrastructure/config"
	"github.com/loanbook/backend/internal/infrastructure/event"
	"github.com/loanbook/backend/internal/infrastructure/logger"
	"github.com/loanbook/backend/internal/infrastructure/persistence"
	"github.com/loanbook/backend/internal/infrastructure/scheduler"
	"github.com/loanbook/backend/internal/interfaces/http/handler"
	"github.com/loanbook/backend/internal/interfaces/http/middleware"
	"github.com/loanbook/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
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

	log.Info("Starting Loanbook Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	syndicateRepo := persistence.NewGormSyndicateRepository(db.DB)
	facilityRepo := persistence.NewGormFacilityRepository(db.DB)
	drawdownRepo := persistence.NewGormDrawdownRepository(db.DB)
	loanRepo := persistence.NewGormLoanRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	borrowerRepo := persistence.NewGormBorrowerRepository(db.DB)
	investorRepo := persistence.NewGormInvestorRepository(db.DB)
	unitOfWork := persistence.NewGormUnitOfWork(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(event.Config{
		BufferSize:  cfg.Event.BufferSize,
		HandlerWait: cfg.Event.HandlerWait,
	}, log)

	// Register event handlers
	// Lifecycle events -> structured activity log
	activityLogHandler := lendingapp.NewActivityLogHandler(log)
	eventBus.Subscribe(activityLogHandler)

	log.Info("Event handlers registered",
		zap.Strings("activity_log_events", activityLogHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	partyService := partyapp.NewPartyService(borrowerRepo, investorRepo, eventBus)
	syndicateService := lendingapp.NewSyndicateService(syndicateRepo, borrowerRepo, investorRepo, eventBus)
	facilityService := lendingapp.NewFacilityService(unitOfWork, facilityRepo, syndicateRepo, drawdownRepo, loanRepo, eventBus)
	drawdownService := lendingapp.NewDrawdownService(unitOfWork, drawdownRepo, facilityRepo, borrowerRepo, eventBus)
	paymentService := lendingapp.NewPaymentService(unitOfWork, paymentRepo, loanRepo, eventBus, log)
	transactionService := lendingapp.NewTransactionService(transactionRepo)

	// Initialize overdue sweep scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		schedulerConfig := scheduler.OverdueSchedulerConfig{
			Enabled:           cfg.Scheduler.Enabled,
			DailyCronSchedule: cfg.Scheduler.DailyCronSchedule,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}
		sweepJobRepo := scheduler.NewSweepJobRepository(db.DB)
		overdueScheduler := scheduler.NewOverdueScheduler(schedulerConfig, paymentService, sweepJobRepo, log)
		if err := overdueScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start overdue scheduler", zap.Error(err))
		}
		defer func() {
			if err := overdueScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping overdue scheduler", zap.Error(err))
			}
		}()
		log.Info("Overdue scheduler started",
			zap.String("schedule", cfg.Scheduler.DailyCronSchedule),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)
	}

	// Initialize idempotency store (Redis when available, in-memory otherwise)
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	syndicateHandler := handler.NewSyndicateHandler(syndicateService)
	facilityHandler := handler.NewFacilityHandler(facilityService)
	drawdownHandler := handler.NewDrawdownHandler(drawdownService)
	loanHandler := handler.NewLoanHandler(paymentService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	transactionHandler := handler.NewTransactionHandler(transactionService)
	borrowerHandler := handler.NewBorrowerHandler(partyService)
	investorHandler := handler.NewInvestorHandler(partyService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. Idempotency - Reject replayed mutating requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Request idempotency for mutating financial endpoints
	engine.Use(middleware.Idempotency(idempotencyStore, shared.IdempotencyConfig{
		TTL:     cfg.HTTP.IdempotencyTTL,
		Enabled: true,
	}))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Register domain route groups

	// Syndicate routes
	syndicateRoutes := router.NewDomainGroup("syndicates", "/syndicates")
	syndicateRoutes.POST("", syndicateHandler.Create)
	syndicateRoutes.GET("", syndicateHandler.List)
	syndicateRoutes.GET("/:id", syndicateHandler.GetByID)
	syndicateRoutes.PUT("/:id", syndicateHandler.Update)

	// Facility routes
	facilityRoutes := router.NewDomainGroup("facilities", "/facilities")
	facilityRoutes.POST("", facilityHandler.Create)
	facilityRoutes.GET("", facilityHandler.List)
	facilityRoutes.GET("/:id", facilityHandler.GetByID)
	facilityRoutes.POST("/:id/revert-to-draft", facilityHandler.RevertToDraft)
	facilityRoutes.POST("/:id/complete", facilityHandler.Complete)

	// Drawdown routes
	drawdownRoutes := router.NewDomainGroup("drawdowns", "/drawdowns")
	drawdownRoutes.POST("", drawdownHandler.Create)
	drawdownRoutes.GET("", drawdownHandler.List)
	drawdownRoutes.GET("/:id", drawdownHandler.GetByID)
	drawdownRoutes.PUT("/:id", drawdownHandler.Update)
	drawdownRoutes.DELETE("/:id", drawdownHandler.Delete)
	drawdownRoutes.POST("/:id/execute", drawdownHandler.Execute)

	// Loan routes (loans are created by drawdown execution, never directly)
	loanRoutes := router.NewDomainGroup("loans", "/loans")
	loanRoutes.GET("", loanHandler.List)
	loanRoutes.GET("/:id", loanHandler.GetByID)
	loanRoutes.POST("/:id/payments", paymentHandler.Process)
	loanRoutes.POST("/:id/overdue", loanHandler.MarkOverdue)

	// Scheduled payment settlement
	paymentDetailRoutes := router.NewDomainGroup("payment-details", "/payment-details")
	paymentDetailRoutes.POST("/:id/pay", paymentHandler.ProcessScheduled)

	// Payment query and sweep routes
	paymentRoutes := router.NewDomainGroup("payments", "/payments")
	paymentRoutes.GET("", paymentHandler.List)
	paymentRoutes.GET("/:id", paymentHandler.GetByID)
	paymentRoutes.POST("/sweep-overdue", paymentHandler.SweepOverdue)

	// Transaction audit routes
	transactionRoutes := router.NewDomainGroup("transactions", "/transactions")
	transactionRoutes.GET("", transactionHandler.List)
	transactionRoutes.GET("/:id", transactionHandler.GetByID)

	// Party routes (borrowers, investors)
	partyRoutes := router.NewDomainGroup("parties", "/parties")
	partyRoutes.POST("/borrowers", borrowerHandler.Register)
	partyRoutes.GET("/borrowers", borrowerHandler.List)
	partyRoutes.GET("/borrowers/:id", borrowerHandler.GetByID)
	partyRoutes.PUT("/borrowers/:id", borrowerHandler.Update)
	partyRoutes.POST("/investors", investorHandler.Register)
	partyRoutes.GET("/investors", investorHandler.List)
	partyRoutes.GET("/investors/:id", investorHandler.GetByID)
	partyRoutes.PUT("/investors/:id", investorHandler.Update)

	// Register all domain groups
	r.Register(syndicateRoutes).
		Register(facilityRoutes).
		Register(drawdownRoutes).
		Register(loanRoutes).
		Register(paymentDetailRoutes).
		Register(paymentRoutes).
		Register(transactionRoutes).
		Register(partyRoutes)

	// Register system routes
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
