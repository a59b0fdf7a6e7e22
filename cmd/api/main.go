package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/config"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/handler"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/integrations/market"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/integrations/weather"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/middleware"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/repository/postgres"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/repository/storage"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/service"
	"github.com/kvharsha/fintrack/fintrack-backend/internal/websocket"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	stateRepo := postgres.NewBudgetStateRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	billRepo := postgres.NewBillRepository(pool)
	goalRepo := postgres.NewGoalRepository(pool)
	debtRepo := postgres.NewDebtRepository(pool)
	debtPaymentRepo := postgres.NewDebtPaymentRepository(pool)
	investmentRepo := postgres.NewInvestmentRepository(pool)
	investmentTxnRepo := postgres.NewInvestmentTransactionRepository(pool)
	riskProfileRepo := postgres.NewRiskProfileRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Receipt storage is optional: uploads stay disabled without credentials
	var receiptStore storage.ReceiptRepository
	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		s3Store, err := storage.NewS3ReceiptRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize receipt storage")
		}
		receiptStore = s3Store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Receipt storage enabled")
	} else {
		log.Warn().Msg("Receipt storage disabled (no S3 credentials)")
	}

	// External data feeds are optional too; the services fall back to
	// degraded responses when a client is absent.
	var weatherClient *weather.Client
	if cfg.Weather.APIKey != "" {
		weatherClient = weather.NewClient(cfg.Weather)
	} else {
		log.Warn().Msg("Weather feed disabled (no API key)")
	}
	var marketClient *market.Client
	if cfg.Market.APIKey != "" {
		marketClient = market.NewClient(cfg.Market)
	} else {
		log.Warn().Msg("Market feed disabled (no API key)")
	}

	// WebSocket hub doubles as the event publisher for all services
	hub := websocket.NewHub()

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.BCryptCost)
	budgetService := service.NewBudgetService(stateRepo, hub)
	expenseService := service.NewExpenseService(expenseRepo, stateRepo, txRunner, hub)
	billService := service.NewBillService(billRepo, expenseRepo, stateRepo, txRunner, hub)
	goalService := service.NewGoalService(goalRepo, stateRepo, txRunner, hub, &service.LinearProjector{})
	debtService := service.NewDebtService(debtRepo, debtPaymentRepo, txRunner, hub)
	investmentService := service.NewInvestmentService(investmentRepo, investmentTxnRepo, riskProfileRepo, marketClient)
	weatherService := service.NewWeatherService(weatherClient, cfg.Weather.City)
	dashboardService := service.NewDashboardService(budgetService, expenseService, billService, goalService, debtService, investmentService, billRepo, expenseRepo)
	receiptService := service.NewReceiptService(receiptStore, expenseRepo)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	budgetHandler := handler.NewBudgetHandler(budgetService)
	expenseHandler := handler.NewExpenseHandler(expenseService)
	billHandler := handler.NewBillHandler(billService)
	goalHandler := handler.NewGoalHandler(goalService)
	debtHandler := handler.NewDebtHandler(debtService)
	investmentHandler := handler.NewInvestmentHandler(investmentService)
	weatherHandler := handler.NewWeatherHandler(weatherService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	receiptHandler := handler.NewReceiptHandler(receiptService)
	wsHandler := handler.NewWebSocketHandler(hub, websocket.NewJWTValidator(cfg.JWTSecret), cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, authHandler, budgetHandler, expenseHandler, billHandler, goalHandler, debtHandler, investmentHandler, weatherHandler, dashboardHandler, receiptHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
