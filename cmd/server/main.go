package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prnairport/flight-ops-backend/internal/cache"
	"github.com/prnairport/flight-ops-backend/internal/config"
	"github.com/prnairport/flight-ops-backend/internal/database"
	"github.com/prnairport/flight-ops-backend/internal/handlers"
	"github.com/prnairport/flight-ops-backend/internal/middleware"
	"github.com/prnairport/flight-ops-backend/internal/services"
	"github.com/prnairport/flight-ops-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Flight Operations Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Redis (board filter memory + resource locks)
	logger.Info("Connecting to Redis...")
	redisStore := cache.NewRedisStore(cfg.Redis, cfg.Session.FilterTTL)
	defer redisStore.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisStore.Ping(pingCtx); err != nil {
		pingCancel()
		logger.Fatalf("Failed to ping Redis: %v", err)
	}
	pingCancel()
	logger.Info("Redis connection established")

	// Initialize repositories
	flightRepo := database.NewFlightRepository(db)
	airlineRepo := database.NewAirlineRepository(db)
	gateRepo := database.NewGateRepository(db)
	deskRepo := database.NewCheckInDeskRepository(db)
	favoriteRepo := database.NewFlightFavoriteRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer)
	auditService := services.NewAuditService(db)
	conflictValidator := services.NewConflictValidator(flightRepo)
	flightService := services.NewFlightService(
		flightRepo,
		gateRepo,
		deskRepo,
		airlineRepo,
		conflictValidator,
		redisStore,
		logger,
		cfg.Airport,
		cfg.Session,
	)
	boardService := services.NewBoardService(flightRepo, redisStore, logger)
	statsService := services.NewStatsService(flightRepo, gateRepo)
	logger.Info("Services initialized")

	// Initialize handlers
	flightHandler := handlers.NewFlightHandler(flightService, flightRepo, auditService)
	boardHandler := handlers.NewBoardHandler(boardService, statsService)
	registryHandler := handlers.NewRegistryHandler(airlineRepo, gateRepo, deskRepo)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteRepo, flightRepo)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db, redisStore))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Board routes (public, caller identified when a token is present)
		board := v1.Group("/board")
		board.Use(middleware.OptionalAuthMiddleware(jwtService))
		{
			board.GET("", boardHandler.GetBoard)
			board.GET("/stats", boardHandler.GetStats)
		}

		// Resetting filter memory requires an identified caller
		v1.POST("/board/reset",
			middleware.AuthMiddleware(jwtService),
			boardHandler.ResetBoardFilters,
		)

		// Registry routes (public reference data)
		v1.GET("/airlines", registryHandler.ListAirlines)
		v1.GET("/gates", registryHandler.ListGates)
		v1.GET("/gates/:id", registryHandler.GetGate)
		v1.GET("/check-in-desks", registryHandler.ListCheckInDesks)

		// Flight lookup (public; retired flights only for privileged callers)
		v1.GET("/flights/:id",
			middleware.OptionalAuthMiddleware(jwtService),
			flightHandler.GetFlight,
		)

		// Flight write routes (admin/staff only)
		flights := v1.Group("/flights")
		flights.Use(middleware.AuthMiddleware(jwtService))
		flights.Use(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleStaff))
		{
			flights.POST("", flightHandler.CreateFlight)
			flights.POST("/validate", flightHandler.ValidateFlight)
			flights.PUT("/:id", flightHandler.UpdateFlight)
			flights.DELETE("/:id", flightHandler.RetireFlight)
		}

		// Favorite routes (any identified caller)
		favorites := v1.Group("/favorites")
		favorites.Use(middleware.AuthMiddleware(jwtService))
		{
			favorites.GET("", favoriteHandler.ListFavorites)
			favorites.POST("/:id", favoriteHandler.AddFavorite)
			favorites.DELETE("/:id", favoriteHandler.RemoveFavorite)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
		} else {
			status := c.Writer.Status()
			if status >= 500 {
				entry.Error("Request completed with server error")
			} else if status >= 400 {
				entry.Warn("Request completed with client error")
			} else {
				entry.Info("Request completed successfully")
			}
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB, redisStore *cache.RedisStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		redisStatus := "healthy"
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := redisStore.Ping(ctx); err != nil {
			// board memory and locks degrade, the board itself still works
			redisStatus = "unhealthy"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"redis":     redisStatus,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
