package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/database"
	"github.com/staynest/booking-backend/internal/events"
	"github.com/staynest/booking-backend/internal/handlers"
	"github.com/staynest/booking-backend/internal/middleware"
	"github.com/staynest/booking-backend/internal/services"
	"github.com/staynest/booking-backend/pkg/jwt"
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

	logger.Info("Starting StayNest booking backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Database
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	repos := database.NewRepositories(db.DB)

	// Event delivery
	var publisher events.Publisher = events.NewNoopPublisher(logger)
	if cfg.RabbitMQ.Enabled {
		publisher = events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, logger)
		logger.WithField("exchange", cfg.RabbitMQ.Exchange).Info("Publishing lifecycle events to RabbitMQ")
	}
	defer publisher.Close()

	// Rate limiting
	var rateLimiter *services.RateLimitService
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable at startup; rate limiter will fail open until it recovers")
		}
		cancel()

		rateLimiter = services.NewRateLimitService(services.NewRedisTokenBucket(rdb, cfg.RateLimit), cfg.RateLimit, logger)
	} else {
		logger.Warn("Redis disabled, write endpoints are not rate limited")
	}

	// Services
	logger.Info("Initializing services...")
	notifier := services.NewNotificationService(repos.Notifications, publisher, logger)
	userService := services.NewUserService(repos.Users, logger)
	viewService := services.NewViewService(repos.Views, repos.Places)
	reviewService := services.NewReviewService(repos.Reviews, repos.Bookings, notifier, logger)
	bookingService := services.NewBookingService(repos.Bookings, repos.Hotels, repos.Users, notifier, cfg.Booking, logger)
	availabilityService := services.NewAvailabilityService(repos.Hotels, repos.Bookings, logger)
	hotelService := services.NewHotelService(repos.Hotels, repos.Places, logger)
	wishlistService := services.NewWishlistService(repos.Wishlists, repos.Hotels, logger)
	hostService := services.NewHostService(repos.Dashboard, repos.Payments, repos.Reviews, repos.Views, repos.Notifications, cfg.Booking, logger)

	jwtService := jwt.NewService(cfg.Identity.Secret, cfg.Identity.Issuer, cfg.Identity.TokenExpiry)
	auth := middleware.NewAuth(jwtService, userService, logger)

	if err := handlers.RegisterValidators(); err != nil {
		logger.Fatalf("Failed to register validators: %v", err)
	}

	h := &handlers.Handlers{
		Search:        handlers.NewSearchHandler(availabilityService, logger),
		Hotels:        handlers.NewHotelHandler(hotelService, viewService, reviewService, logger),
		Bookings:      handlers.NewBookingHandler(bookingService, viewService, logger),
		Reviews:       handlers.NewReviewHandler(reviewService, logger),
		Wishlist:      handlers.NewWishlistHandler(wishlistService, logger),
		Notifications: handlers.NewNotificationHandler(notifier, logger),
		Host:          handlers.NewHostHandler(hostService, logger),
		Users:         handlers.NewUserHandler(userService, logger),
	}

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthCheckHandler(db))
	handlers.RegisterRoutes(router.Group("/api/v1"), h, auth, rateLimiter)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// healthCheckHandler reports database reachability
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
