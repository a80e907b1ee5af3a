package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/adapter"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/application"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/config"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/domain/booking"
	bookingEvents "github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/events"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/handler"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/repository"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/internal/saga"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/auth"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/database"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/health"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/kafka"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/logger"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/middleware"
	"github.com/Elishanunana/hostel-booking-app-backend-deploy/pkg/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const serviceName = "hostel-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("gateway", cfg.PaymentConfig.Gateway),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}

	db, err := database.Connect(dbConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := repository.AutoMigrate(db); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), cfg.MigrationsDir, zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	store := repository.NewStore(db)

	// Event publishing goes to Kafka when enabled, otherwise to the log.
	var publisher bookingEvents.Publisher = bookingEvents.NewLogPublisher(zapLogger)
	if cfg.KafkaConfig.Enabled {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
		defer kafkaProducer.Close()
		publisher = bookingEvents.NewKafkaPublisher(kafkaProducer)
	}

	// Initialize payment gateway
	var gateway adapter.PaymentGateway
	switch cfg.PaymentConfig.Gateway {
	case "paystack":
		gateway = adapter.NewPaystackGateway(adapter.PaystackConfig{
			SecretKey:   cfg.PaystackConfig.SecretKey,
			BaseURL:     cfg.PaystackConfig.BaseURL,
			CallbackURL: cfg.PaystackConfig.CallbackURL,
		}, zapLogger)
	default:
		gateway = adapter.NewMockGateway(zapLogger)
	}

	// Initialize application services
	availabilityService := application.NewAvailabilityService(store, zapLogger)
	validator := booking.NewValidator(store.Rooms(), store.Bookings())
	sagaService := saga.NewPaymentSagaService(validator, gateway, publisher, zapLogger)

	bookingService := application.NewBookingService(store, availabilityService, publisher, zapLogger)
	paymentService := application.NewPaymentService(store, sagaService, availabilityService, publisher, cfg.PaymentConfig.Currency, zapLogger)
	reconciliationService := application.NewReconciliationService(
		store,
		availabilityService,
		publisher,
		cfg.PaymentConfig.AmountTolerance,
		cfg.PaymentConfig.Currency,
		zapLogger,
	)
	roomService := application.NewRoomService(store, zapLogger)
	dashboardService := application.NewDashboardService(store, zapLogger)

	// Kafka consumer re-derives room availability from booking events.
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	if cfg.KafkaConfig.Enabled {
		consumerGroupID := cfg.KafkaConfig.GroupPrefix + "availability"
		availabilityConsumer := bookingEvents.NewAvailabilityConsumer(
			cfg.KafkaConfig.Brokers,
			consumerGroupID,
			availabilityService,
			zapLogger,
		)
		defer availabilityConsumer.Close()

		go func() {
			zapLogger.Info("starting availability consumer")
			if err := availabilityConsumer.Start(consumerCtx); err != nil {
				if consumerCtx.Err() == nil {
					zapLogger.Error("availability consumer failed", zap.Error(err))
				}
			}
		}()
	}

	// Webhook rate limiter: shared through Redis when configured.
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(cfg.WebhookConfig.RateLimit, cfg.WebhookConfig.RateWindow)
	if cfg.RedisConfig.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer redisClient.Close()

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			zapLogger.Warn("redis unreachable, using in-process rate limiter", zap.Error(err))
		} else {
			limiter = ratelimit.NewRedisLimiter(redisClient, "ratelimit:webhook", cfg.WebhookConfig.RateLimit, cfg.WebhookConfig.RateWindow)
		}
		pingCancel()
	}

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	webhookHandler := handler.NewWebhookHandler(reconciliationService, cfg.PaystackConfig.SecretKey, zapLogger)
	roomHandler := handler.NewRoomHandler(roomService, dashboardService)
	adminPaymentHandler := handler.NewAdminPaymentHandler(paymentService)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := middleware.NewEngine(cfg.TrustedProxies)
	if err != nil {
		zapLogger.Fatal("failed to create router", zap.Error(err))
	}

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, serviceName)
	healthHandler.RegisterRoutes(router)

	// Register API routes
	apiV1 := router.Group("/api/v1")
	bookingHandler.RegisterRoutes(apiV1, jwtManager)
	paymentHandler.RegisterRoutes(apiV1, jwtManager)
	webhookHandler.RegisterRoutes(apiV1, middleware.RateLimitMiddleware(limiter, zapLogger))
	roomHandler.RegisterRoutes(apiV1, jwtManager)
	adminPaymentHandler.RegisterRoutes(apiV1, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down " + serviceName + "...")

	consumerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info(serviceName + " stopped")
}
