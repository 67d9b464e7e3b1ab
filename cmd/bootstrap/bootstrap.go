package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telehealth-consult/config"
	deliveryHttp "telehealth-consult/internal/delivery/http"
	"telehealth-consult/internal/delivery/http/handler"
	"telehealth-consult/internal/delivery/http/middleware"
	"telehealth-consult/internal/faq"
	"telehealth-consult/internal/infrastructure/cache"
	"telehealth-consult/internal/infrastructure/database"
	"telehealth-consult/internal/media"
	"telehealth-consult/internal/repository"
	"telehealth-consult/internal/service"
	"telehealth-consult/internal/storage"
	"telehealth-consult/internal/usecase"
	"telehealth-consult/pkg/jwt"
	"telehealth-consult/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	if level, err := logrus.ParseLevel(cfg.App.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.Warnf("Unknown log level %q, keeping info", cfg.App.LogLevel)
	}
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	if err := database.RunMigrations(db); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logrus.Info("Database migrations applied")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	server, err := initializeServer(cfg, db, redisClient)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Server = server

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*http.Server, error) {
	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	consultationRepo := repository.NewConsultationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize services
	sessionStore := service.NewRedisSessionStore(redisClient)
	notifier := service.NewRedisMessageNotifier(redisClient)
	auditService := service.NewAuditService(log, auditLogRepo)

	// Initialize file storage
	profiles, err := storage.NewProfileStore(cfg.Storage.ProfilePictureDir, log)
	if err != nil {
		return nil, err
	}
	recorder := media.NewFFmpegRecorder(cfg.Media.FFmpegPath, cfg.Media.Device, log)
	mediaStore, err := media.NewStore(cfg.Media.Dir, recorder, log)
	if err != nil {
		return nil, err
	}

	// Load FAQ corpus
	entries, err := faq.LoadCorpus(cfg.FAQ.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load faq corpus: %w", err)
	}
	matcher := faq.NewMatcher(entries)
	logrus.Infof("FAQ corpus loaded with %d entries", matcher.Len())

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, userRepo, profiles, jwtService, sessionStore, auditService,
		usecase.AuthOptions{AllowAdminSignup: cfg.App.AllowAdminSignup})
	consultationUsecase := usecase.NewConsultationUsecase(log, consultationRepo, auditService)
	messageUsecase := usecase.NewMessageUsecase(log, messageRepo, consultationRepo, notifier, cfg.Chat.PollTimeout)
	recordingUsecase := usecase.NewRecordingUsecase(log, consultationRepo, mediaStore, auditService, usecase.RecordingOptions{
		DefaultDuration: cfg.Media.DefaultDuration,
		MaxDuration:     cfg.Media.MaxDuration,
	})
	faqUsecase := usecase.NewFAQUsecase(log, matcher, usecase.FAQOptions{
		CorpusPath: cfg.FAQ.CorpusPath,
		DefaultK:   cfg.FAQ.DefaultK,
		MinScore:   cfg.FAQ.MinScore,
	})
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator, jwtService)
	consultationHandler := handler.NewConsultationHandler(consultationUsecase, customValidator)
	messageHandler := handler.NewMessageHandler(messageUsecase, customValidator)
	recordingHandler := handler.NewRecordingHandler(recordingUsecase, customValidator)
	faqHandler := handler.NewFAQHandler(faqUsecase)
	patientHandler := handler.NewPatientHandler(authUsecase)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authUsecase)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		consultationHandler,
		messageHandler,
		recordingHandler,
		faqHandler,
		patientHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
	)
	httpRouter := router.Setup()

	// Create server. No write timeout: recordings and chat long-polls hold
	// the response open.
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
