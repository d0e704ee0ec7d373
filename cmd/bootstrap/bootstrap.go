package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-clinic-appointment/config"
	deliveryHttp "go-clinic-appointment/internal/delivery/http"
	"go-clinic-appointment/internal/delivery/http/handler"
	"go-clinic-appointment/internal/delivery/http/middleware"
	"go-clinic-appointment/internal/domain/entity"
	"go-clinic-appointment/internal/infrastructure/cache"
	"go-clinic-appointment/internal/infrastructure/database"
	"go-clinic-appointment/internal/repository"
	"go-clinic-appointment/internal/service"
	"go-clinic-appointment/internal/usecase"
	"go-clinic-appointment/pkg/jwt"
	"go-clinic-appointment/pkg/validator"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	SlotLock    *service.SlotLockService
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
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Run schema migration
	if err := entity.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	logrus.Info("Database schema migrated")

	// Seed the initial admin account
	if err := seedAdmin(db, cfg.Admin); err != nil {
		return nil, fmt.Errorf("failed to seed admin account: %w", err)
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	server, slotLock := initializeServer(cfg, db, redisClient)
	app.Server = server
	app.SlotLock = slotLock

	return app, nil
}

// seedAdmin creates the configured admin account if it does not exist yet.
func seedAdmin(db *gorm.DB, cfg config.AdminConfig) error {
	if cfg.Username == "" {
		return nil
	}

	adminRepo := repository.NewAdminRepository()
	existing, err := adminRepo.FindByUsername(db, cfg.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := adminRepo.Create(db, &entity.Admin{
		ID:       uuid.New(),
		Username: cfg.Username,
		Password: string(hash),
	}); err != nil {
		return err
	}

	logrus.Infof("Seeded admin account: %s", cfg.Username)
	return nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*http.Server, *service.SlotLockService) {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize repositories
	adminRepo := repository.NewAdminRepository()
	doctorRepo := repository.NewDoctorRepository()
	patientRepo := repository.NewPatientRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	prescriptionRepo := repository.NewPrescriptionRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	slotLock := service.NewSlotLockService(log)
	auditService := service.NewAuditService(db, log, auditLogRepo)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, adminRepo, doctorRepo, patientRepo, jwtService, redisClient, auditService)
	availabilityUsecase := usecase.NewAvailabilityUsecase(db, log, doctorRepo, appointmentRepo)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, doctorRepo, patientRepo, appointmentRepo, slotLock, auditService)
	doctorUsecase := usecase.NewDoctorUsecase(db, log, doctorRepo, appointmentRepo, auditService)
	patientUsecase := usecase.NewPatientUsecase(db, log, patientRepo, appointmentRepo, auditService)
	prescriptionUsecase := usecase.NewPrescriptionUsecase(db, log, prescriptionRepo, appointmentRepo, appointmentUsecase, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, availabilityUsecase, customValidator)
	patientHandler := handler.NewPatientHandler(patientUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	prescriptionHandler := handler.NewPrescriptionHandler(prescriptionUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(authHandler, doctorHandler, patientHandler, appointmentHandler, prescriptionHandler, auditLogHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}
	return server, slotLock
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
	// Stop background services
	if app.SlotLock != nil {
		app.SlotLock.Stop()
	}

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
