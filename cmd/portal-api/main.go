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
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"clientbridge/onboarding-portal/portal-backend/internal/ai"
	"clientbridge/onboarding-portal/portal-backend/internal/auth"
	"clientbridge/onboarding-portal/portal-backend/internal/clients"
	"clientbridge/onboarding-portal/portal-backend/internal/config"
	"clientbridge/onboarding-portal/portal-backend/internal/dashboard"
	"clientbridge/onboarding-portal/portal-backend/internal/documents"
	"clientbridge/onboarding-portal/portal-backend/internal/notifications"
	"clientbridge/onboarding-portal/portal-backend/internal/onboarding"
	"clientbridge/onboarding-portal/portal-backend/internal/scheduler"
	"clientbridge/onboarding-portal/portal-backend/internal/signatures"
	"clientbridge/onboarding-portal/portal-backend/pkg/pdf"
	"clientbridge/onboarding-portal/portal-backend/pkg/storage"
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Database
	dbURL := cfg.Database.GetDatabaseURL()
	logger.Info("Connecting to database",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.DBName))
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// The notification log rides the same database through gorm
	gormDB, err := gorm.Open(gormpostgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to open gorm connection", zap.Error(err))
	}

	// Object storage and outbound email
	s3Client, err := storage.NewS3Client(ctx, cfg.Storage.Region)
	if err != nil {
		logger.Fatal("Failed to initialize S3 client", zap.Error(err))
	}
	emailSender, err := notifications.NewSESSender(ctx, cfg.Email.Region, cfg.Email.FromName, cfg.Email.FromAddress)
	if err != nil {
		logger.Fatal("Failed to initialize email sender", zap.Error(err))
	}
	notifService, err := notifications.NewService(gormDB, emailSender, logger)
	if err != nil {
		logger.Fatal("Failed to initialize notifications", zap.Error(err))
	}

	// Clients
	clientsRepo := clients.NewRepository(db)
	clientsService := clients.NewService(clientsRepo, s3Client, cfg.Storage.Bucket, logger)
	clientsHandler := clients.NewHandler(clientsService)

	// Documents
	docsRepo := documents.NewRepository(db)
	docsService := documents.NewService(docsRepo, s3Client, cfg.Storage.Bucket, cfg.Storage.PresignExpiry, logger)
	docsHandler := documents.NewHandler(docsService)

	// Content drafting
	aiClient := ai.NewClient(cfg.AI.BaseURL, cfg.AI.Timeout)

	// Onboarding wizard, steps and engagements
	onboardingRepo := onboarding.NewRepository(db)
	sessions := onboarding.NewSessionStore()
	onboardingService := onboarding.NewService(onboardingRepo, sessions, docsService, aiClient, clientsRepo, notifService, logger)
	onboardingHandler := onboarding.NewHandler(onboardingService)

	// Dashboard aggregation, deliverables and risks
	aggregator := dashboard.NewAggregator(onboardingRepo, clientsRepo, logger)
	dashboardRepo := dashboard.NewRepository(db)
	dashboardService := dashboard.NewService(dashboardRepo)
	hub := dashboard.NewHub(aggregator, logger)
	dashboardHandler := dashboard.NewHandler(aggregator, dashboardService, hub)
	onboardingService.SetProgressPublisher(hub)

	// Signatures
	sigRepo := signatures.NewRepository(db)
	sigService := signatures.NewService(
		sigRepo,
		docsService,
		clientsRepo,
		notifService,
		pdf.NewCertificateGenerator(),
		s3Client,
		cfg.Storage.Bucket,
		cfg.Storage.PresignExpiry,
		cfg.Server.PublicBaseURL,
		logger,
	)
	sigHandler := signatures.NewHandler(sigService)

	// Staff auth
	authRepo := auth.NewRepository(db)
	authService := auth.NewService(authRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authHandler := auth.NewHandler(authService)

	// Signature reminder job
	reminders := scheduler.NewReminderScheduler(
		sigRepo, docsService, notifService,
		cfg.Scheduler.ReminderCron, cfg.Scheduler.ReminderAge, logger)
	if err := reminders.Start(); err != nil {
		logger.Fatal("Failed to start reminder scheduler", zap.Error(err))
	}

	// Router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api/v1")
	{
		authHandler.RegisterRoutes(api)
	}

	staff := api.Group("", auth.Middleware(authService))
	{
		authHandler.RegisterProtectedRoutes(staff)
		clientsHandler.RegisterRoutes(staff)
		docsHandler.RegisterRoutes(staff)
		onboardingHandler.RegisterRoutes(staff)
		dashboardHandler.RegisterRoutes(staff)
		sigHandler.RegisterRoutes(staff)
		notifications.NewHandler(notifService).RegisterRoutes(staff)
	}

	public := router.Group("/public/v1")
	{
		sigHandler.RegisterPublicRoutes(public)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	reminders.Stop()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
