package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/voteguard/voteguard-api/internal/config"
	"github.com/voteguard/voteguard-api/internal/database"
	"github.com/voteguard/voteguard-api/internal/handler"
	"github.com/voteguard/voteguard-api/internal/middleware"
	"github.com/voteguard/voteguard-api/internal/models"
	"github.com/voteguard/voteguard-api/internal/repository"
	"github.com/voteguard/voteguard-api/internal/router"
	"github.com/voteguard/voteguard-api/internal/service"
	"github.com/voteguard/voteguard-api/pkg/notifier"
	"github.com/voteguard/voteguard-api/pkg/photos"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserRole{},
		&models.UserSession{},
		&models.Election{},
		&models.Contest{},
		&models.Candidate{},
		&models.VoterEligibility{},
		&models.Ballot{},
		&models.Vote{},
		&models.OTPCode{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	// Photo storage is optional; without credentials photo uploads return a
	// clean service unavailable error.
	var photoStorage service.PhotoStorage
	if cfg.CloudinaryCloudName != "" {
		uploader, err := photos.New(photos.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		photoStorage = uploader
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	electionRepo := repository.NewElectionRepository(db)
	contestRepo := repository.NewContestRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	eligibilityRepo := repository.NewEligibilityRepository(db)
	ballotRepo := repository.NewBallotRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	auditService := service.NewAuditService(auditRepo, logger)
	otpService := service.NewOTPService(otpRepo, redisClient, notifier.New(natsConn, "voteguard.otp", logger), validate, cfg.OTPTTL, cfg.OTPResendCooldown, logger)
	authService := service.NewAuthService(userRepo, sessionRepo, otpRepo, validate, auditService, cfg.JWTSecret, cfg.SessionTTL, logger)
	electionService := service.NewElectionService(electionRepo, eligibilityRepo, ballotRepo, validate, auditService, logger)
	contestService := service.NewContestService(contestRepo, electionRepo, ballotRepo, validate, auditService, logger)
	candidateService := service.NewCandidateService(candidateRepo, contestRepo, ballotRepo, photoStorage, validate, auditService, logger)
	eligibilityService := service.NewEligibilityService(eligibilityRepo, electionRepo, validate, auditService, logger)
	ballotService := service.NewBallotService(ballotRepo, electionRepo, eligibilityRepo, validate, auditService, logger)
	resultsService := service.NewResultsService(ballotRepo, electionRepo, redisClient, cfg.ResultsCacheTTL, logger)
	adminUserService := service.NewAdminUserService(userRepo, validate, auditService, logger)

	secureCookies := cfg.AppEnv == "production"

	authHandler := handler.NewAuthHandler(authService, otpService, secureCookies, logger)
	electionHandler := handler.NewElectionHandler(electionService, ballotService, resultsService, logger)
	resultsStreamHandler := handler.NewResultsStreamHandler(resultsService, 5*time.Second, logger)
	adminElectionHandler := handler.NewAdminElectionHandler(electionService, contestService, logger)
	adminContestHandler := handler.NewAdminContestHandler(contestService, candidateService, logger)
	adminCandidateHandler := handler.NewAdminCandidateHandler(candidateService, logger)
	adminEligibilityHandler := handler.NewAdminEligibilityHandler(eligibilityService, logger)
	adminUserHandler := handler.NewAdminUserHandler(adminUserService, logger)
	adminAuditHandler := handler.NewAdminAuditHandler(auditService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:             authHandler,
		ElectionHandler:         electionHandler,
		ResultsStreamHandler:    resultsStreamHandler,
		AdminElectionHandler:    adminElectionHandler,
		AdminContestHandler:     adminContestHandler,
		AdminCandidateHandler:   adminCandidateHandler,
		AdminEligibilityHandler: adminEligibilityHandler,
		AdminUserHandler:        adminUserHandler,
		AdminAuditHandler:       adminAuditHandler,
		SessionMiddleware:       middleware.SessionProtected(cfg.JWTSecret, authService),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
