package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-athlete-backend/config"
	_ "go-athlete-backend/docs" // Important for Swagger
	"go-athlete-backend/internal/billing"
	v1 "go-athlete-backend/internal/delivery/http/v1"
	"go-athlete-backend/internal/domain"
	"go-athlete-backend/internal/events"
	"go-athlete-backend/internal/identity"
	"go-athlete-backend/internal/repository/postgres"
	"go-athlete-backend/internal/repository/snapshot"
	"go-athlete-backend/internal/session"
	"go-athlete-backend/internal/storage"
	"go-athlete-backend/pkg/auth"
	"go-athlete-backend/pkg/database"
	"go-athlete-backend/pkg/logger"
	"go-athlete-backend/pkg/redis"
)

// @title           Athlete Backend API
// @version         1.0
// @description     Session, onboarding and profile backend for the athlete education app.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting athlete backend", "port", cfg.Port)

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (snapshots + rate limiting)
	redisClient, err := redis.NewClient(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	if err != nil {
		logger.Log.Warn("Redis unavailable, snapshots disabled and rate limiting in-memory", "error", err)
		redisClient = nil
	}

	// 5. Setup Event Bus
	var bus domain.EventBus
	if cfg.NATSUrl != "" {
		natsBus, err := events.NewNATSBus(cfg.NATSUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsBus.Close()
		bus = natsBus
	} else {
		bus = events.NewLocalBus()
	}

	// 6. Setup Identity Adapter
	identitySvc := identity.New(cfg.IdentityURL, cfg.IdentityKey, cfg.IdentityTimeout, bus)

	// 7. Setup Stores
	profileRepo := postgres.NewProfileRepository(dbPool)
	snapshotStore := snapshot.NewStore(redisClient, cfg.SnapshotTTL)

	var pictureStore domain.PictureStore
	if cfg.S3Bucket != "" {
		pictureStore, err = storage.NewPictureStore(ctx, storage.Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Log.Error("Failed to configure picture storage", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Log.Warn("S3_BUCKET not configured - picture uploads will be skipped")
	}

	// 8. Setup Session Registry
	registry, err := session.NewRegistry(session.Deps{
		Identity:  identitySvc,
		Profiles:  profileRepo,
		Snapshots: snapshotStore,
		Pictures:  pictureStore,
		Config: session.Config{
			AssumeOnboardedOnRestore:    cfg.AssumeOnboardedOnRestore,
			Step3ProceedOnRemoteFailure: cfg.Step3ProceedOnRemoteFailure,
			SignOutGracePeriod:          cfg.SignOutGracePeriod,
		},
	}, bus)
	if err != nil {
		logger.Log.Error("Failed to start session registry", "error", err)
		os.Exit(1)
	}

	// 9. Setup Billing
	billingSvc := billing.NewService(billing.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PriceID:       cfg.StripePriceID,
	}, profileRepo)

	// 10. Setup Auth Provider (JWKS)
	jwksProvider := auth.NewProvider(cfg.IdentityURL + "/auth/v1/.well-known/jwks.json")

	// 11. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		Registry:     registry,
		Billing:      billingSvc,
		JWKSProvider: jwksProvider,
		Redis:        redisClient,
		Config:       cfg,
	})

	// 12. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
