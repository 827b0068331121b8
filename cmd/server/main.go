package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	_ "github.com/lib/pq"

	"vibeconnect/config"
	_ "vibeconnect/docs"
	"vibeconnect/internal/adapters/auth"
	"vibeconnect/internal/adapters/storage"
	delivery "vibeconnect/internal/delivery/http"
	"vibeconnect/internal/delivery/http/controllers"
	"vibeconnect/internal/delivery/http/middleware"
	"vibeconnect/internal/repository/postgres"
	"vibeconnect/internal/services"

	"golang.org/x/crypto/bcrypt"
)

const serviceTimeout = 10 * time.Second

// @title VibeConnect API
// @version 1.0
// @description Event listing backend: events with likes, views and image uploads.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger := config.NewLogger(cfg.Environment)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("pinging database: %v", err)
	}

	artifacts, err := storage.NewArtifactStore(storage.StoreConfig{
		Provider: cfg.StorageProvider,
		Local:    storage.LocalConfig{Dir: cfg.UploadDir},
		S3: storage.S3Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		},
	})
	if err != nil {
		log.Fatalf("creating artifact store: %v", err)
	}

	tokens := auth.NewJWTTokens(cfg.JWTSecret)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)

	eventRepo := postgres.NewEventRepository(db)
	userRepo := postgres.NewUserRepository(db)

	eventService := services.NewEventService(eventRepo, artifacts, logger, cfg.PublicBaseURL, serviceTimeout)
	userService := services.NewUserService(userRepo, hasher, tokens, serviceTimeout)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := middleware.NewMetrics(registry)

	uploadDir := ""
	if cfg.StorageProvider != "s3" {
		uploadDir = cfg.UploadDir
	}
	mux := delivery.NewRouter(delivery.RouterConfig{
		Events:    controllers.NewEventController(logger, eventService),
		Users:     controllers.NewUserController(logger, userService),
		Verifier:  tokens,
		Registry:  registry,
		UploadDir: uploadDir,
	})

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.Logging(logger, metrics.Wrap(mux)))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "err", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment, "storage", cfg.StorageProvider)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
