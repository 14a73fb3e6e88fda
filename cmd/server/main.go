package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/feedesk-backend/internal/config"
	"github.com/stemsi/feedesk-backend/internal/database"
	"github.com/stemsi/feedesk-backend/internal/handler"
	"github.com/stemsi/feedesk-backend/internal/logger"
	"github.com/stemsi/feedesk-backend/internal/repository"
	"github.com/stemsi/feedesk-backend/internal/router"
	"github.com/stemsi/feedesk-backend/internal/service"
	"github.com/stemsi/feedesk-backend/internal/storage"
	"github.com/stemsi/feedesk-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Bool("auth_enabled", cfg.AuthEnabled).
		Msg("Starting Fee Desk Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	cacheStore, closeCache, err := database.NewCacheStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer closeCache()

	// ─── Connect to Object Storage (optional) ──────────────────────────
	var objects service.ObjectStore
	if cfg.S3.Enabled() {
		s3, err := storage.NewS3Client(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to object storage")
		}
		objects = s3
		log.Info().Str("endpoint", cfg.S3.Endpoint).Str("bucket", cfg.S3.Bucket).Msg("Object storage ready")
	} else {
		log.Info().Msg("S3_ENDPOINT not set, export archiving disabled")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool)
	feeRecordRepo := repository.NewFeeRecordRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg.JWTSecret)
	studentService := service.NewStudentService(studentRepo, cacheStore, cfg.CatalogCacheTTL, log)
	subjectService := service.NewSubjectService(subjectRepo, cacheStore, cfg.CatalogCacheTTL, log)
	receiptService := service.NewReceiptService(studentRepo, subjectRepo, feeRecordRepo, service.ReceiptConfig{
		Prefix:          cfg.ReceiptPrefix,
		MaxRetries:      cfg.ReceiptMaxRetries,
		AvailableMonths: cfg.AvailableMonths,
	}, log)
	exportService := service.NewExportService(feeRecordRepo, objects, cfg.S3.PresignTTL, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Student:   handler.NewStudentHandler(studentService, log),
		Subject:   handler.NewSubjectHandler(subjectService, log),
		FeeRecord: handler.NewFeeRecordHandler(receiptService, exportService, log),
		System: handler.NewSystemHandler(map[string]handler.Pinger{
			"postgres": pool,
			"cache":    cacheStore,
		}, log),
	}

	// ─── Prewarm Catalog Caches ───────────────────────────────────────
	// The fee form loads both lists on every page view.
	if _, err := studentService.List(ctx); err != nil {
		log.Warn().Err(err).Msg("Student cache prewarm failed")
	}
	if _, err := subjectService.GetAll(ctx); err != nil {
		log.Warn().Err(err).Msg("Subject cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, router.Deps{
		AuthService: authService,
		Cache:       cacheStore,
		Log:         log,
	}, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// Stop accepting new HTTP requests (5s timeout); in-flight receipts finish their transaction.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
