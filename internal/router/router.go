package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/feedesk-backend/internal/cache"
	"github.com/stemsi/feedesk-backend/internal/config"
	"github.com/stemsi/feedesk-backend/internal/handler"
	"github.com/stemsi/feedesk-backend/internal/middleware"
	"github.com/stemsi/feedesk-backend/internal/response"
	"github.com/stemsi/feedesk-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Student   *handler.StudentHandler
	Subject   *handler.SubjectHandler
	FeeRecord *handler.FeeRecordHandler
	System    *handler.SystemHandler
}

// Deps carries the shared infrastructure the middlewares need.
type Deps struct {
	AuthService *service.AuthService
	Cache       cache.Store
	Log         zerolog.Logger
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background work such as the rate limiter's sweeper.
func SetupRouter(ctx context.Context, deps Deps, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.RequestIDHeader, middleware.IdempotencyKeyHeader}
	corsConfig.ExposeHeaders = []string{response.RequestIDHeader, "Content-Disposition", middleware.IdempotencyReplayedHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	issueLimiter := middleware.NewRateLimiter(ctx, middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	})

	api := router.Group("/api/v1")
	api.Use(middleware.RequireJWT(deps.AuthService, cfg.AuthEnabled), middleware.NoStore())

	// ─── Students ──────────────────────────────────────────────────────
	students := api.Group("/students")
	{
		students.GET("", handlers.Student.ListStudents)
		students.POST("", handlers.Student.CreateStudent)
		students.GET("/:sid", handlers.Student.GetStudent)
		students.DELETE("/:sid", handlers.Student.DeleteStudent)
	}

	// ─── Subjects ──────────────────────────────────────────────────────
	subjects := api.Group("/subjects")
	{
		subjects.GET("", handlers.Subject.GetAll)
		subjects.POST("", handlers.Subject.Create)
		subjects.GET("/:subjectCode", handlers.Subject.Get)
		subjects.PUT("/:subjectCode/fee", handlers.Subject.UpdateFee)
		subjects.DELETE("/:subjectCode", handlers.Subject.Delete)
	}

	// ─── Fee records ───────────────────────────────────────────────────
	feeRecords := api.Group("/fee-records")
	{
		feeRecords.POST("",
			issueLimiter.Middleware(),
			middleware.Idempotency(middleware.IdempotencyConfig{Store: deps.Cache, TTL: cfg.IdempotencyTTL, Log: deps.Log}),
			handlers.FeeRecord.Issue,
		)
		feeRecords.GET("", handlers.FeeRecord.List)
		feeRecords.POST("/preview", handlers.FeeRecord.Preview)
		feeRecords.GET("/months", middleware.CacheControl(60), handlers.FeeRecord.Months)
		feeRecords.GET("/export", handlers.FeeRecord.Export)
		feeRecords.POST("/export/archive", handlers.FeeRecord.Archive)
		feeRecords.GET("/:receiptNumber", handlers.FeeRecord.Get)
	}

	return router
}
