package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/feedesk-backend/internal/response"
)

// Pinger is anything the health check can ping, such as the pgx pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler reports process health and dependency reachability.
type SystemHandler struct {
	deps      map[string]Pinger
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(deps map[string]Pinger, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		deps:      deps,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthReport struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	Goroutines int               `json:"goroutines"`
	Checks     map[string]string `json:"checks"`
}

// Health godoc
// GET /health
// Always answers 200 while the process is up; degraded dependencies are reported in the body.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	report := healthReport{
		Status:     "ok",
		Uptime:     time.Since(h.startTime).Truncate(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		Checks:     make(map[string]string, len(h.deps)),
	}
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
			report.Checks[name] = "down"
			report.Status = "degraded"
			continue
		}
		report.Checks[name] = "up"
	}

	response.Success(c, http.StatusOK, report)
}
