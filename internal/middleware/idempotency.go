package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/feedesk-backend/internal/cache"
	"github.com/stemsi/feedesk-backend/internal/config"
	"github.com/stemsi/feedesk-backend/internal/response"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the store.
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"

	idempotencyLockTTL = 30 * time.Second
)

// IdempotencyConfig holds configuration for the idempotency middleware.
type IdempotencyConfig struct {
	Store cache.Store
	TTL   time.Duration
	Log   zerolog.Logger
}

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
	RequestHash string `json:"request_hash"`
}

// bodyRecorder wraps gin.ResponseWriter to capture the response body.
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key. A second request arriving while the first is still
// running gets 409, and reusing a key with a different body is rejected.
// Requests without the header pass through.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	log := cfg.Log.With().Str("component", "idempotency").Logger()

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		reqBody, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.AbortFail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(reqBody))
		sum := sha256.Sum256(reqBody)
		reqHash := hex.EncodeToString(sum[:])

		scope := c.Request.Method + " " + c.FullPath()
		if claims := GetClaims(c); claims != nil {
			scope += " " + claims.Subject
		}
		storeKey := config.CacheKey.IdempotencyKey(scope, key)
		lockKey := config.CacheKey.IdempotencyLockKey(scope, key)

		if raw, err := cfg.Store.Get(ctx, storeKey); err == nil {
			var stored storedResponse
			if json.Unmarshal([]byte(raw), &stored) == nil {
				if stored.RequestHash != reqHash {
					response.AbortFail(c, http.StatusConflict, response.ErrConflict)
					return
				}
				c.Header(IdempotencyReplayedHeader, "true")
				c.Data(stored.Status, stored.ContentType, []byte(stored.Body))
				c.Abort()
				return
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Msg("idempotency lookup failed, processing request normally")
			c.Next()
			return
		}

		locked, err := cfg.Store.SetNX(ctx, lockKey, uuid.New().String(), idempotencyLockTTL)
		if err != nil {
			log.Warn().Err(err).Msg("idempotency lock failed, processing request normally")
			c.Next()
			return
		}
		if !locked {
			response.AbortFail(c, http.StatusConflict, response.ErrIdempotencyInProgress)
			return
		}
		defer func() {
			if err := cfg.Store.Del(ctx, lockKey); err != nil {
				log.Warn().Err(err).Msg("failed to release idempotency lock")
			}
		}()

		rec := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status < 200 || status >= 300 {
			return
		}
		data, err := json.Marshal(storedResponse{
			Status:      status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.String(),
			RequestHash: reqHash,
		})
		if err != nil {
			return
		}
		if err := cfg.Store.Set(ctx, storeKey, string(data), cfg.TTL); err != nil {
			log.Warn().Err(err).Msg("failed to store idempotent response")
		}
	}
}
