package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/7pairs/twingo2/internal/metrics"
	"github.com/7pairs/twingo2/internal/models"
	"github.com/7pairs/twingo2/internal/services"
	"github.com/7pairs/twingo2/internal/templates"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimitConfig holds the configuration for the login rate limiter
type RateLimitConfig struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration // only used by the memory store

	// StoreType is "memory" (single instance) or "redis" (distributed)
	StoreType string

	// RedisClient backs the redis store; ignored for memory
	RedisClient *redis.Client
}

// NewRateLimiter builds the gin middleware that throttles the login route.
// A throttled request gets the standard rate limit headers plus an HTML
// error page.
func NewRateLimiter(
	cfg RateLimitConfig,
	m metrics.Recorder,
	audit *services.AuditService,
) (gin.HandlerFunc, error) {
	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  int64(cfg.RequestsPerMinute),
	}

	var store limiter.Store
	var err error

	switch cfg.StoreType {
	case "redis":
		if cfg.RedisClient == nil {
			return nil, fmt.Errorf("redis rate limit store requires a redis client")
		}
		store, err = limiterRedis.NewStoreWithOptions(cfg.RedisClient, limiter.StoreOptions{
			Prefix:          "ratelimit",
			CleanUpInterval: cfg.CleanupInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
	default:
		store = memory.NewStore()
	}

	instance := limiter.New(store, rate)

	middleware := mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		m.RecordRateLimitExceeded(c.Request.URL.Path)
		audit.Log(c, services.AuditLogEntry{
			EventType:   models.EventRateLimitExceeded,
			Success:     false,
			UserAgent:   c.Request.UserAgent(),
			RequestPath: c.Request.URL.Path,
		})
		templates.RenderTempl(
			c,
			http.StatusTooManyRequests,
			templates.ErrorPage(templates.ErrorPageProps{
				Error: "Too many sign-in attempts. Please try again later.",
			}),
		)
		c.Abort()
	}))

	return middleware, nil
}
