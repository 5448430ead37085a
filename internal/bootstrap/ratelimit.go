package bootstrap

import (
	"log"

	"github.com/7pairs/twingo2/internal/config"
	"github.com/7pairs/twingo2/internal/metrics"
	"github.com/7pairs/twingo2/internal/middleware"
	"github.com/7pairs/twingo2/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimitMiddlewares holds rate limiting middlewares per endpoint
type rateLimitMiddlewares struct {
	login gin.HandlerFunc
}

// setupRateLimiting configures rate limiting based on configuration.
// Accepts an optional go-redis client.
func setupRateLimiting(
	cfg *config.Config,
	m metrics.Recorder,
	audit *services.AuditService,
	redisClient *redis.Client,
) rateLimitMiddlewares {
	if !cfg.EnableRateLimit {
		return rateLimitMiddlewares{
			login: func(c *gin.Context) { c.Next() },
		}
	}

	log.Printf("Rate limiting enabled (store: %s)", cfg.RateLimitStore)

	limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.LoginRateLimit,
		StoreType:         cfg.RateLimitStore,
		RedisClient:       redisClient,
		CleanupInterval:   cfg.RateLimitCleanupInterval,
	}, m, audit)
	if err != nil {
		log.Fatalf("Failed to create rate limiter for /login: %v", err)
	}

	return rateLimitMiddlewares{login: limiter}
}
