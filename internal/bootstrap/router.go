package bootstrap

import (
	"log"
	"net/http"

	"github.com/7pairs/twingo2/internal/config"
	"github.com/7pairs/twingo2/internal/metrics"
	"github.com/7pairs/twingo2/internal/middleware"
	"github.com/7pairs/twingo2/internal/services"
	"github.com/7pairs/twingo2/internal/store"
	"github.com/7pairs/twingo2/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	h handlerSet,
	prometheusMetrics metrics.Recorder,
	audit *services.AuditService,
	rateLimitRedisClient *redis.Client,
) *gin.Engine {
	setupGinMode(cfg)
	r := gin.New()

	r.Use(metrics.HTTPMetricsMiddleware(prometheusMetrics))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	setupSessionMiddleware(r, cfg)

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(db))

	setupMetricsEndpoint(r, cfg)

	rateLimiters := setupRateLimiting(cfg, prometheusMetrics, audit, rateLimitRedisClient)

	setupAllRoutes(r, h, rateLimiters)

	logServerStartup(cfg)

	return r
}

// setupSessionMiddleware configures session handling middleware
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("twingo_session", sessionStore))
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuth(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	h handlerSet,
	rateLimiters rateLimitMiddlewares,
) {
	// Public routes
	r.GET("/", h.pages.Home)
	r.GET("/login", rateLimiters.login, h.login.Login)
	r.GET("/callback", h.login.Callback)
	r.GET("/logout", h.login.Logout)

	// Protected routes (require login)
	protected := r.Group("")
	protected.Use(middleware.RequireAuth(h.accountService))
	{
		protected.GET("/me", h.pages.Me)
	}
}

// createHealthCheckHandler creates the health check endpoint handler
func createHealthCheckHandler(db *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := db.Health(); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": "connected",
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	log.Printf("Twitter sign-in server starting on %s", cfg.ServerAddr)
	log.Printf("Login URL: %s/login", cfg.BaseURL)
	if cfg.CallbackURL != "" {
		log.Printf("Callback URL override: %s", cfg.CallbackURL)
	}
}
