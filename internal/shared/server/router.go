package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sow-backend/internal/account"
	"sow-backend/internal/audits"
	googleauth "sow-backend/internal/auth"
	"sow-backend/internal/documents"
	"sow-backend/internal/shared/config"
	"sow-backend/internal/shared/metrics"
	"sow-backend/internal/shared/server/middleware"
	"sow-backend/internal/shared/server/respond"
	"sow-backend/internal/uploads"
)

// RouterDeps carries the handlers the router wires up. Handlers are built by
// bootstrap so the API server, worker, and Lambda entrypoints share one
// dependency graph.
type RouterDeps struct {
	Config           config.Config
	DocumentsHandler *documents.Handler
	AuditsHandler    *audits.Handler
	AccountHandler   *account.Handler
	GoogleAuth       *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(rateLimits()),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	registerMeRoutes(api)
	uploads.RegisterRoutes(api)
	if deps.DocumentsHandler != nil {
		deps.DocumentsHandler.RegisterRoutes(api)
	}
	if deps.AuditsHandler != nil {
		deps.AuditsHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}

	return r
}

// rateLimits returns the per-group request budgets. Status polling gets a
// higher allowance than the default group so clients can watch an audit
// complete without tripping the limiter.
func rateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodGet && c.FullPath() == "/api/v1/audits/:id" {
				return "POLLING"
			}
			return "DEFAULT"
		},
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 5, Burst: 20},
			"POLLING": {Rate: 10, Burst: 30},
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
