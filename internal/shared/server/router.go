package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"imagelens-backend/internal/analysis"
	msauth "imagelens-backend/internal/auth"
	"imagelens-backend/internal/shared/config"
	"imagelens-backend/internal/shared/metrics"
	"imagelens-backend/internal/shared/server/middleware"
	"imagelens-backend/internal/shared/server/respond"
	"imagelens-backend/internal/usage"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analysis.Handler
	UsageHandler    *usage.Handler
	MicrosoftAuth   *msauth.MicrosoftService
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
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"ANALYZE": {Rate: 0.5, Burst: 5},
			},
			GroupFor: analyzeGroup,
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	if deps.MicrosoftAuth != nil {
		deps.MicrosoftAuth.RegisterRoutes(api)
	}
	registerAuthRoutes(api)
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(api)
		if deps.Config.Env == "dev" {
			dev := api.Group("/dev")
			deps.UsageHandler.RegisterDevRoutes(dev)
		}
	}

	return r
}

// analyzeGroup rate-limits only the analysis endpoint; everything else is
// cheap enough to leave unmetered.
func analyzeGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && strings.HasSuffix(c.Request.URL.Path, "/analyze") {
		return "ANALYZE"
	}
	return ""
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
