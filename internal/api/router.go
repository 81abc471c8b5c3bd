package api

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spacesedan/storyguard/internal/metrics"
)

type RouterConfig struct {
	Handler  *Handler
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// Dependencies are reported by /healthz. Any unhealthy entry turns
	// the response into a 503.
	Dependencies map[string]*atomic.Bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.GinMiddleware())
	}

	router.GET("/healthz", healthHandler(cfg.Dependencies))
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	stories := router.Group("/api/stories/:storyId")
	stories.POST("/comments", cfg.Handler.CreateComment)
	stories.POST("/relevance", cfg.Handler.CheckRelevance)

	admin := router.Group("/api/admin")
	admin.GET("/comments/audit", cfg.Handler.AuditComments)
	admin.GET("/keywords", cfg.Handler.Keywords)

	return router
}

func healthHandler(deps map[string]*atomic.Bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		checks := make(map[string]string, len(deps))
		for name, healthy := range deps {
			if healthy.Load() {
				checks[name] = "ok"
				continue
			}
			checks[name] = "unhealthy"
			status = http.StatusServiceUnavailable
		}

		body := gin.H{"status": "ok"}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		if len(checks) > 0 {
			body["checks"] = checks
		}
		c.JSON(status, body)
	}
}
