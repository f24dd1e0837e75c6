package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cinderledger/cinder/internal/ledger"
)

// Config holds the HTTP surface configuration.
type Config struct {
	CORSOrigins  []string
	RateLimitRPS int
}

// RequestID returns a Gin middleware that tags every request with a uuid,
// exposed to handlers via the context and to clients via X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Router assembles the full gin engine for a node: middleware stack,
// versioned API routes, health and metrics endpoints.
func Router(l *ledger.Ledger, logger *zap.Logger, cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(PrometheusMiddleware())
	if cfg.RateLimitRPS > 0 {
		r.Use(RateLimiter(cfg.RateLimitRPS, cfg.RateLimitRPS*2))
	}
	if len(cfg.CORSOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSOrigins
		r.Use(cors.New(corsCfg))
	}

	v1 := r.Group("/api/v1")
	NewChainHandler(l, logger).Register(v1)
	NewTransferHandler(l, logger).Register(v1)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "height": l.Len()})
	})
	r.GET("/metrics", MetricsHandler())

	return r
}
