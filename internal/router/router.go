package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/clinicops/frontdesk-api/internal/middleware"
	"github.com/clinicops/frontdesk-api/pkg/logger"
)

// Config controls the shared middleware chain.
type Config struct {
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
}

type routerMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newRouterMetrics(reg prometheus.Registerer) *routerMetrics {
	factory := promauto.With(reg)
	return &routerMetrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests by method, path and status",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency by method and path",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

func (m *routerMetrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

// New builds the gin engine with the full middleware chain and an
// /api/v1 group for the domain handlers.
func New(log *logger.Logger, cfg Config, reg prometheus.Registerer) (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	metrics := newRouterMetrics(reg)

	engine.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.Recovery(log),
		middleware.CORS(),
		middleware.NoCache(),
		metrics.middleware(),
		middleware.RateLimiter(cfg.RateLimit, cfg.RateBurst),
		middleware.Timeout(cfg.RequestTimeout),
	)

	return engine, engine.Group("/api/v1")
}
