package middleware

import (
	"strconv"
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus

	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dojo_redis_errors_total",
		Help: "Total number of failed Redis commands",
	}, []string{"command"})

	// RateLimitRejections counts requests refused by the rate limiter per resource.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dojo_rate_limit_rejections_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"resource"})

	apiErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dojo_api_error_responses_total",
		Help: "API responses with a 4xx or 5xx status",
	}, []string{"method", "status"})
)

// InitMetrics returns the process-wide fiberprometheus instance.
// The collectors are registered once even when several apps are built (tests).
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request metrics and counts error responses.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := p.Middleware(c)

		if status := c.Response().StatusCode(); status >= fiber.StatusBadRequest {
			apiErrors.WithLabelValues(c.Method(), strconv.Itoa(status)).Inc()
		}
		return err
	}
}
