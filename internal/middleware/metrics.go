package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusfeed_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// FeedPagesServed counts feed pages by evaluation strategy.
	FeedPagesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusfeed_feed_pages_total",
		Help: "Total number of feed pages served by filtering strategy",
	}, []string{"strategy"})

	// FeedHiddenPosts counts candidate posts filtered out by the audience predicate.
	FeedHiddenPosts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusfeed_feed_hidden_posts_total",
		Help: "Total number of candidate posts hidden from viewers by audience filtering",
	})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a Fiber handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
