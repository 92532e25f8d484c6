package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name. Incremented by
// the cache package's client hook.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "stash_redis_errors_total",
	Help: "Total number of Redis command errors",
}, []string{"command"})

// ProfileViews counts public profile loads by outcome of the view-count
// increment ("ok" or "error").
var ProfileViews = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "stash_profile_views_total",
	Help: "Total number of public profile loads",
}, []string{"result"})

// ActiveWebSockets tracks the number of open live-view connections.
var ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "stash_active_websockets",
	Help: "Number of currently open websocket connections",
})

// WebSocketDrops counts live-view messages dropped because a client's send
// buffer was full or closed.
var WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "stash_websocket_dropped_messages_total",
	Help: "Total number of websocket messages dropped",
}, []string{"reason"})

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
