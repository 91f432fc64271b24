package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/hrdashboard/hr-api/docs"
	"github.com/hrdashboard/hr-api/internal/infrastructure/http/handlers"
)

// OperationalConfig describes the unauthenticated operational endpoints.
type OperationalConfig struct {
	// Dependencies are checked by the readiness probe, keyed by name.
	Dependencies map[string]handlers.Pinger
	// Gatherer backs /metrics. Defaults to the global Prometheus registry.
	Gatherer prometheus.Gatherer
	// Swagger mounts the API reference under /swagger/.
	Swagger bool
}

// RegisterOperational mounts the health probes, /metrics and, optionally,
// the Swagger UI on e.
func RegisterOperational(e *echo.Echo, cfg OperationalConfig) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(cfg.Dependencies)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	if cfg.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}
}
