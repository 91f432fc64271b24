package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hrdashboard/hr-api/internal/api/handler"
	"github.com/hrdashboard/hr-api/internal/api/metrics"
	"github.com/hrdashboard/hr-api/internal/api/middleware"
	"github.com/hrdashboard/hr-api/internal/core/domain"
	"github.com/hrdashboard/hr-api/internal/core/ports"
	infrahttp "github.com/hrdashboard/hr-api/internal/infrastructure/http"
	"github.com/hrdashboard/hr-api/internal/infrastructure/http/handlers"
)

const (
	defaultRateLimitRequests = 100
	defaultRateLimitWindow   = 15 * time.Minute
	bodyLimit                = "1M"
)

// Dependencies are the services and settings the router is built from.
type Dependencies struct {
	AuthService     ports.AuthService
	EmployeeService ports.EmployeeService
	AccessService   ports.AccessService
	Log             zerolog.Logger

	// Readiness lists the dependencies checked by /health/ready.
	Readiness map[string]handlers.Pinger

	// RateLimitStore is shared by all instances when set; otherwise an
	// in-process store is used.
	RateLimitStore    echomiddleware.RateLimiterStore
	RateLimitRequests int
	RateLimitWindow   time.Duration

	CORSOrigins []string
	Swagger     bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// Each router gets its own registry for the HTTP metrics so several
	// instances (tests) can coexist in one process.
	httpMetrics := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: corsOrigins(deps.CORSOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "hr",
		Subsystem:  "http",
		Registerer: httpMetrics,
	}))
	e.Use(middleware.RequestMeta())

	// --- Operational routes (no auth, no rate limit) ---
	infrahttp.RegisterOperational(e, infrahttp.OperationalConfig{
		Dependencies: deps.Readiness,
		Gatherer:     prometheus.Gatherers{prometheus.DefaultGatherer, httpMetrics},
		Swagger:      deps.Swagger,
	})

	// --- API routes ---
	api := e.Group("/api", rateLimiter(deps))

	auth := middleware.Auth(deps.AccessService)
	require := func(class domain.RouteClass) echo.MiddlewareFunc {
		return middleware.Require(deps.AccessService, class)
	}

	authHandler := handler.NewAuthHandler(deps.AuthService)
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register, middleware.OptionalAuth(deps.AccessService))
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", authHandler.Me, auth, require(domain.RouteSelf))
	authGroup.PUT("/profile", authHandler.UpdateProfile, auth, require(domain.RouteSelf))
	authGroup.PUT("/change-password", authHandler.ChangePassword, auth, require(domain.RouteSelf))

	employeeHandler := handler.NewEmployeeHandler(deps.EmployeeService)
	employees := api.Group("/employees", auth)
	employees.GET("", employeeHandler.List, require(domain.RouteEmployeeList))
	employees.GET("/:id", employeeHandler.Get, require(domain.RouteEmployeeRead))
	employees.PUT("/:id", employeeHandler.Update, require(domain.RouteEmployeeUpdate))
	employees.DELETE("/:id", employeeHandler.Terminate, require(domain.RouteEmployeeTerminate))

	return e
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// rateLimiter limits requests per client address. The shared store is used
// when configured; otherwise a token bucket per address approximates the
// same budget in memory.
func rateLimiter(deps Dependencies) echo.MiddlewareFunc {
	requests := deps.RateLimitRequests
	if requests <= 0 {
		requests = defaultRateLimitRequests
	}
	window := deps.RateLimitWindow
	if window <= 0 {
		window = defaultRateLimitWindow
	}

	store := deps.RateLimitStore
	if store == nil {
		store = echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(requests) / window.Seconds()),
			Burst:     requests,
			ExpiresIn: window,
		})
	}

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			if err != nil {
				deps.Log.Error().Err(err).Str("client_ip", identifier).Msg("rate limit store failed")
				return err
			}
			metrics.RateLimitedTotal.Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
		},
	})
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			switch {
			case v.Status >= http.StatusInternalServerError:
				evt = log.Error().Err(v.Error)
			case v.Status >= http.StatusBadRequest:
				evt = log.Warn()
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
