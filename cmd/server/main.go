// Command server runs the HR dashboard API.
//
// @title                       HR Dashboard API
// @version                     1.0
// @description                 Employee accounts, authentication and role-based access for the HR dashboard.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/hrdashboard/hr-api/internal/api"
	"github.com/hrdashboard/hr-api/internal/core/ports"
	"github.com/hrdashboard/hr-api/internal/core/service"
	"github.com/hrdashboard/hr-api/internal/infrastructure/db/mongo"
	"github.com/hrdashboard/hr-api/internal/infrastructure/db/redis"
	"github.com/hrdashboard/hr-api/internal/infrastructure/http/handlers"
	"github.com/hrdashboard/hr-api/internal/infrastructure/queue"
	"github.com/hrdashboard/hr-api/internal/pkg/config"
	"github.com/hrdashboard/hr-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	if err := run(); err != nil {
		log := logger.New(logger.Options{Service: "hr-api", Version: version})
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

// run wires the server and blocks until a signal or a fatal server error.
// Deferred cleanup always runs before it returns.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "hr-api",
		Version: version,
	})

	// --- Storage ---
	store, err := mongo.Open(ctx, mongo.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     "hr-api",
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = store.Close(closeCtx)
	}()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	db := store.DB
	accountRepo := mongo.NewAccountRepository(db)

	readiness := map[string]handlers.Pinger{"mongodb": handlers.MongoPinger(db)}

	var (
		rdb            *goredis.Client
		bootstrapLock  ports.BootstrapLock
		rateLimitStore echomiddleware.RateLimiterStore
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return fmt.Errorf("connect to Redis: %w", err)
		}
		defer rdb.Close()

		bootstrapLock = redis.NewBootstrapLock(rdb)
		rateLimitStore = redis.NewRateLimitStore(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		readiness["redis"] = handlers.RedisPinger(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, using in-process rate limiting and bootstrap lock")
	}

	// --- Audit pipeline ---
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, mongo.NewAuditRepository(db), logger.Component("audit"))
	dispatcher.Start(workerCtx)
	defer func() {
		// Requests are drained by now, so no new audit events arrive; flush the rest.
		cancelWorkers()
		dispatcher.Wait()
		log.Info().Msg("shutdown complete")
	}()

	// --- Services ---
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	accessService := service.NewAccessService(accountRepo, tokens, dispatcher, logger.Component("access"))
	authService := service.NewAuthService(accountRepo, tokens, bootstrapLock, dispatcher, logger.Component("auth"))
	employeeService := service.NewEmployeeService(accountRepo, accessService, dispatcher, logger.Component("employees"))

	e := api.NewRouter(api.Dependencies{
		AuthService:       authService,
		EmployeeService:   employeeService,
		AccessService:     accessService,
		Log:               logger.Component("http"),
		Readiness:         readiness,
		RateLimitStore:    rateLimitStore,
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitWindow:   cfg.RateLimit.Window,
		CORSOrigins:       cfg.CORSOrigins,
		Swagger:           cfg.IsDevelopment(),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("HTTP server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serverErr:
		runErr = fmt.Errorf("HTTP server: %w", err)
		log.Error().Err(err).Msg("HTTP server failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	return runErr
}
