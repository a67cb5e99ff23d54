package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/jack5341/attendance-server/internal/config"
	"github.com/jack5341/attendance-server/internal/db"
	errorz "github.com/jack5341/attendance-server/internal/errors"
	httpserver "github.com/jack5341/attendance-server/internal/http"
	"github.com/jack5341/attendance-server/internal/logging"
	"github.com/jack5341/attendance-server/internal/store"
	"github.com/jack5341/attendance-server/pkg/rotator"
	tokenmanager "github.com/jack5341/attendance-server/pkg/token_manager"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(errors.Join(errorz.ErrConfigNotFound, err))
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(errors.Join(errorz.ErrInvalidConfig, err))
	}
	logger.Info().Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("config loaded")

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(otelconfig.WithServiceName(cfg.ServiceName))
	if err != nil {
		logger.Warn().Err(err).Msg("otel config failed, falling back to stdout exporter")
		exp, expErr := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if expErr != nil {
			panic(errors.Join(errorz.ErrErrorWileStartingOTel, err, expErr))
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(sdkresource.NewSchemaless(
				semconv.ServiceName(cfg.ServiceName),
			)),
		)
		otel.SetTracerProvider(tp)
		otelShutdown = func() { _ = tp.Shutdown(context.Background()) }
	}
	defer otelShutdown()

	var st store.Store
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		st = store.NewMemoryStore()
		logger.Warn().Msg("using in-memory store, data is lost on restart")
	default:
		database, err := db.Open(cfg.DatabaseDSN, logger)
		if err != nil {
			logger.Fatal().Err(errors.Join(errorz.ErrDatabaseError, err)).Msg("failed to open database")
		}
		st = store.NewGormStore(database)
		logger.Info().Msg("database initialized")
	}

	otelTracer := otel.Tracer(cfg.ServiceName)
	tokens := tokenmanager.NewTokenManager(st, otelTracer, logger, tokenmanager.WithTTL(cfg.TokenTTL))

	pinRotator := rotator.New(st, logger.With().Str("component", "rotator").Logger(),
		rotator.WithInterval(cfg.RotationInterval),
		rotator.WithTimeout(cfg.RotationTimeout),
	)
	pinRotator.Start(context.Background())
	defer pinRotator.Stop()

	e := echo.New()
	httpserver.Register(e, st, tokens, otelTracer, logger, &cfg)

	// No WriteTimeout: pin-events streams stay open.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	srvErrCh := make(chan error, 1)
	go func() { srvErrCh <- e.StartServer(srv) }()

	logger.Info().Str("port", cfg.Port).Msg("server initialized")

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-shutdownCtx.Done():
		// graceful shutdown
		logger.Info().Msg("shutting down")
		pinRotator.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			_ = e.Close()
		}
	case err := <-srvErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			// server failed to start or crashed
			pinRotator.Stop()
			logger.Error().Err(errors.Join(errorz.ErrServerError, err)).Msg("server stopped")
			os.Exit(1)
		}
	}
}
