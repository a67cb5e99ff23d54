package http

import (
	"github.com/jack5341/attendance-server/internal/config"
	"github.com/jack5341/attendance-server/internal/handlers"
	imw "github.com/jack5341/attendance-server/internal/http/middleware"
	"github.com/jack5341/attendance-server/internal/store"
	tokenmanager "github.com/jack5341/attendance-server/pkg/token_manager"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

func Register(e *echo.Echo, st store.Store, tokens *tokenmanager.TokenManager, otelTracer trace.Tracer, logger zerolog.Logger, config *config.Config) {
	imw.Apply(e, logger, config.RateLimit)

	api := e.Group("/api")
	v1 := api.Group("/v1")

	// Handlers
	health := handlers.NewHealthHandler(st, otelTracer)
	sessionToken := handlers.NewSessionTokenHandler(tokens, otelTracer, config)
	pinEvents := handlers.NewPINEventsHandler(tokens, otelTracer, config)
	attendance := handlers.NewAttendanceHandler(st, tokens, otelTracer)
	session := handlers.NewSessionHandler(st, otelTracer)

	// Health endpoints
	v1.GET("/healthz", health.Liveness)
	v1.GET("/readyz", health.Readiness)

	e.POST("/create_session", session.Create)
	e.GET("/get_session/:id", session.Get)
	e.DELETE("/delete_session/:id", session.Delete)

	e.POST("/session/:id/generate_token", sessionToken.Generate)
	e.GET("/session/:id/get_pin", sessionToken.GetPIN)
	e.GET("/session/:id/pin-events", pinEvents.Listen)

	e.POST("/attendance/verify", attendance.Verify)
	e.POST("/attendance/verify_qr", attendance.VerifyQR)
	e.POST("/mark_attendance", attendance.Mark)
	e.GET("/session/:id/attendance", attendance.List)
}
