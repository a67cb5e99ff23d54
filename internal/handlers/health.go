package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jack5341/attendance-server/internal/store"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

type HealthHandler struct {
	store      store.Store
	otelTracer trace.Tracer
}

func NewHealthHandler(st store.Store, otelTracer trace.Tracer) *HealthHandler {
	return &HealthHandler{store: st, otelTracer: otelTracer}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readiness(c echo.Context) error {
	if h.store == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "store not initialized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "store not ready"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
