package handlers

import (
	"net/http"

	"github.com/jack5341/attendance-server/internal/models"
	"github.com/jack5341/attendance-server/internal/store"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

type SessionHandler struct {
	store      store.Store
	otelTracer trace.Tracer
}

type CreateSessionRequest struct {
	UserID       uint   `json:"userid" validate:"required"`
	ModuleID     uint   `json:"module_id" validate:"required"`
	LocationName string `json:"location_name" validate:"required"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
}

type DeleteSessionResponse struct {
	Message          string `json:"message"`
	DeletedSessionID uint   `json:"deleted_session_id"`
}

func NewSessionHandler(st store.Store, otelTracer trace.Tracer) *SessionHandler {
	return &SessionHandler{store: st, otelTracer: otelTracer}
}

func (h *SessionHandler) Create(c echo.Context) error {
	ctx, span := h.otelTracer.Start(c.Request().Context(), "SessionHandler.Create")
	defer span.End()

	var req CreateSessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	session := models.Session{
		UserID:       req.UserID,
		ModuleID:     req.ModuleID,
		LocationName: req.LocationName,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	}
	if err := h.store.CreateSession(ctx, &session); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) Get(c echo.Context) error {
	ctx, span := h.otelTracer.Start(c.Request().Context(), "SessionHandler.Get")
	defer span.End()

	id, err := sessionIDParam(c)
	if err != nil {
		return writeError(c, err)
	}
	session, err := h.store.GetSession(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// Delete removes the session together with its token and attendance.
func (h *SessionHandler) Delete(c echo.Context) error {
	ctx, span := h.otelTracer.Start(c.Request().Context(), "SessionHandler.Delete")
	defer span.End()

	id, err := sessionIDParam(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.store.DeleteSession(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, DeleteSessionResponse{Message: "Session deleted successfully", DeletedSessionID: id})
}
