package handlers

import (
	"errors"
	"net/http"
	"time"

	errorz "github.com/jack5341/attendance-server/internal/errors"
	"github.com/jack5341/attendance-server/internal/models"
	"github.com/jack5341/attendance-server/internal/store"
	tokenmanager "github.com/jack5341/attendance-server/pkg/token_manager"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

type AttendanceHandler struct {
	store      store.Store
	tokens     *tokenmanager.TokenManager
	otelTracer trace.Tracer
}

// PIN is a pointer so a missing field is a bad request while a zero PIN is
// simply a wrong one.
type VerifyRequest struct {
	PIN *int `json:"pin" validate:"required"`
}

type VerifyQRRequest struct {
	SessionID uint `json:"session_id" validate:"required"`
	PIN       *int `json:"pin" validate:"required"`
}

type VerifyResponse struct {
	Message   string    `json:"message"`
	PIN       int       `json:"pin"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	SessionID uint      `json:"session_id"`
}

type MarkAttendanceRequest struct {
	SessionID uint   `json:"session_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

type MarkAttendanceResponse struct {
	Message      string    `json:"message"`
	AttendanceID string    `json:"attendance_id"`
	MarkAt       time.Time `json:"mark_at"`
}

func NewAttendanceHandler(st store.Store, tokens *tokenmanager.TokenManager, otelTracer trace.Tracer) *AttendanceHandler {
	return &AttendanceHandler{store: st, tokens: tokens, otelTracer: otelTracer}
}

func verifiedResponse(token models.SessionToken) VerifyResponse {
	return VerifyResponse{
		Message:   "Attendance verified successfully",
		PIN:       token.PIN,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		SessionID: token.SessionID,
	}
}

// Verify checks a typed PIN without session context.
func (h *AttendanceHandler) Verify(c echo.Context) error {
	ctx, span := h.otelTracer.Start(c.Request().Context(), "AttendanceHandler.Verify")
	defer span.End()

	var req VerifyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	token, err := h.tokens.Verify(ctx, *req.PIN, nil)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, verifiedResponse(token))
}

// VerifyQR checks a scanned session id and PIN pair.
func (h *AttendanceHandler) VerifyQR(c echo.Context) error {
	ctx, span := h.otelTracer.Start(c.Request().Context(), "AttendanceHandler.VerifyQR")
	defer span.End()

	var req VerifyQRRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	token, err := h.tokens.Verify(ctx, *req.PIN, &req.SessionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, verifiedResponse(token))
}

func (h *AttendanceHandler) Mark(c echo.Context) error {
	ctx, span := h.otelTracer.Start(c.Request().Context(), "AttendanceHandler.Mark")
	defer span.End()

	var req MarkAttendanceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	attendance := models.Attendance{
		SessionID: req.SessionID,
		StudentID: req.StudentID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		MarkedAt:  h.tokens.Now().UTC(),
	}
	if err := h.store.CreateAttendance(ctx, &attendance); err != nil {
		if errors.Is(err, errorz.ErrSessionNotFound) {
			return writeError(c, errorz.ErrInvalidSessionID)
		}
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, MarkAttendanceResponse{
		Message:      "Attendance marked successfully",
		AttendanceID: attendance.ID,
		MarkAt:       attendance.MarkedAt,
	})
}

func (h *AttendanceHandler) List(c echo.Context) error {
	ctx, span := h.otelTracer.Start(c.Request().Context(), "AttendanceHandler.List")
	defer span.End()

	sessionID, err := sessionIDParam(c)
	if err != nil {
		return writeError(c, err)
	}
	rows, err := h.store.ListAttendance(ctx, sessionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}
