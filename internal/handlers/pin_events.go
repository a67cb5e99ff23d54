package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jack5341/attendance-server/internal/config"
	"github.com/jack5341/attendance-server/internal/models"
	tokenmanager "github.com/jack5341/attendance-server/pkg/token_manager"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

type PINEventsHandler struct {
	tokens     *tokenmanager.TokenManager
	otelTracer trace.Tracer
	config     *config.Config
}

type PINEvent struct {
	Token     string    `json:"token"`
	PIN       int       `json:"pin"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewPINEventsHandler(tokens *tokenmanager.TokenManager, otelTracer trace.Tracer, config *config.Config) *PINEventsHandler {
	return &PINEventsHandler{tokens: tokens, otelTracer: otelTracer, config: config}
}

// Listen streams the session's PIN as server-sent events, pushing a new
// event each time the rotation changes it.
func (h *PINEventsHandler) Listen(c echo.Context) error {
	ctx, span := h.otelTracer.Start(c.Request().Context(), "PINEventsHandler.Listen")
	defer span.End()

	sessionID, err := sessionIDParam(c)
	if err != nil {
		return writeError(c, err)
	}
	token, err := h.tokens.GetOrCreate(ctx, sessionID)
	if err != nil {
		return writeError(c, err)
	}

	// Prepare SSE headers
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	flusher, ok := res.Writer.(http.Flusher)
	if !ok {
		return nil
	}

	_, _ = res.Write([]byte(": open\n\n"))
	writePIN := func(t models.SessionToken) {
		data, _ := json.Marshal(PINEvent{Token: t.Token, PIN: t.PIN, ExpiresAt: t.ExpiresAt})
		_, _ = res.Write([]byte("event: pin\ndata: "))
		_, _ = res.Write(data)
		_, _ = res.Write([]byte("\n\n"))
	}
	writePIN(token)
	flusher.Flush()

	ticker := time.NewTicker(h.config.PINPollInterval)
	defer ticker.Stop()

	lastPIN := token.PIN
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			current, err := h.tokens.Current(ctx, sessionID)
			if err != nil {
				// Session deleted or storage gone; the client reconnects.
				return nil
			}
			if current.Expired(h.tokens.Now()) {
				_, _ = res.Write([]byte("event: expired\ndata: {}\n\n"))
				flusher.Flush()
				return nil
			}
			if current.PIN != lastPIN {
				writePIN(current)
				lastPIN = current.PIN
			} else {
				_, _ = res.Write([]byte(": keepalive\n\n"))
			}
			flusher.Flush()
		}
	}
}
