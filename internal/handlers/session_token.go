package handlers

import (
	"net/http"

	"github.com/jack5341/attendance-server/internal/config"
	tokenmanager "github.com/jack5341/attendance-server/pkg/token_manager"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

type SessionTokenHandler struct {
	tokens     *tokenmanager.TokenManager
	otelTracer trace.Tracer
	config     *config.Config
}

type GenerateTokenResponse struct {
	Token string `json:"token"`
	PIN   int    `json:"pin"`
	QRURL string `json:"qr_url"`
}

type PINResponse struct {
	Token string `json:"token"`
	PIN   int    `json:"pin"`
}

func NewSessionTokenHandler(tokens *tokenmanager.TokenManager, otelTracer trace.Tracer, config *config.Config) *SessionTokenHandler {
	return &SessionTokenHandler{tokens: tokens, otelTracer: otelTracer, config: config}
}

func (h *SessionTokenHandler) Generate(c echo.Context) error {
	ctx, span := h.otelTracer.Start(c.Request().Context(), "SessionTokenHandler.Generate")
	defer span.End()

	sessionID, err := sessionIDParam(c)
	if err != nil {
		return writeError(c, err)
	}
	token, err := h.tokens.Generate(ctx, sessionID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, GenerateTokenResponse{
		Token: token.Token,
		PIN:   token.PIN,
		QRURL: tokenmanager.BuildQRURL(h.config.QRBaseURL, sessionID, token.PIN),
	})
}

// GetPIN creates the token when the session has none yet, without checking
// that the session exists.
func (h *SessionTokenHandler) GetPIN(c echo.Context) error {
	ctx, span := h.otelTracer.Start(c.Request().Context(), "SessionTokenHandler.GetPIN")
	defer span.End()

	sessionID, err := sessionIDParam(c)
	if err != nil {
		return writeError(c, err)
	}
	token, err := h.tokens.GetOrCreate(ctx, sessionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, PINResponse{Token: token.Token, PIN: token.PIN})
}
