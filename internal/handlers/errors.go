package handlers

import (
	"errors"
	"net/http"
	"strconv"

	errorz "github.com/jack5341/attendance-server/internal/errors"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

const (
	KindNotFound           = "not_found"
	KindInvalidCredential  = "invalid_credential"
	KindExpired            = "expired"
	KindStorageUnavailable = "storage_unavailable"
	KindBadRequest         = "bad_request"
	KindConflict           = "conflict"
)

var errorKinds = []struct {
	err    error
	status int
	kind   string
}{
	{errorz.ErrStorageUnavailable, http.StatusServiceUnavailable, KindStorageUnavailable},
	{errorz.ErrSessionNotFound, http.StatusNotFound, KindNotFound},
	{errorz.ErrInvalidPIN, http.StatusBadRequest, KindInvalidCredential},
	{errorz.ErrInvalidSessionOrPIN, http.StatusBadRequest, KindInvalidCredential},
	{errorz.ErrPINExpired, http.StatusGone, KindExpired},
	{errorz.ErrAttendanceAlreadyMarked, http.StatusConflict, KindConflict},
	{errorz.ErrInvalidSessionID, http.StatusBadRequest, KindBadRequest},
	{errorz.ErrInvalidRequestBody, http.StatusBadRequest, KindBadRequest},
}

// writeError maps a domain error to its status and kind. Only the matched
// sentinel's message reaches the client, never a wrapped driver error.
// Anything unknown goes to echo's error handler as a 500.
func writeError(c echo.Context, err error) error {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return c.JSON(k.status, ErrorResponse{Error: k.err.Error(), Kind: k.kind})
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
}

func sessionIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil {
		return 0, errorz.ErrInvalidSessionID
	}
	return uint(id), nil
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errorz.ErrInvalidRequestBody
	}
	if err := c.Validate(req); err != nil {
		return errorz.ErrInvalidRequestBody
	}
	return nil
}
