package errorz

import "errors"

var ErrErrorWileStartingOTel = errors.New("error while starting OTel")
var ErrConfigNotFound = errors.New("config not found")
var ErrInvalidConfig = errors.New("invalid config")
var ErrServerError = errors.New("server error")
var ErrDatabaseError = errors.New("database error")
var ErrUnsupportedDSN = errors.New("unsupported database dsn")

var ErrSessionNotFound = errors.New("session not found")
var ErrSessionTokenNotFound = errors.New("session token not found")
var ErrInvalidPIN = errors.New("Invalid PIN")
var ErrInvalidSessionOrPIN = errors.New("Invalid session or PIN")
var ErrPINExpired = errors.New("PIN expired")
var ErrStorageUnavailable = errors.New("storage unavailable")

var ErrInvalidSessionID = errors.New("invalid session ID")
var ErrInvalidRequestBody = errors.New("invalid request body")
var ErrAttendanceAlreadyMarked = errors.New("attendance already marked for this session")
