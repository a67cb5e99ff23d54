// Package store persists sessions, their rotating tokens, and attendance.
//
// Two implementations are provided: GormStore for relational databases and
// MemoryStore for local runs and tests. Both return the sentinel errors of
// the errorz package so callers never see driver specific errors; any
// persistence failure is reported as errorz.ErrStorageUnavailable.
package store

import (
	"context"

	"github.com/jack5341/attendance-server/internal/models"
)

type Store interface {
	Ping(ctx context.Context) error

	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id uint) (models.Session, error)
	// DeleteSession removes the session with its tokens and attendance as
	// one unit.
	DeleteSession(ctx context.Context, id uint) error

	// GetOrCreateToken returns the token of sessionID, inserting the one
	// built by newToken if none exists. Look-up and insert are atomic with
	// respect to other callers for the same session.
	GetOrCreateToken(ctx context.Context, sessionID uint, newToken func() models.SessionToken) (models.SessionToken, error)
	// FindTokenByPIN returns the first token holding pin, restricted to
	// sessionID when it is not nil.
	FindTokenByPIN(ctx context.Context, pin int, sessionID *uint) (models.SessionToken, error)
	// GetToken returns the token of sessionID without creating one.
	GetToken(ctx context.Context, sessionID uint) (models.SessionToken, error)
	// RotatePINs overwrites the PIN of every existing session's token with
	// nextPIN() and returns how many tokens changed. Sessions without a
	// token are skipped.
	RotatePINs(ctx context.Context, nextPIN func() int) (int, error)

	// CreateAttendance inserts a check-in after making sure the session
	// exists and the student has not already been marked for it.
	CreateAttendance(ctx context.Context, attendance *models.Attendance) error
	ListAttendance(ctx context.Context, sessionID uint) ([]models.Attendance, error)
}
