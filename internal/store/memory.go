package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	errorz "github.com/jack5341/attendance-server/internal/errors"
	"github.com/jack5341/attendance-server/internal/models"
)

// MemoryStore keeps everything in process. Tokens and attendance are held
// in insertion order so "first match" look-ups behave like the SQL store.
type MemoryStore struct {
	mutex         sync.RWMutex
	nextSessionID uint
	sessions      map[uint]models.Session
	tokens        []models.SessionToken
	attendance    []models.Attendance
	now           func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextSessionID: 1,
		sessions:      make(map[uint]models.Session),
		now:           time.Now,
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) CreateSession(ctx context.Context, session *models.Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if session.ID == 0 {
		session.ID = s.nextSessionID
	}
	if session.ID >= s.nextSessionID {
		s.nextSessionID = session.ID + 1
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now()
	}
	s.sessions[session.ID] = *session
	return nil
}

func (s *MemoryStore) GetSession(ctx context.Context, id uint) (models.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return models.Session{}, errorz.ErrSessionNotFound
	}
	return session, nil
}

func (s *MemoryStore) DeleteSession(ctx context.Context, id uint) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return errorz.ErrSessionNotFound
	}
	s.attendance = slices.DeleteFunc(s.attendance, func(a models.Attendance) bool { return a.SessionID == id })
	s.tokens = slices.DeleteFunc(s.tokens, func(t models.SessionToken) bool { return t.SessionID == id })
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) GetOrCreateToken(ctx context.Context, sessionID uint, newToken func() models.SessionToken) (models.SessionToken, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if i := s.tokenIndex(sessionID); i >= 0 {
		return s.tokens[i], nil
	}

	token := newToken()
	token.SessionID = sessionID
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	now := s.now()
	token.CreatedAt = now
	token.UpdatedAt = now
	s.tokens = append(s.tokens, token)
	return token, nil
}

func (s *MemoryStore) GetToken(ctx context.Context, sessionID uint) (models.SessionToken, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if i := s.tokenIndex(sessionID); i >= 0 {
		return s.tokens[i], nil
	}
	return models.SessionToken{}, errorz.ErrSessionTokenNotFound
}

func (s *MemoryStore) FindTokenByPIN(ctx context.Context, pin int, sessionID *uint) (models.SessionToken, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, token := range s.tokens {
		if token.PIN != pin {
			continue
		}
		if sessionID != nil && token.SessionID != *sessionID {
			continue
		}
		return token, nil
	}
	return models.SessionToken{}, errorz.ErrSessionTokenNotFound
}

func (s *MemoryStore) RotatePINs(ctx context.Context, nextPIN func() int) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, translate(err)
	}

	rotated := 0
	for id := range s.sessions {
		i := s.tokenIndex(id)
		if i < 0 {
			continue
		}
		s.tokens[i].PIN = nextPIN()
		s.tokens[i].UpdatedAt = s.now()
		rotated++
	}
	return rotated, nil
}

func (s *MemoryStore) CreateAttendance(ctx context.Context, attendance *models.Attendance) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.sessions[attendance.SessionID]; !ok {
		return errorz.ErrSessionNotFound
	}
	for _, a := range s.attendance {
		if a.SessionID == attendance.SessionID && a.StudentID == attendance.StudentID {
			return errorz.ErrAttendanceAlreadyMarked
		}
	}
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	s.attendance = append(s.attendance, *attendance)
	return nil
}

func (s *MemoryStore) ListAttendance(ctx context.Context, sessionID uint) ([]models.Attendance, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rows := []models.Attendance{}
	for _, a := range s.attendance {
		if a.SessionID == sessionID {
			rows = append(rows, a)
		}
	}
	return rows, nil
}

// tokenIndex must be called with the mutex held.
func (s *MemoryStore) tokenIndex(sessionID uint) int {
	return slices.IndexFunc(s.tokens, func(t models.SessionToken) bool { return t.SessionID == sessionID })
}
