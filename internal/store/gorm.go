package store

import (
	"context"
	"errors"

	errorz "github.com/jack5341/attendance-server/internal/errors"
	"github.com/jack5341/attendance-server/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// translate keeps domain errors as they are and joins anything else with
// ErrStorageUnavailable.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errorz.ErrSessionNotFound),
		errors.Is(err, errorz.ErrSessionTokenNotFound),
		errors.Is(err, errorz.ErrAttendanceAlreadyMarked):
		return err
	default:
		return errors.Join(errorz.ErrStorageUnavailable, err)
	}
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return translate(err)
	}
	return translate(sqlDB.PingContext(ctx))
}

func (s *GormStore) CreateSession(ctx context.Context, session *models.Session) error {
	return translate(s.db.WithContext(ctx).Create(session).Error)
}

func (s *GormStore) GetSession(ctx context.Context, id uint) (models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Session{}, errorz.ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, translate(err)
	}
	return session, nil
}

func (s *GormStore) DeleteSession(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.First(&session, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorz.ErrSessionNotFound
			}
			return err
		}
		if err := tx.Where("session_id = ?", id).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", id).Delete(&models.SessionToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&session).Error
	})
	return translate(err)
}

func (s *GormStore) GetOrCreateToken(ctx context.Context, sessionID uint, newToken func() models.SessionToken) (models.SessionToken, error) {
	var token models.SessionToken
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("session_id = ?", sessionID).Order("created_at")
		switch tx.Dialector.Name() {
		case "postgres":
			// Row locks do not cover a missing row, so serialize creators of
			// the same session on a transaction scoped advisory lock.
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(sessionID)).Error; err != nil {
				return err
			}
		case "mysql":
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		err := query.Take(&token).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		token = newToken()
		token.SessionID = sessionID
		return tx.Create(&token).Error
	})
	if err != nil {
		return models.SessionToken{}, translate(err)
	}
	return token, nil
}

func (s *GormStore) GetToken(ctx context.Context, sessionID uint) (models.SessionToken, error) {
	var token models.SessionToken
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("created_at").Take(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SessionToken{}, errorz.ErrSessionTokenNotFound
	}
	if err != nil {
		return models.SessionToken{}, translate(err)
	}
	return token, nil
}

func (s *GormStore) FindTokenByPIN(ctx context.Context, pin int, sessionID *uint) (models.SessionToken, error) {
	var token models.SessionToken
	query := s.db.WithContext(ctx).Where("pin = ?", pin)
	if sessionID != nil {
		query = query.Where("session_id = ?", *sessionID)
	}
	err := query.Order("created_at").Take(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SessionToken{}, errorz.ErrSessionTokenNotFound
	}
	if err != nil {
		return models.SessionToken{}, translate(err)
	}
	return token, nil
}

func (s *GormStore) RotatePINs(ctx context.Context, nextPIN func() int) (int, error) {
	rotated := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sessions []models.Session
		if err := tx.Find(&sessions).Error; err != nil {
			return err
		}
		for _, session := range sessions {
			var token models.SessionToken
			err := tx.Where("session_id = ?", session.ID).Order("created_at").Take(&token).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := tx.Model(&token).Update("pin", nextPIN()).Error; err != nil {
				return err
			}
			rotated++
		}
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}
	return rotated, nil
}

func (s *GormStore) CreateAttendance(ctx context.Context, attendance *models.Attendance) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.First(&session, attendance.SessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorz.ErrSessionNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Attendance{}).
			Where("session_id = ? AND student_id = ?", attendance.SessionID, attendance.StudentID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errorz.ErrAttendanceAlreadyMarked
		}
		return tx.Create(attendance).Error
	})
	return translate(err)
}

func (s *GormStore) ListAttendance(ctx context.Context, sessionID uint) ([]models.Attendance, error) {
	var rows []models.Attendance
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("marked_at").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}
