package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionToken is the rotating check-in credential of a session. Only PIN
// changes after creation. There is no unique constraint on SessionID; one
// token per session is kept by the issuer.
type SessionToken struct {
	ID        string    `gorm:"primaryKey;size:36" json:"token_id"`
	SessionID uint      `gorm:"index;not null" json:"session_id"`
	Token     string    `gorm:"not null" json:"token"`
	PIN       int       `gorm:"column:pin;not null;index" json:"pin"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SessionToken) TableName() string { return "session_tokens" }

func (t *SessionToken) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the token's expiry is strictly before now.
func (t SessionToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
