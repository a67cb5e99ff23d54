package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Attendance struct {
	ID        string    `gorm:"primaryKey;size:36" json:"attendance_id"`
	SessionID uint      `gorm:"index:idx_attendance_session_student;not null" json:"session_id"`
	StudentID string    `gorm:"index:idx_attendance_session_student;size:64;not null" json:"student_id"`
	Latitude  string    `json:"latitude"`
	Longitude string    `json:"longitude"`
	MarkedAt  time.Time `gorm:"not null" json:"mark_at"`
}

func (Attendance) TableName() string { return "attendance" }

func (a *Attendance) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
