package models

import "time"

// Session is one scheduled class meeting.
type Session struct {
	ID           uint      `gorm:"primaryKey" json:"sessionid"`
	UserID       uint      `gorm:"not null" json:"userid"`
	ModuleID     uint      `gorm:"not null" json:"module_id"`
	LocationName string    `gorm:"not null" json:"location_name"`
	StartTime    string    `gorm:"not null" json:"start_time"`
	EndTime      string    `gorm:"not null" json:"end_time"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Session) TableName() string { return "sesstion" }
