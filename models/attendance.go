package models

import "time"

// Attendance records whether a member attended an event. The composite key
// keeps a single row per (event, member).
type Attendance struct {
	EventID   int64     `gorm:"primaryKey;autoIncrement:false" json:"event_id"`
	MemberID  int64     `gorm:"primaryKey;autoIncrement:false;index" json:"member_id"`
	Present   bool      `gorm:"not null" json:"present"`
	CreatedAt time.Time `json:"created_at"`
}

func (Attendance) TableName() string { return "attendances" }
