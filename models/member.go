package models

import "time"

// MemberStatus is the membership category of a Member.
type MemberStatus string

const (
	MemberActive MemberStatus = "Active"
	MemberSenior MemberStatus = "Senior"
)

func (s MemberStatus) Valid() bool {
	return s == MemberActive || s == MemberSenior
}

// Member is a person on the chapter roster. ID is allocated by the store on
// create and never changes afterwards.
type Member struct {
	ID           int64        `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	ExternalCode string       `gorm:"size:64" json:"external_code"`
	Name         string       `gorm:"size:255;not null" json:"name"`
	Phone        string       `gorm:"size:64" json:"phone"`
	Email        string       `gorm:"size:255" json:"email"`
	Status       MemberStatus `gorm:"size:16;not null;index" json:"status"`
}
