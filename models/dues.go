package models

import "time"

// PaymentStatus is the dues situation of a member for the current period.
type PaymentStatus string

const (
	Paid   PaymentStatus = "Paid"
	Unpaid PaymentStatus = "Unpaid"
)

func (s PaymentStatus) Valid() bool {
	return s == Paid || s == Unpaid
}

// DuesStatus holds at most one row per member. Members without a row are
// treated as Unpaid.
type DuesStatus struct {
	MemberID  int64         `gorm:"primaryKey;autoIncrement:false" json:"member_id"`
	Status    PaymentStatus `gorm:"size:16;not null" json:"status"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (DuesStatus) TableName() string { return "dues_statuses" }
