package models

import "time"

// Event is a calendar entry of the chapter. Date only carries a calendar day.
type Event struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Date        time.Time `gorm:"type:date;not null;index" json:"date"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"size:1024" json:"description"`
	ColorTag    string    `gorm:"size:16" json:"color_tag"`
}
