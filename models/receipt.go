package models

import (
	"time"
)

// Receipt is an uploaded proof of payment. When OCR finds an amount the
// receipt is linked to the Outflow transaction created from it.
type Receipt struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	FileName      string    `gorm:"size:255;not null;uniqueIndex" json:"file_name"`
	StorePath     string    `gorm:"column:store_path;size:512" json:"store_path"`
	ContentType   string    `gorm:"size:128" json:"content_type"`
	UploadedBy    string    `gorm:"size:255" json:"uploaded_by"`
	TransactionID *int64    `gorm:"index" json:"transaction_id"`
	// Failed receipts are kept so an admin can enter the transaction by hand.
	Failed       bool   `gorm:"default:false;index" json:"failed"`
	FailedReason string `gorm:"size:255" json:"failed_reason,omitempty"`
}
