package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind tells whether money entered or left the treasury.
type TransactionKind string

const (
	Inflow  TransactionKind = "Inflow"
	Outflow TransactionKind = "Outflow"
)

func (k TransactionKind) Valid() bool {
	return k == Inflow || k == Outflow
}

// Transaction is a treasury ledger line. Amount is signed: positive for
// Inflow, negative for Outflow.
type Transaction struct {
	ID          int64           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`
	Description string          `gorm:"size:512;not null" json:"description"`
	Kind        TransactionKind `gorm:"size:16;not null" json:"kind"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
}

func (Transaction) TableName() string { return "treasury_transactions" }
