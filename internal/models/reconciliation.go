package models

import "time"

// Reconciliation is an append-only audit record of a transfer between a bank
// account and a credit card or loan. Rows are never updated or deleted, even
// when the transactions they describe are later removed.
type Reconciliation struct {
	Base
	UserID          uint              `gorm:"not null;index" json:"user_id"`
	FromAccountID   uint              `gorm:"not null" json:"from_account_id"`
	FromAccountType LedgerAccountType `gorm:"not null" json:"from_account_type"`
	ToAccountID     uint              `gorm:"not null" json:"to_account_id"`
	ToAccountType   LedgerAccountType `gorm:"not null" json:"to_account_type"`
	Amount          float64           `gorm:"not null" json:"amount"`
	Date            time.Time         `gorm:"not null" json:"date"`
	Description     string            `json:"description"`
}
