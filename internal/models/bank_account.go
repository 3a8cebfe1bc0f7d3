package models

// BankAccountType represents the kind of bank account.
type BankAccountType string

const (
	BankAccountTypeSavings BankAccountType = "savings"
	BankAccountTypeCurrent BankAccountType = "current"
	BankAccountTypeCash    BankAccountType = "cash"
)

// BankAccount represents a bank account. Balance is derived state: it is the
// sum of all income amounts minus all expense/payment amounts ever applied to
// the account, net of linked-transfer effects, and is written exclusively by
// the ledger service.
type BankAccount struct {
	Base
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	Name          string          `gorm:"not null" json:"name"`
	AccountNumber string          `json:"account_number"`
	BankName      string          `json:"bank_name"`
	Type          BankAccountType `gorm:"not null;default:'savings'" json:"type"`
	Balance       float64         `gorm:"not null;default:0" json:"balance"`
}
