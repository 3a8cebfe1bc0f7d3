package models

import "time"

// LedgerAccountType identifies which account collection a transaction
// belongs to.
type LedgerAccountType string

const (
	LedgerAccountBank       LedgerAccountType = "bank"
	LedgerAccountCreditCard LedgerAccountType = "credit_card"
	LedgerAccountLoan       LedgerAccountType = "loan"
)

// TransactionType represents the type of transaction.
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypePayment TransactionType = "payment"
	TransactionTypeIncome  TransactionType = "income"
)

// Categories that mark a bank-side row as one leg of a dual transfer.
const (
	CategoryTransfer    = "transfer"
	CategoryCardPayment = "credit-card-payment"
	CategoryLoanEMI     = "loan-emi"
)

// Transaction is one ledger entry against a single account. A dual transfer
// (credit card or loan payment from a bank account, or a bank-to-bank
// transfer) is recorded as two rows sharing a PairID.
type Transaction struct {
	Base
	UserID      uint              `gorm:"not null;index" json:"user_id"`
	AccountID   uint              `gorm:"not null;index:idx_account_lookup" json:"account_id"`
	AccountType LedgerAccountType `gorm:"not null;index:idx_account_lookup" json:"account_type"`
	Type        TransactionType   `gorm:"not null" json:"type"`
	Amount      float64           `gorm:"not null" json:"amount"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Date        time.Time         `gorm:"not null" json:"date"`

	// Counterpart account when this row is one leg of a dual transfer.
	LinkedAccountID   *uint              `json:"linked_account_id,omitempty"`
	LinkedAccountType *LedgerAccountType `json:"linked_account_type,omitempty"`

	// PairID links both legs of a dual transfer. Rows created before pair
	// ids existed have it empty and fall back to heuristic matching.
	PairID string `gorm:"index" json:"pair_id,omitempty"`

	// EMICount is how many EMIs a loan payment covers (0 for non-loan rows).
	EMICount int `gorm:"not null;default:0" json:"emi_count,omitempty"`
}

// IsLinkedLegCategory reports whether the category is one of the fixed set
// that marks dual-transfer legs.
func IsLinkedLegCategory(category string) bool {
	switch category {
	case CategoryTransfer, CategoryCardPayment, CategoryLoanEMI:
		return true
	}
	return false
}
