package models

// CreditCard represents a credit card. CurrentBalance is the amount owed.
// AvailableCredit is always limit minus current balance; Recompute must be
// called after every CurrentBalance change so the stored value never drifts.
type CreditCard struct {
	Base
	UserID          uint    `gorm:"not null;index" json:"user_id"`
	Name            string  `gorm:"not null" json:"name"`
	CardNumber      string  `json:"card_number"`
	CreditLimit     float64 `gorm:"not null" json:"credit_limit"`
	CurrentBalance  float64 `gorm:"not null;default:0" json:"current_balance"`
	AvailableCredit float64 `gorm:"not null;default:0" json:"available_credit"`
	// DueDay is the statement due day of month, 1-31.
	DueDay          int   `gorm:"not null;default:1" json:"due_day"`
	LinkedAccountID *uint `json:"linked_account_id,omitempty"`
}

// Recompute refreshes AvailableCredit from the limit and current balance.
func (c *CreditCard) Recompute() {
	c.AvailableCredit = c.CreditLimit - c.CurrentBalance
}
