package models

// LoanPaymentMode indicates whether EMIs are auto-debited or paid manually.
type LoanPaymentMode string

const (
	LoanPaymentModeAuto   LoanPaymentMode = "auto"
	LoanPaymentModeManual LoanPaymentMode = "manual"
)

// Loan represents an amortized loan. RemainingAmount is monotonically
// non-increasing outside of payment reversals, and RemainingMonths,
// TotalEMIsPaid, and RemainingAmount are written exclusively by the ledger
// service. A loan is active while RemainingMonths > 0 and paid off at 0.
type Loan struct {
	Base
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	Name            string          `gorm:"not null" json:"name"`
	PrincipalAmount float64         `gorm:"not null" json:"principal_amount"`
	RemainingAmount float64         `gorm:"not null" json:"remaining_amount"`
	InterestRate    float64         `gorm:"not null" json:"interest_rate"`
	EMIAmount       float64         `gorm:"not null" json:"emi_amount"`
	TenureMonths    int             `gorm:"not null" json:"tenure_months"`
	RemainingMonths int             `gorm:"not null" json:"remaining_months"`
	TotalEMIsPaid   int             `gorm:"not null;default:0" json:"total_emis_paid"`
	PaymentMode     LoanPaymentMode `gorm:"not null;default:'manual'" json:"payment_mode"`
	LinkedAccountID *uint           `json:"linked_account_id,omitempty"`
}

// IsPaidOff reports whether the loan has been fully repaid.
func (l *Loan) IsPaidOff() bool {
	return l.RemainingMonths == 0
}
