package models

import "time"

// WalletRole is a member's role inside a shared wallet.
type WalletRole string

const (
	WalletRoleOwner  WalletRole = "owner"
	WalletRoleMember WalletRole = "member"
)

// SplitType controls how a shared transaction is divided among members.
type SplitType string

const (
	SplitTypeEqual      SplitType = "equal"
	SplitTypeCustom     SplitType = "custom"
	SplitTypePercentage SplitType = "percentage"
)

// SharedTransactionType represents the type of a shared-wallet transaction.
type SharedTransactionType string

const (
	SharedTxnExpense    SharedTransactionType = "expense"
	SharedTxnIncome     SharedTransactionType = "income"
	SharedTxnSettlement SharedTransactionType = "settlement"
)

// SharedWallet is a group wallet whose expenses are split among members.
type SharedWallet struct {
	Base
	Name       string  `gorm:"not null" json:"name"`
	Currency   string  `gorm:"not null;default:'INR'" json:"currency"`
	Balance    float64 `gorm:"not null;default:0" json:"balance"`
	InviteCode string  `gorm:"uniqueIndex;not null" json:"invite_code"`

	Members      []WalletMember      `gorm:"foreignKey:WalletID" json:"members,omitempty"`
	Transactions []SharedTransaction `gorm:"foreignKey:WalletID" json:"transactions,omitempty"`
}

// WalletMember ties a user to a shared wallet with a role.
type WalletMember struct {
	Base
	WalletID uint       `gorm:"not null;index:idx_wallet_member,unique" json:"wallet_id"`
	UserID   uint       `gorm:"not null;index:idx_wallet_member,unique" json:"user_id"`
	Role     WalletRole `gorm:"not null;default:'member'" json:"role"`
}

// SharedTransaction is one entry in a wallet's transaction log. The sum of
// its split amounts always equals Amount exactly; equal and percentage
// splits assign the rounding remainder to the payer's split.
type SharedTransaction struct {
	Base
	WalletID    uint                  `gorm:"not null;index" json:"wallet_id"`
	Amount      float64               `gorm:"not null" json:"amount"`
	Type        SharedTransactionType `gorm:"not null" json:"type"`
	PaidBy      uint                  `gorm:"not null" json:"paid_by"`
	SplitType   SplitType             `gorm:"not null;default:'equal'" json:"split_type"`
	Description string                `json:"description"`
	Date        time.Time             `gorm:"not null" json:"date"`

	Splits []TransactionSplit `gorm:"foreignKey:SharedTransactionID" json:"splits,omitempty"`
}

// TransactionSplit is one member's share of a shared transaction.
type TransactionSplit struct {
	Base
	SharedTransactionID uint    `gorm:"not null;index" json:"shared_transaction_id"`
	UserID              uint    `gorm:"not null" json:"user_id"`
	Amount              float64 `gorm:"not null" json:"amount"`
	Percentage          float64 `json:"percentage,omitempty"`
	Paid                bool    `gorm:"not null;default:false" json:"paid"`
}
