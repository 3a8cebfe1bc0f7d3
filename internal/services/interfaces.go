package services

import (
	"time"

	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/models"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/pagination"
)

// UserServicer handles user registration and credential checks.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// BankAccountUpdate holds the client-editable fields of a bank account.
// Balance is deliberately absent: it is owned by the ledger service.
type BankAccountUpdate struct {
	Name          *string
	AccountNumber *string
	BankName      *string
	Type          *models.BankAccountType
}

// CreditCardUpdate holds the client-editable fields of a credit card.
// CurrentBalance and AvailableCredit are owned by the ledger service.
type CreditCardUpdate struct {
	Name            *string
	CardNumber      *string
	CreditLimit     *float64
	DueDay          *int
	LinkedAccountID *uint
}

// LoanUpdate holds the client-editable fields of a loan. RemainingAmount,
// RemainingMonths, and TotalEMIsPaid are owned by the ledger service.
type LoanUpdate struct {
	Name            *string
	PaymentMode     *models.LoanPaymentMode
	LinkedAccountID *uint
}

// AccountServicer is the account store: create/read/update/delete over the
// three account collections. All balance-bearing fields are written only by
// the ledger service.
type AccountServicer interface {
	CreateBankAccount(userID uint, name, accountNumber, bankName string, accountType models.BankAccountType, openingBalance float64) (*models.BankAccount, error)
	GetBankAccounts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.BankAccount], error)
	GetBankAccountByID(userID, accountID uint) (*models.BankAccount, error)
	UpdateBankAccount(userID, accountID uint, fields BankAccountUpdate) (*models.BankAccount, error)
	DeleteBankAccount(userID, accountID uint) error

	CreateCreditCard(userID uint, name, cardNumber string, creditLimit float64, dueDay int, linkedAccountID *uint) (*models.CreditCard, error)
	GetCreditCards(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.CreditCard], error)
	GetCreditCardByID(userID, cardID uint) (*models.CreditCard, error)
	UpdateCreditCard(userID, cardID uint, fields CreditCardUpdate) (*models.CreditCard, error)
	DeleteCreditCard(userID, cardID uint) error

	CreateLoan(userID uint, name string, principal, interestRate float64, tenureMonths int, emiAmount *float64, paymentMode models.LoanPaymentMode, linkedAccountID *uint) (*models.Loan, error)
	GetLoans(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Loan], error)
	GetLoanByID(userID, loanID uint) (*models.Loan, error)
	UpdateLoan(userID, loanID uint, fields LoanUpdate) (*models.Loan, error)
	DeleteLoan(userID, loanID uint) error
}

// TransactionInput is a fully specified transaction intent, before it has
// an id.
type TransactionInput struct {
	AccountID         uint
	AccountType       models.LedgerAccountType
	Type              models.TransactionType
	Amount            float64
	Category          string
	Description       string
	Date              time.Time
	LinkedAccountID   *uint
	LinkedAccountType *models.LedgerAccountType
	// EMICount is how many EMIs a loan payment covers; defaults to 1.
	EMICount int
}

// TransactionFilter holds optional filters for transaction listings.
type TransactionFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	Type      *models.TransactionType
	Category  *string
	MinAmount *float64
	MaxAmount *float64
}

// LedgerServicer is the ledger engine. It owns every balance-bearing field
// on the three account collections and keeps them consistent as
// transactions are created, edited, and deleted.
type LedgerServicer interface {
	ApplyNewTransaction(userID uint, input TransactionInput) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, input TransactionInput) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
	PayLoanEMIs(userID, loanID uint, numberOfEMIs int) (*models.Transaction, error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	GetAccountTransactions(userID uint, accountType models.LedgerAccountType, accountID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetReconciliations(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Reconciliation], error)
}

// SharedTransactionInput describes a new shared-wallet transaction.
type SharedTransactionInput struct {
	Amount      float64
	Type        models.SharedTransactionType
	PaidBy      uint
	SplitType   models.SplitType
	Description string
	Date        time.Time
	// Shares is required for custom and percentage splits; equal splits
	// cover every wallet member.
	Shares []SplitShare
}

// WalletServicer manages shared wallets, their transaction logs, and the
// settlement computations over them.
type WalletServicer interface {
	CreateWallet(userID uint, name, currency string) (*models.SharedWallet, error)
	GetUserWallets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.SharedWallet], error)
	GetWalletByID(userID, walletID uint) (*models.SharedWallet, error)
	JoinWallet(userID uint, inviteCode string) (*models.SharedWallet, error)
	DeleteWallet(userID, walletID uint) error

	AddSharedTransaction(userID, walletID uint, input SharedTransactionInput) (*models.SharedTransaction, error)
	GetWalletTransactions(userID, walletID uint, page pagination.PageRequest) (*pagination.PageResponse[models.SharedTransaction], error)
	GetWalletBalances(userID, walletID uint) (map[uint]float64, error)
	GetSuggestedSettlements(userID, walletID uint) ([]SettlementInstruction, error)
	RecordSettlement(userID, walletID, toUserID uint, amount float64, note string) (*models.SharedTransaction, error)
}
