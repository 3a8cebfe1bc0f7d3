package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     fmt.Sprintf("Test User %d", nextID()),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBankAccount creates a savings account with the given balance.
func CreateTestBankAccount(t *testing.T, db *gorm.DB, userID uint, balance float64) *models.BankAccount {
	t.Helper()

	account := &models.BankAccount{
		UserID:        userID,
		Name:          fmt.Sprintf("Test Bank Account %d", nextID()),
		AccountNumber: fmt.Sprintf("ACCT%06d", nextID()),
		BankName:      "Test Bank",
		Type:          models.BankAccountTypeSavings,
		Balance:       balance,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test bank account: %v", err)
	}
	return account
}

// CreateTestCreditCard creates a credit card with the given limit and
// current balance, optionally linked to a bank account.
func CreateTestCreditCard(t *testing.T, db *gorm.DB, userID uint, limit, balance float64, linkedAccountID *uint) *models.CreditCard {
	t.Helper()

	card := &models.CreditCard{
		UserID:          userID,
		Name:            fmt.Sprintf("Test Card %d", nextID()),
		CardNumber:      fmt.Sprintf("4000%012d", nextID()),
		CreditLimit:     limit,
		CurrentBalance:  balance,
		DueDay:          5,
		LinkedAccountID: linkedAccountID,
	}
	card.Recompute()
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("failed to create test credit card: %v", err)
	}
	return card
}

// CreateTestLoan creates a loan with the given terms, EMI derived from the
// amortization formula, optionally linked to a bank account.
func CreateTestLoan(t *testing.T, db *gorm.DB, userID uint, principal, rate float64, tenureMonths int, emi float64, linkedAccountID *uint) *models.Loan {
	t.Helper()

	loan := &models.Loan{
		UserID:          userID,
		Name:            fmt.Sprintf("Test Loan %d", nextID()),
		PrincipalAmount: principal,
		RemainingAmount: principal,
		InterestRate:    rate,
		EMIAmount:       emi,
		TenureMonths:    tenureMonths,
		RemainingMonths: tenureMonths,
		PaymentMode:     models.LoanPaymentModeManual,
		LinkedAccountID: linkedAccountID,
	}
	if err := db.Create(loan).Error; err != nil {
		t.Fatalf("failed to create test loan: %v", err)
	}
	return loan
}

// CreateTestWallet creates a shared wallet owned by the given user.
func CreateTestWallet(t *testing.T, db *gorm.DB, ownerID uint) *models.SharedWallet {
	t.Helper()

	wallet := &models.SharedWallet{
		Name:       fmt.Sprintf("Test Wallet %d", nextID()),
		Currency:   "INR",
		InviteCode: fmt.Sprintf("TW%06d", nextID()),
	}
	if err := db.Create(wallet).Error; err != nil {
		t.Fatalf("failed to create test wallet: %v", err)
	}

	member := &models.WalletMember{
		WalletID: wallet.ID,
		UserID:   ownerID,
		Role:     models.WalletRoleOwner,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test wallet owner: %v", err)
	}
	return wallet
}

// AddTestWalletMember adds a non-owner member to a wallet.
func AddTestWalletMember(t *testing.T, db *gorm.DB, walletID, userID uint) *models.WalletMember {
	t.Helper()

	member := &models.WalletMember{
		WalletID: walletID,
		UserID:   userID,
		Role:     models.WalletRoleMember,
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to add test wallet member: %v", err)
	}
	return member
}
