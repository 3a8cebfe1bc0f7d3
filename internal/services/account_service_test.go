package services

import (
	"testing"

	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/models"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/pagination"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/testutil"
)

func TestCreateBankAccount(t *testing.T) {
	t.Run("opening_balance_recorded_as_income", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		account, err := svc.CreateBankAccount(user.ID, "Salary Account", "123456", "HDFC", models.BankAccountTypeSavings, 2500.50)
		testutil.AssertNoError(t, err)
		testutil.AssertMoneyEqual(t, 2500.50, account.Balance, "opening balance")

		var opening models.Transaction
		err = db.Where("account_id = ? AND account_type = ? AND category = ?",
			account.ID, models.LedgerAccountBank, "opening-balance").First(&opening).Error
		testutil.AssertNoError(t, err)
		if opening.Type != models.TransactionTypeIncome {
			t.Errorf("expected income row, got %s", opening.Type)
		}
	})

	t.Run("zero_opening_balance_creates_no_transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		account, err := svc.CreateBankAccount(user.ID, "Cash", "", "", models.BankAccountTypeCash, 0)
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected no transactions, got %d", count)
		}
	})

	t.Run("negative_opening_balance_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBankAccount(user.ID, "Bad", "", "", models.BankAccountTypeSavings, -5)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateBankAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestBankAccount(t, db, user.ID, 1000)

	name := "Renamed"
	updated, err := svc.UpdateBankAccount(user.ID, account.ID, BankAccountUpdate{Name: &name})
	testutil.AssertNoError(t, err)
	if updated.Name != "Renamed" {
		t.Errorf("expected renamed account, got %q", updated.Name)
	}
	// Balance is unaffected by metadata updates.
	testutil.AssertMoneyEqual(t, 1000, updated.Balance, "balance preserved")
}

func TestDeleteBankAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)
	ledger := NewLedgerService(db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestBankAccount(t, db, user.ID, 1000)

	_, err := ledger.ApplyNewTransaction(user.ID, TransactionInput{
		AccountID:   account.ID,
		AccountType: models.LedgerAccountBank,
		Type:        models.TransactionTypeExpense,
		Amount:      100,
		Category:    "misc",
	})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, svc.DeleteBankAccount(user.ID, account.ID))

	_, err = svc.GetBankAccountByID(user.ID, account.ID)
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")

	var count int64
	db.Model(&models.Transaction{}).
		Where("account_id = ? AND account_type = ?", account.ID, models.LedgerAccountBank).
		Count(&count)
	if count != 0 {
		t.Errorf("expected account transactions removed, got %d", count)
	}
}

func TestCreateCreditCard(t *testing.T) {
	t.Run("available_credit_derived_from_limit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		card, err := svc.CreateCreditCard(user.ID, "Platinum", "4111222233334444", 80000, 15, nil)
		testutil.AssertNoError(t, err)
		testutil.AssertMoneyEqual(t, 80000, card.AvailableCredit, "available credit")
		if card.DueDay != 15 {
			t.Errorf("expected due day 15, got %d", card.DueDay)
		}
	})

	t.Run("linked_account_must_exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		missing := uint(9999)
		_, err := svc.CreateCreditCard(user.ID, "Platinum", "4111", 80000, 15, &missing)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}

func TestUpdateCreditCard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)
	user := testutil.CreateTestUser(t, db)
	card := testutil.CreateTestCreditCard(t, db, user.ID, 50000, 12000, nil)

	newLimit := 60000.0
	updated, err := svc.UpdateCreditCard(user.ID, card.ID, CreditCardUpdate{CreditLimit: &newLimit})
	testutil.AssertNoError(t, err)
	testutil.AssertMoneyEqual(t, 48000, updated.AvailableCredit, "available credit recomputed")
	testutil.AssertMoneyEqual(t, 12000, updated.CurrentBalance, "current balance preserved")
}

func TestCreateLoan(t *testing.T) {
	t.Run("emi_derived_when_omitted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		loan, err := svc.CreateLoan(user.ID, "Car Loan", 100000, 10, 12, nil, models.LoanPaymentModeManual, nil)
		testutil.AssertNoError(t, err)
		testutil.AssertMoneyEqual(t, 8791.59, loan.EMIAmount, "derived EMI")
		testutil.AssertMoneyEqual(t, 100000, loan.RemainingAmount, "remaining amount")
		if loan.RemainingMonths != 12 {
			t.Errorf("expected 12 remaining months, got %d", loan.RemainingMonths)
		}
	})

	t.Run("explicit_emi_kept", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		emi := 9000.0
		loan, err := svc.CreateLoan(user.ID, "Car Loan", 100000, 10, 12, &emi, models.LoanPaymentModeManual, nil)
		testutil.AssertNoError(t, err)
		testutil.AssertMoneyEqual(t, 9000, loan.EMIAmount, "explicit EMI")
	})

	t.Run("invalid_terms_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAccountService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateLoan(user.ID, "Bad Loan", 0, 10, 12, nil, models.LoanPaymentModeManual, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetBankAccounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAccountService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	for i := 0; i < 3; i++ {
		testutil.CreateTestBankAccount(t, db, user.ID, 0)
	}
	testutil.CreateTestBankAccount(t, db, other.ID, 0)

	page, err := svc.GetBankAccounts(user.ID, pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 3 {
		t.Errorf("expected 3 accounts for user, got %d", page.TotalItems)
	}
	if len(page.Data) != 2 {
		t.Errorf("expected page of 2, got %d", len(page.Data))
	}
}
