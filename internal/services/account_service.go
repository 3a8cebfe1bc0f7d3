package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/amortization"
	apperrors "github.com/syednasirayub17/expenses-tracker-2-sub000/internal/errors"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/models"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/money"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/pagination"
)

// accountService is the account store for bank accounts, credit cards, and
// loans.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateBankAccount creates a bank account. A positive opening balance is
// recorded as an initial income transaction so the balance stays derivable
// from the account's transaction history.
func (s *accountService) CreateBankAccount(userID uint, name, accountNumber, bankName string, accountType models.BankAccountType, openingBalance float64) (*models.BankAccount, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if openingBalance < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "opening balance cannot be negative")
	}
	if accountType == "" {
		accountType = models.BankAccountTypeSavings
	}

	account := &models.BankAccount{
		UserID:        userID,
		Name:          name,
		AccountNumber: accountNumber,
		BankName:      bankName,
		Type:          accountType,
		Balance:       money.Round2(openingBalance),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if account.Balance > 0 {
			opening := &models.Transaction{
				UserID:      userID,
				AccountID:   account.ID,
				AccountType: models.LedgerAccountBank,
				Type:        models.TransactionTypeIncome,
				Amount:      account.Balance,
				Category:    "opening-balance",
				Description: "Opening balance",
				Date:        time.Now(),
			}
			if err := tx.Create(opening).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetBankAccounts retrieves a paginated list of the user's bank accounts.
func (s *accountService) GetBankAccounts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.BankAccount], error) {
	page.Defaults()

	base := s.db.Model(&models.BankAccount{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.BankAccount
	if err := base.Scopes(pagination.Paginate(page)).Order("id").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBankAccountByID retrieves a bank account by id for a specific user.
func (s *accountService) GetBankAccountByID(userID, accountID uint) (*models.BankAccount, error) {
	var account models.BankAccount
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateBankAccount updates the client-editable fields of a bank account.
func (s *accountService) UpdateBankAccount(userID, accountID uint, fields BankAccountUpdate) (*models.BankAccount, error) {
	account, err := s.GetBankAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.AccountNumber != nil {
		updates["account_number"] = *fields.AccountNumber
	}
	if fields.BankName != nil {
		updates["bank_name"] = *fields.BankName
	}
	if fields.Type != nil {
		updates["type"] = *fields.Type
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return account, nil
}

// DeleteBankAccount deletes a bank account and cascades to its transactions.
func (s *accountService) DeleteBankAccount(userID, accountID uint) error {
	account, err := s.GetBankAccountByID(userID, accountID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteAccountWithTransactions(tx, account, models.LedgerAccountBank, account.ID)
	})
}

// CreateCreditCard creates a credit card with a zero balance and full
// available credit.
func (s *accountService) CreateCreditCard(userID uint, name, cardNumber string, creditLimit float64, dueDay int, linkedAccountID *uint) (*models.CreditCard, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "card name is required")
	}
	if creditLimit < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "credit limit cannot be negative")
	}
	if dueDay < 1 || dueDay > 31 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "due day must be between 1 and 31")
	}
	if linkedAccountID != nil {
		if _, err := s.GetBankAccountByID(userID, *linkedAccountID); err != nil {
			return nil, err
		}
	}

	card := &models.CreditCard{
		UserID:          userID,
		Name:            name,
		CardNumber:      cardNumber,
		CreditLimit:     money.Round2(creditLimit),
		CurrentBalance:  0,
		DueDay:          dueDay,
		LinkedAccountID: linkedAccountID,
	}
	card.Recompute()

	if err := s.db.Create(card).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return card, nil
}

// GetCreditCards retrieves a paginated list of the user's credit cards.
func (s *accountService) GetCreditCards(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.CreditCard], error) {
	page.Defaults()

	base := s.db.Model(&models.CreditCard{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var cards []models.CreditCard
	if err := base.Scopes(pagination.Paginate(page)).Order("id").Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(cards, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCreditCardByID retrieves a credit card by id for a specific user.
func (s *accountService) GetCreditCardByID(userID, cardID uint) (*models.CreditCard, error) {
	var card models.CreditCard
	if err := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &card, nil
}

// UpdateCreditCard updates the client-editable fields of a credit card.
// Changing the limit recomputes available credit against the untouched
// current balance.
func (s *accountService) UpdateCreditCard(userID, cardID uint, fields CreditCardUpdate) (*models.CreditCard, error) {
	card, err := s.GetCreditCardByID(userID, cardID)
	if err != nil {
		return nil, err
	}

	if fields.Name != nil && *fields.Name != "" {
		card.Name = *fields.Name
	}
	if fields.CardNumber != nil {
		card.CardNumber = *fields.CardNumber
	}
	if fields.CreditLimit != nil {
		if *fields.CreditLimit < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "credit limit cannot be negative")
		}
		card.CreditLimit = money.Round2(*fields.CreditLimit)
	}
	if fields.DueDay != nil {
		if *fields.DueDay < 1 || *fields.DueDay > 31 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "due day must be between 1 and 31")
		}
		card.DueDay = *fields.DueDay
	}
	if fields.LinkedAccountID != nil {
		if _, err := s.GetBankAccountByID(userID, *fields.LinkedAccountID); err != nil {
			return nil, err
		}
		card.LinkedAccountID = fields.LinkedAccountID
	}
	card.Recompute()

	if err := s.db.Save(card).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return card, nil
}

// DeleteCreditCard deletes a credit card and cascades to its transactions.
func (s *accountService) DeleteCreditCard(userID, cardID uint) error {
	card, err := s.GetCreditCardByID(userID, cardID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteAccountWithTransactions(tx, card, models.LedgerAccountCreditCard, card.ID)
	})
}

// CreateLoan creates a loan. When the client does not supply an EMI amount
// it is derived from the loan terms with the annuity formula.
func (s *accountService) CreateLoan(userID uint, name string, principal, interestRate float64, tenureMonths int, emiAmount *float64, paymentMode models.LoanPaymentMode, linkedAccountID *uint) (*models.Loan, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "loan name is required")
	}
	if principal <= 0 || tenureMonths <= 0 || interestRate < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "principal and tenure must be positive, interest rate non-negative")
	}
	if paymentMode == "" {
		paymentMode = models.LoanPaymentModeManual
	}
	if linkedAccountID != nil {
		if _, err := s.GetBankAccountByID(userID, *linkedAccountID); err != nil {
			return nil, err
		}
	}

	var emi float64
	if emiAmount != nil {
		if *emiAmount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "EMI amount must be positive")
		}
		emi = money.Round2(*emiAmount)
	} else {
		result, err := amortization.CalculateEMI(principal, interestRate, tenureMonths)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err)
		}
		emi = result.EMI
	}

	loan := &models.Loan{
		UserID:          userID,
		Name:            name,
		PrincipalAmount: money.Round2(principal),
		RemainingAmount: money.Round2(principal),
		InterestRate:    interestRate,
		EMIAmount:       emi,
		TenureMonths:    tenureMonths,
		RemainingMonths: tenureMonths,
		PaymentMode:     paymentMode,
		LinkedAccountID: linkedAccountID,
	}

	if err := s.db.Create(loan).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return loan, nil
}

// GetLoans retrieves a paginated list of the user's loans.
func (s *accountService) GetLoans(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Loan], error) {
	page.Defaults()

	base := s.db.Model(&models.Loan{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var loans []models.Loan
	if err := base.Scopes(pagination.Paginate(page)).Order("id").Find(&loans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(loans, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetLoanByID retrieves a loan by id for a specific user.
func (s *accountService) GetLoanByID(userID, loanID uint) (*models.Loan, error) {
	var loan models.Loan
	if err := s.db.Where("id = ? AND user_id = ?", loanID, userID).First(&loan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &loan, nil
}

// UpdateLoan updates the client-editable fields of a loan.
func (s *accountService) UpdateLoan(userID, loanID uint, fields LoanUpdate) (*models.Loan, error) {
	loan, err := s.GetLoanByID(userID, loanID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil && *fields.Name != "" {
		updates["name"] = *fields.Name
	}
	if fields.PaymentMode != nil {
		updates["payment_mode"] = *fields.PaymentMode
	}
	if fields.LinkedAccountID != nil {
		if _, err := s.GetBankAccountByID(userID, *fields.LinkedAccountID); err != nil {
			return nil, err
		}
		updates["linked_account_id"] = *fields.LinkedAccountID
	}

	if len(updates) > 0 {
		if err := s.db.Model(loan).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return loan, nil
}

// DeleteLoan deletes a loan and cascades to its transactions.
func (s *accountService) DeleteLoan(userID, loanID uint) error {
	loan, err := s.GetLoanByID(userID, loanID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteAccountWithTransactions(tx, loan, models.LedgerAccountLoan, loan.ID)
	})
}

// deleteAccountWithTransactions removes an account record and every
// transaction recorded against it.
func deleteAccountWithTransactions(tx *gorm.DB, account interface{}, accountType models.LedgerAccountType, accountID uint) error {
	if err := tx.Where("account_id = ? AND account_type = ?", accountID, accountType).
		Delete(&models.Transaction{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := tx.Delete(account).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
