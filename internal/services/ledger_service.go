package services

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/amortization"
	apperrors "github.com/syednasirayub17/expenses-tracker-2-sub000/internal/errors"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/logger"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/models"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/money"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/pagination"
)

// ledgerService is the ledger engine. Every mutation runs inside a single
// database transaction with FOR UPDATE locks on each touched account row, so
// dual-leg operations commit both accounts plus the reconciliation record or
// nothing.
type ledgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB) LedgerServicer {
	return &ledgerService{db: db}
}

// ApplyNewTransaction validates and persists a transaction intent, applies
// its balance effect to the affected account(s), creates the counterpart leg
// of dual transfers, and emits a reconciliation record for cross-account
// payments.
func (s *ledgerService) ApplyNewTransaction(userID uint, input TransactionInput) (*models.Transaction, error) {
	if err := normalizeInput(&input); err != nil {
		return nil, err
	}

	var txn *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		txn, txErr = s.createWithinTx(tx, userID, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// createWithinTx persists and applies a transaction inside an open database
// transaction. Used by ApplyNewTransaction and PayLoanEMIs.
func (s *ledgerService) createWithinTx(tx *gorm.DB, userID uint, input TransactionInput) (*models.Transaction, error) {
	if err := s.resolveAccount(tx, userID, input.AccountType, input.AccountID); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		UserID:            userID,
		AccountID:         input.AccountID,
		AccountType:       input.AccountType,
		Type:              input.Type,
		Amount:            money.Round2(input.Amount),
		Category:          input.Category,
		Description:       input.Description,
		Date:              input.Date,
		LinkedAccountID:   input.LinkedAccountID,
		LinkedAccountType: input.LinkedAccountType,
		EMICount:          input.EMICount,
	}

	if isDualPrimary(txn) {
		txn.PairID = uuid.NewString()
	}

	if err := tx.Create(txn).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if secondary := buildSecondaryLeg(txn); secondary != nil {
		if err := tx.Create(secondary).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	if err := s.applyEffect(tx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// UpdateTransaction reverses the old transaction's balance effect exactly as
// it was applied, then applies the new one. Reversal first is mandatory:
// applying the new effect before reversing the old corrupts the balance.
func (s *ledgerService) UpdateTransaction(userID, transactionID uint, input TransactionInput) (*models.Transaction, error) {
	txn, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if err := normalizeInput(&input); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if txn.PairID != "" {
			if counterpart := s.findPairLeg(tx, txn); counterpart != nil {
				return s.updatePaired(tx, txn, counterpart, input)
			}
		}
		return s.updateSingle(tx, txn, input)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// updateSingle handles updates of transactions that are not one leg of a
// dual transfer. The reversal targets the old account and the application
// the new one, so moving a transaction between accounts stays consistent.
func (s *ledgerService) updateSingle(tx *gorm.DB, txn *models.Transaction, input TransactionInput) error {
	if err := s.reverseEffect(tx, txn); err != nil {
		return err
	}

	if err := s.resolveAccount(tx, txn.UserID, input.AccountType, input.AccountID); err != nil {
		return err
	}

	txn.AccountID = input.AccountID
	txn.AccountType = input.AccountType
	txn.Type = input.Type
	txn.Amount = money.Round2(input.Amount)
	txn.Category = input.Category
	txn.Description = input.Description
	txn.Date = input.Date
	txn.LinkedAccountID = input.LinkedAccountID
	txn.LinkedAccountType = input.LinkedAccountType
	txn.EMICount = input.EMICount

	if isDualPrimary(txn) && txn.PairID == "" {
		txn.PairID = uuid.NewString()
		if secondary := buildSecondaryLeg(txn); secondary != nil {
			if err := tx.Create(secondary).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
	}

	if err := tx.Save(txn).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.applyEffect(tx, txn)
}

// updatePaired handles updates of dual-transfer legs: both rows move in
// step, and only amount, date, and description may change. Changing the
// accounts of a transfer means deleting and recreating it.
func (s *ledgerService) updatePaired(tx *gorm.DB, txn, counterpart *models.Transaction, input TransactionInput) error {
	if input.AccountID != txn.AccountID || input.AccountType != txn.AccountType ||
		input.Type != txn.Type || input.Category != txn.Category {
		return apperrors.WithMessage(apperrors.ErrInvalidInput,
			"only amount, date, and description of a linked transaction can change; delete and recreate it to change accounts")
	}

	primary := txn
	if isSecondaryLeg(txn) {
		primary = counterpart
	}

	if err := s.reverseEffect(tx, primary); err != nil {
		return err
	}

	amount := money.Round2(input.Amount)
	for _, leg := range []*models.Transaction{txn, counterpart} {
		leg.Amount = amount
		leg.Date = input.Date
		leg.Description = input.Description
		if err := tx.Save(leg).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.applyEffect(tx, primary)
}

// DeleteTransaction removes a transaction, reversing its balance effect. A
// dual-transfer leg takes its counterpart with it, reversing both accounts
// atomically. Counterparts resolve by pair id; rows predating pair ids fall
// back to a deterministic closest match on account pair, amount, and date.
func (s *ledgerService) DeleteTransaction(userID, transactionID uint) error {
	txn, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		counterpart := s.findCounterpart(tx, txn)

		target := txn
		if counterpart != nil && isSecondaryLeg(txn) {
			target = counterpart
		}
		if err := s.reverseEffect(tx, target); err != nil {
			return err
		}

		if err := tx.Delete(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if counterpart != nil {
			if err := tx.Delete(counterpart).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
}

// PayLoanEMIs applies a bulk payment of n EMIs against a loan, debiting the
// loan's linked bank account. The whole operation is rejected before any
// mutation when n exceeds the remaining months or the bank balance cannot
// cover it.
func (s *ledgerService) PayLoanEMIs(userID, loanID uint, numberOfEMIs int) (*models.Transaction, error) {
	if numberOfEMIs < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "number of EMIs must be at least 1")
	}

	var txn *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		loan, err := s.lockLoan(tx, userID, loanID)
		if err != nil {
			return err
		}
		if numberOfEMIs > loan.RemainingMonths {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "number of EMIs exceeds remaining months")
		}
		if loan.LinkedAccountID == nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "loan has no linked bank account")
		}

		total := money.Round2(loan.EMIAmount * float64(numberOfEMIs))
		bank, err := s.lockBankAccount(tx, userID, *loan.LinkedAccountID)
		if err != nil {
			return err
		}
		if bank.Balance < total {
			return apperrors.ErrInsufficientFunds
		}

		bankType := models.LedgerAccountBank
		input := TransactionInput{
			AccountID:         loan.ID,
			AccountType:       models.LedgerAccountLoan,
			Type:              models.TransactionTypePayment,
			Amount:            total,
			Category:          models.CategoryLoanEMI,
			Description:       "Bulk EMI payment",
			Date:              time.Now(),
			LinkedAccountID:   loan.LinkedAccountID,
			LinkedAccountType: &bankType,
			EMICount:          numberOfEMIs,
		}
		if err := normalizeInput(&input); err != nil {
			return err
		}
		txn, err = s.createWithinTx(tx, userID, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// GetTransactionByID retrieves a transaction by id for a specific user.
func (s *ledgerService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &txn, nil
}

// GetAccountTransactions retrieves a paginated, filtered list of the
// transactions recorded against one account.
func (s *ledgerService) GetAccountTransactions(userID uint, accountType models.LedgerAccountType, accountID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if err := s.resolveAccount(s.db, userID, accountType, accountID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).
		Where("user_id = ? AND account_id = ? AND account_type = ?", userID, accountID, accountType)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetReconciliations retrieves the user's reconciliation audit records,
// newest first.
func (s *ledgerService) GetReconciliations(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Reconciliation], error) {
	page.Defaults()

	base := s.db.Model(&models.Reconciliation{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var records []models.Reconciliation
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC, id DESC").
		Find(&records).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(records, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// normalizeInput validates a transaction intent and fills defaults. All
// validation happens before any state mutation.
func normalizeInput(input *TransactionInput) error {
	if input.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if input.AccountID == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	switch input.AccountType {
	case models.LedgerAccountBank:
		switch input.Type {
		case models.TransactionTypeIncome, models.TransactionTypeExpense, models.TransactionTypePayment:
		default:
			return apperrors.ErrInvalidTransactionType
		}
		if input.LinkedAccountID != nil && !models.IsLinkedLegCategory(input.Category) {
			return apperrors.WithMessage(apperrors.ErrInvalidInput,
				"a linked bank transaction must use a transfer category")
		}
	case models.LedgerAccountCreditCard:
		switch input.Type {
		case models.TransactionTypeExpense, models.TransactionTypePayment:
		default:
			return apperrors.ErrInvalidTransactionType
		}
	case models.LedgerAccountLoan:
		if input.Type != models.TransactionTypePayment {
			return apperrors.ErrInvalidTransactionType
		}
		if input.EMICount < 1 {
			input.EMICount = 1
		}
	default:
		return apperrors.ErrInvalidAccountType
	}

	if input.AccountType != models.LedgerAccountLoan {
		input.EMICount = 0
	}

	if input.LinkedAccountID != nil {
		if input.LinkedAccountType == nil {
			bank := models.LedgerAccountBank
			input.LinkedAccountType = &bank
		}
		if input.AccountType != models.LedgerAccountBank && *input.LinkedAccountType != models.LedgerAccountBank {
			return apperrors.WithMessage(apperrors.ErrInvalidInput,
				"card and loan payments can only be linked to a bank account")
		}
		if input.AccountType == models.LedgerAccountBank {
			if *input.LinkedAccountType != models.LedgerAccountBank {
				return apperrors.WithMessage(apperrors.ErrInvalidInput,
					"a bank transfer can only target another bank account")
			}
			if *input.LinkedAccountID == input.AccountID {
				return apperrors.ErrSameAccountTransfer
			}
		}
	}
	return nil
}

// isDualPrimary reports whether a transaction is the caller-facing leg of a
// dual transfer, whose application moves money on both accounts.
func isDualPrimary(txn *models.Transaction) bool {
	if txn.LinkedAccountID == nil {
		return false
	}
	switch txn.AccountType {
	case models.LedgerAccountCreditCard, models.LedgerAccountLoan:
		return txn.Type == models.TransactionTypePayment
	case models.LedgerAccountBank:
		return txn.Type == models.TransactionTypeExpense && txn.Category == models.CategoryTransfer
	}
	return false
}

// isSecondaryLeg reports whether a bank-side row is the counterpart leg of a
// dual transfer whose balance effect the primary leg already applied. Such
// rows exist for history and replay but are no-ops at application time:
// callers must not double-apply them. A standalone bank expense in one of
// the transfer categories with no linked account is a normal expense.
func isSecondaryLeg(txn *models.Transaction) bool {
	if txn.AccountType != models.LedgerAccountBank || txn.LinkedAccountID == nil {
		return false
	}
	switch txn.Type {
	case models.TransactionTypeIncome:
		return txn.Category == models.CategoryTransfer
	case models.TransactionTypeExpense, models.TransactionTypePayment:
		return txn.Category == models.CategoryCardPayment || txn.Category == models.CategoryLoanEMI
	}
	return false
}

// buildSecondaryLeg constructs the engine-created counterpart row for a
// primary dual-transfer leg, or nil when the transaction stands alone.
func buildSecondaryLeg(primary *models.Transaction) *models.Transaction {
	if !isDualPrimary(primary) {
		return nil
	}

	leg := &models.Transaction{
		UserID:            primary.UserID,
		AccountID:         *primary.LinkedAccountID,
		AccountType:       models.LedgerAccountBank,
		Amount:            primary.Amount,
		Description:       primary.Description,
		Date:              primary.Date,
		LinkedAccountID:   &primary.AccountID,
		LinkedAccountType: &primary.AccountType,
		PairID:            primary.PairID,
	}

	switch primary.AccountType {
	case models.LedgerAccountCreditCard:
		leg.Type = models.TransactionTypeExpense
		leg.Category = models.CategoryCardPayment
	case models.LedgerAccountLoan:
		leg.Type = models.TransactionTypeExpense
		leg.Category = models.CategoryLoanEMI
	case models.LedgerAccountBank:
		leg.Type = models.TransactionTypeIncome
		leg.Category = models.CategoryTransfer
	}
	return leg
}

// applyEffect applies a transaction's balance effect to the account(s) it
// touches, emitting a reconciliation record for linked card and loan
// payments. Secondary dual-transfer legs apply nothing.
func (s *ledgerService) applyEffect(tx *gorm.DB, txn *models.Transaction) error {
	switch txn.AccountType {
	case models.LedgerAccountBank:
		if isSecondaryLeg(txn) {
			return nil
		}
		account, err := s.lockBankAccount(tx, txn.UserID, txn.AccountID)
		if err != nil {
			return err
		}
		switch txn.Type {
		case models.TransactionTypeIncome:
			account.Balance = money.Round2(account.Balance + txn.Amount)
		case models.TransactionTypeExpense, models.TransactionTypePayment:
			account.Balance = money.Round2(account.Balance - txn.Amount)
		}
		if err := tx.Save(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if isDualPrimary(txn) {
			dest, err := s.lockBankAccount(tx, txn.UserID, *txn.LinkedAccountID)
			if err != nil {
				return err
			}
			dest.Balance = money.Round2(dest.Balance + txn.Amount)
			if err := tx.Save(dest).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil

	case models.LedgerAccountCreditCard:
		card, err := s.lockCreditCard(tx, txn.UserID, txn.AccountID)
		if err != nil {
			return err
		}
		switch txn.Type {
		case models.TransactionTypeExpense:
			card.CurrentBalance = money.Round2(card.CurrentBalance + txn.Amount)
		case models.TransactionTypePayment:
			card.CurrentBalance = money.NonNegative(card.CurrentBalance - txn.Amount)
		}
		card.Recompute()
		if err := tx.Save(card).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if txn.Type == models.TransactionTypePayment && txn.LinkedAccountID != nil {
			return s.debitLinkedBank(tx, txn, "Credit card payment")
		}
		return nil

	case models.LedgerAccountLoan:
		loan, err := s.lockLoan(tx, txn.UserID, txn.AccountID)
		if err != nil {
			return err
		}
		loan.RemainingAmount = money.NonNegative(loan.RemainingAmount - txn.Amount)
		loan.RemainingMonths = amortization.RemainingMonths(loan.RemainingAmount, loan.PrincipalAmount, loan.TenureMonths)
		loan.TotalEMIsPaid += txn.EMICount
		if err := tx.Save(loan).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if txn.LinkedAccountID != nil {
			return s.debitLinkedBank(tx, txn, "Loan EMI payment")
		}
		return nil
	}
	return apperrors.ErrInvalidAccountType
}

// reverseEffect undoes a transaction's balance effect, mirroring applyEffect
// case by case. A failed reversal (for example, the account a historical
// transaction referenced was deleted) aborts the whole operation: skipping
// it would permanently desynchronize a balance.
func (s *ledgerService) reverseEffect(tx *gorm.DB, txn *models.Transaction) error {
	switch txn.AccountType {
	case models.LedgerAccountBank:
		if isSecondaryLeg(txn) {
			return nil
		}
		account, err := s.lockBankAccount(tx, txn.UserID, txn.AccountID)
		if err != nil {
			return err
		}
		switch txn.Type {
		case models.TransactionTypeIncome:
			account.Balance = money.Round2(account.Balance - txn.Amount)
		case models.TransactionTypeExpense, models.TransactionTypePayment:
			account.Balance = money.Round2(account.Balance + txn.Amount)
		}
		if err := tx.Save(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if isDualPrimary(txn) {
			dest, err := s.lockBankAccount(tx, txn.UserID, *txn.LinkedAccountID)
			if err != nil {
				return err
			}
			dest.Balance = money.Round2(dest.Balance - txn.Amount)
			if err := tx.Save(dest).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil

	case models.LedgerAccountCreditCard:
		card, err := s.lockCreditCard(tx, txn.UserID, txn.AccountID)
		if err != nil {
			return err
		}
		switch txn.Type {
		case models.TransactionTypeExpense:
			card.CurrentBalance = money.NonNegative(card.CurrentBalance - txn.Amount)
		case models.TransactionTypePayment:
			card.CurrentBalance = money.Round2(card.CurrentBalance + txn.Amount)
		}
		card.Recompute()
		if err := tx.Save(card).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if txn.Type == models.TransactionTypePayment && txn.LinkedAccountID != nil {
			return s.creditLinkedBank(tx, txn)
		}
		return nil

	case models.LedgerAccountLoan:
		loan, err := s.lockLoan(tx, txn.UserID, txn.AccountID)
		if err != nil {
			return err
		}
		restored := money.Round2(loan.RemainingAmount + txn.Amount)
		if restored > loan.PrincipalAmount {
			restored = loan.PrincipalAmount
		}
		loan.RemainingAmount = restored
		loan.RemainingMonths = amortization.RemainingMonths(loan.RemainingAmount, loan.PrincipalAmount, loan.TenureMonths)
		loan.TotalEMIsPaid -= txn.EMICount
		if loan.TotalEMIsPaid < 0 {
			loan.TotalEMIsPaid = 0
		}
		if err := tx.Save(loan).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if txn.LinkedAccountID != nil {
			return s.creditLinkedBank(tx, txn)
		}
		return nil
	}
	return apperrors.ErrInvalidAccountType
}

// debitLinkedBank debits the linked bank account of a card or loan payment
// and records the reconciliation audit entry.
func (s *ledgerService) debitLinkedBank(tx *gorm.DB, txn *models.Transaction, description string) error {
	bank, err := s.lockBankAccount(tx, txn.UserID, *txn.LinkedAccountID)
	if err != nil {
		return err
	}
	bank.Balance = money.Round2(bank.Balance - txn.Amount)
	if err := tx.Save(bank).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	record := &models.Reconciliation{
		UserID:          txn.UserID,
		FromAccountID:   bank.ID,
		FromAccountType: models.LedgerAccountBank,
		ToAccountID:     txn.AccountID,
		ToAccountType:   txn.AccountType,
		Amount:          txn.Amount,
		Date:            txn.Date,
		Description:     description,
	}
	if err := tx.Create(record).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// creditLinkedBank returns a reversed payment's amount to the linked bank
// account. The reconciliation record of the original payment stays: the
// audit log is append-only.
func (s *ledgerService) creditLinkedBank(tx *gorm.DB, txn *models.Transaction) error {
	bank, err := s.lockBankAccount(tx, txn.UserID, *txn.LinkedAccountID)
	if err != nil {
		return err
	}
	bank.Balance = money.Round2(bank.Balance + txn.Amount)
	if err := tx.Save(bank).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// findCounterpart locates the other leg of a dual transfer, preferring the
// explicit pair id and falling back to the legacy heuristic.
func (s *ledgerService) findCounterpart(tx *gorm.DB, txn *models.Transaction) *models.Transaction {
	if txn.PairID != "" {
		return s.findPairLeg(tx, txn)
	}
	if txn.LinkedAccountID == nil {
		return nil
	}
	return s.findHeuristicCounterpart(tx, txn)
}

// findPairLeg finds the row sharing a transaction's pair id.
func (s *ledgerService) findPairLeg(tx *gorm.DB, txn *models.Transaction) *models.Transaction {
	var leg models.Transaction
	err := tx.Where("pair_id = ? AND id <> ? AND user_id = ?", txn.PairID, txn.ID, txn.UserID).
		First(&leg).Error
	if err != nil {
		return nil
	}
	return &leg
}

// findHeuristicCounterpart matches legacy dual-transfer legs by the mirrored
// account pair, ranking candidates by amount closeness, then date closeness,
// then id. Rows carrying a pair id are excluded; those resolve exactly via
// findPairLeg. Zero candidates is a valid single-leg transaction; more than one
// resolves deterministically to the closest and logs the ambiguity.
func (s *ledgerService) findHeuristicCounterpart(tx *gorm.DB, txn *models.Transaction) *models.Transaction {
	var candidates []models.Transaction
	q := tx.Where("user_id = ? AND account_id = ? AND linked_account_id = ? AND pair_id = ''",
		txn.UserID, *txn.LinkedAccountID, txn.AccountID)
	if txn.LinkedAccountType != nil {
		q = q.Where("account_type = ?", *txn.LinkedAccountType)
	}
	if err := q.Find(&candidates).Error; err != nil || len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		di, dj := counterpartDistance(txn, &candidates[i]), counterpartDistance(txn, &candidates[j])
		if di.amount != dj.amount {
			return di.amount < dj.amount
		}
		if di.date != dj.date {
			return di.date < dj.date
		}
		return candidates[i].ID < candidates[j].ID
	})

	best := &candidates[0]
	dist := counterpartDistance(txn, best)
	if len(candidates) > 1 || dist.amount >= money.CentTolerance || dist.date != 0 {
		logger.Get().Warnw("ambiguous linked transaction counterpart",
			"code", apperrors.ErrAmbiguousLink.Code,
			"transaction_id", txn.ID,
			"chosen_id", best.ID,
			"candidates", len(candidates),
			"amount_distance", dist.amount,
		)
	}
	return best
}

type legDistance struct {
	amount float64
	date   time.Duration
}

func counterpartDistance(txn, candidate *models.Transaction) legDistance {
	amountDiff := txn.Amount - candidate.Amount
	if amountDiff < 0 {
		amountDiff = -amountDiff
	}
	dateDiff := txn.Date.Sub(candidate.Date)
	if dateDiff < 0 {
		dateDiff = -dateDiff
	}
	return legDistance{amount: amountDiff, date: dateDiff}
}

// resolveAccount verifies that an account of the stated type exists for the
// user before anything is persisted.
func (s *ledgerService) resolveAccount(tx *gorm.DB, userID uint, accountType models.LedgerAccountType, accountID uint) error {
	var err error
	switch accountType {
	case models.LedgerAccountBank:
		err = tx.Where("id = ? AND user_id = ?", accountID, userID).First(&models.BankAccount{}).Error
	case models.LedgerAccountCreditCard:
		err = tx.Where("id = ? AND user_id = ?", accountID, userID).First(&models.CreditCard{}).Error
	case models.LedgerAccountLoan:
		err = tx.Where("id = ? AND user_id = ?", accountID, userID).First(&models.Loan{}).Error
	default:
		return apperrors.ErrInvalidAccountType
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAccountNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// forUpdate adds a row lock on dialects that support it. SQLite, used by
// the test suite, serializes writers on its own and rejects FOR UPDATE.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (s *ledgerService) lockBankAccount(tx *gorm.DB, userID, accountID uint) (*models.BankAccount, error) {
	var account models.BankAccount
	err := forUpdate(tx).
		Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

func (s *ledgerService) lockCreditCard(tx *gorm.DB, userID, cardID uint) (*models.CreditCard, error) {
	var card models.CreditCard
	err := forUpdate(tx).
		Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &card, nil
}

func (s *ledgerService) lockLoan(tx *gorm.DB, userID, loanID uint) (*models.Loan, error) {
	var loan models.Loan
	err := forUpdate(tx).
		Where("id = ? AND user_id = ?", loanID, userID).First(&loan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &loan, nil
}
