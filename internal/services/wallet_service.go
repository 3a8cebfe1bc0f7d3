package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/syednasirayub17/expenses-tracker-2-sub000/internal/errors"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/models"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/money"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/pagination"
)

type walletService struct {
	db *gorm.DB
}

// NewWalletService creates a new WalletServicer.
func NewWalletService(db *gorm.DB) WalletServicer {
	return &walletService{db: db}
}

// CreateWallet creates a shared wallet with the caller as its owner and a
// fresh invite code.
func (s *walletService) CreateWallet(userID uint, name, currency string) (*models.SharedWallet, error) {
	if currency == "" {
		currency = "INR"
	}

	wallet := &models.SharedWallet{
		Name:       name,
		Currency:   currency,
		InviteCode: newInviteCode(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(wallet).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		member := &models.WalletMember{
			WalletID: wallet.ID,
			UserID:   userID,
			Role:     models.WalletRoleOwner,
		}
		if err := tx.Create(member).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		wallet.Members = []models.WalletMember{*member}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

// GetUserWallets retrieves a paginated list of the wallets the user belongs
// to, with members preloaded.
func (s *walletService) GetUserWallets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.SharedWallet], error) {
	page.Defaults()

	base := s.db.Model(&models.SharedWallet{}).
		Joins("JOIN wallet_members ON wallet_members.wallet_id = shared_wallets.id").
		Where("wallet_members.user_id = ? AND wallet_members.deleted_at IS NULL", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var wallets []models.SharedWallet
	if err := base.Preload("Members").
		Scopes(pagination.Paginate(page)).
		Order("shared_wallets.created_at DESC").
		Find(&wallets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(wallets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetWalletByID retrieves a wallet with its members, for members only.
func (s *walletService) GetWalletByID(userID, walletID uint) (*models.SharedWallet, error) {
	if _, err := s.requireMember(userID, walletID); err != nil {
		return nil, err
	}

	var wallet models.SharedWallet
	if err := s.db.Preload("Members").First(&wallet, walletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &wallet, nil
}

// JoinWallet adds the caller as a member of the wallet matching the invite
// code.
func (s *walletService) JoinWallet(userID uint, inviteCode string) (*models.SharedWallet, error) {
	code := strings.ToUpper(strings.TrimSpace(inviteCode))
	if code == "" {
		return nil, apperrors.ErrInvalidInviteCode
	}

	var wallet models.SharedWallet
	if err := s.db.Where("invite_code = ?", code).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidInviteCode
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var existing models.WalletMember
	err := s.db.Where("wallet_id = ? AND user_id = ?", wallet.ID, userID).First(&existing).Error
	if err == nil {
		return nil, apperrors.ErrAlreadyWalletMember
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	member := &models.WalletMember{
		WalletID: wallet.ID,
		UserID:   userID,
		Role:     models.WalletRoleMember,
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Preload("Members").First(&wallet, wallet.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &wallet, nil
}

// DeleteWallet removes a wallet and everything under it. Owner only.
func (s *walletService) DeleteWallet(userID, walletID uint) error {
	member, err := s.requireMember(userID, walletID)
	if err != nil {
		return err
	}
	if member.Role != models.WalletRoleOwner {
		return apperrors.ErrWalletOwnerOnly
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var txnIDs []uint
		if err := tx.Model(&models.SharedTransaction{}).
			Where("wallet_id = ?", walletID).
			Pluck("id", &txnIDs).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if len(txnIDs) > 0 {
			if err := tx.Where("shared_transaction_id IN ?", txnIDs).
				Delete(&models.TransactionSplit{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := tx.Where("wallet_id = ?", walletID).
				Delete(&models.SharedTransaction{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Where("wallet_id = ?", walletID).
			Delete(&models.WalletMember{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&models.SharedWallet{}, walletID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// AddSharedTransaction records a shared expense or income with its splits
// and moves the wallet's pooled balance.
func (s *walletService) AddSharedTransaction(userID, walletID uint, input SharedTransactionInput) (*models.SharedTransaction, error) {
	if _, err := s.requireMember(userID, walletID); err != nil {
		return nil, err
	}
	if input.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	switch input.Type {
	case models.SharedTxnExpense, models.SharedTxnIncome:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "shared transaction type must be expense or income")
	}

	if input.PaidBy == 0 {
		input.PaidBy = userID
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	members, err := s.walletMembers(walletID)
	if err != nil {
		return nil, err
	}
	memberSet := make(map[uint]bool, len(members))
	for _, m := range members {
		memberSet[m.UserID] = true
	}
	if !memberSet[input.PaidBy] {
		return nil, apperrors.ErrNotWalletMember
	}

	shares := input.Shares
	if input.SplitType == models.SplitTypeEqual && len(shares) == 0 {
		shares = make([]SplitShare, len(members))
		for i, m := range members {
			shares[i] = SplitShare{UserID: m.UserID}
		}
	}
	for _, share := range shares {
		if !memberSet[share.UserID] {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidSplit, "split participant is not a wallet member")
		}
	}

	amount := money.Round2(input.Amount)
	splits, err := BuildSplits(amount, input.SplitType, input.PaidBy, shares)
	if err != nil {
		return nil, err
	}

	txn := &models.SharedTransaction{
		WalletID:    walletID,
		Amount:      amount,
		Type:        input.Type,
		PaidBy:      input.PaidBy,
		SplitType:   input.SplitType,
		Description: input.Description,
		Date:        input.Date,
		Splits:      splits,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.adjustWalletBalance(tx, walletID, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// GetWalletTransactions retrieves a wallet's transaction log, newest first,
// with splits preloaded. Members only.
func (s *walletService) GetWalletTransactions(userID, walletID uint, page pagination.PageRequest) (*pagination.PageResponse[models.SharedTransaction], error) {
	if _, err := s.requireMember(userID, walletID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.SharedTransaction{}).Where("wallet_id = ?", walletID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.SharedTransaction
	if err := base.Preload("Splits").
		Scopes(pagination.Paginate(page)).
		Order("date DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetWalletBalances replays the wallet's full history into per-member net
// positions. Members only.
func (s *walletService) GetWalletBalances(userID, walletID uint) (map[uint]float64, error) {
	if _, err := s.requireMember(userID, walletID); err != nil {
		return nil, err
	}

	members, err := s.walletMembers(walletID)
	if err != nil {
		return nil, err
	}

	var transactions []models.SharedTransaction
	if err := s.db.Preload("Splits").
		Where("wallet_id = ?", walletID).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return ComputeBalances(members, transactions), nil
}

// GetSuggestedSettlements computes current balances and produces the greedy
// creditor/debtor matching over them.
func (s *walletService) GetSuggestedSettlements(userID, walletID uint) ([]SettlementInstruction, error) {
	balances, err := s.GetWalletBalances(userID, walletID)
	if err != nil {
		return nil, err
	}
	return SuggestSettlements(balances), nil
}

// RecordSettlement records a direct member-to-member repayment: a settlement
// transaction paid by the caller, split entirely onto the receiver. Replay
// moves the payer's balance up and the receiver's down by the amount and
// leaves the wallet's pooled balance alone.
func (s *walletService) RecordSettlement(userID, walletID, toUserID uint, amount float64, note string) (*models.SharedTransaction, error) {
	if _, err := s.requireMember(userID, walletID); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if toUserID == userID {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "cannot settle with yourself")
	}

	var receiver models.WalletMember
	err := s.db.Where("wallet_id = ? AND user_id = ?", walletID, toUserID).First(&receiver).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSettlementNotMember
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rounded := money.Round2(amount)
	txn := &models.SharedTransaction{
		WalletID:    walletID,
		Amount:      rounded,
		Type:        models.SharedTxnSettlement,
		PaidBy:      userID,
		SplitType:   models.SplitTypeCustom,
		Description: note,
		Date:        time.Now(),
		Splits: []models.TransactionSplit{
			{UserID: toUserID, Amount: rounded, Paid: true},
		},
	}

	if err := s.db.Create(txn).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txn, nil
}

// adjustWalletBalance moves the wallet's pooled balance for an expense or
// income. Settlements are member-to-member and do not touch it.
func (s *walletService) adjustWalletBalance(tx *gorm.DB, walletID uint, txn *models.SharedTransaction) error {
	var delta float64
	switch txn.Type {
	case models.SharedTxnIncome:
		delta = txn.Amount
	case models.SharedTxnExpense:
		delta = -txn.Amount
	default:
		return nil
	}

	var wallet models.SharedWallet
	if err := tx.First(&wallet, walletID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	wallet.Balance = money.Round2(wallet.Balance + delta)
	if err := tx.Save(&wallet).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// requireMember loads the caller's membership row, distinguishing a missing
// wallet from a wallet the caller does not belong to.
func (s *walletService) requireMember(userID, walletID uint) (*models.WalletMember, error) {
	var member models.WalletMember
	err := s.db.Where("wallet_id = ? AND user_id = ?", walletID, userID).First(&member).Error
	if err == nil {
		return &member, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var count int64
	if err := s.db.Model(&models.SharedWallet{}).Where("id = ?", walletID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrWalletNotFound
	}
	return nil, apperrors.ErrNotWalletMember
}

// walletMembers lists every membership row for a wallet.
func (s *walletService) walletMembers(walletID uint) ([]models.WalletMember, error) {
	var members []models.WalletMember
	if err := s.db.Where("wallet_id = ?", walletID).Find(&members).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return members, nil
}

func newInviteCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:8])
}
