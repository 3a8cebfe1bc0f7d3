package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/syednasirayub17/expenses-tracker-2-sub000/internal/errors"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/models"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/pagination"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/services"
)

// WalletHandler handles shared wallet requests.
type WalletHandler struct {
	walletService services.WalletServicer
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService services.WalletServicer) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// CreateWalletRequest represents the payload for creating a shared wallet.
type CreateWalletRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Currency string `json:"currency" binding:"omitempty,len=3"`
}

// JoinWalletRequest represents the payload for joining a wallet by invite
// code.
type JoinWalletRequest struct {
	InviteCode string `json:"invite_code" binding:"required"`
}

// SplitShareRequest is one participant's share of a shared transaction.
type SplitShareRequest struct {
	UserID     uint    `json:"user_id" binding:"required"`
	Amount     float64 `json:"amount" binding:"omitempty,gt=0"`
	Percentage float64 `json:"percentage" binding:"omitempty,gt=0"`
}

// SharedTransactionRequest represents the payload for recording a shared
// transaction.
type SharedTransactionRequest struct {
	Amount      float64                      `json:"amount" binding:"required,gt=0"`
	Type        models.SharedTransactionType `json:"type" binding:"required,shared_transaction_type"`
	PaidBy      uint                         `json:"paid_by"`
	SplitType   models.SplitType             `json:"split_type" binding:"required,split_type"`
	Description string                       `json:"description" binding:"max=500"`
	Date        *string                      `json:"date"`
	Shares      []SplitShareRequest          `json:"shares" binding:"omitempty,dive"`
}

// RecordSettlementRequest represents the payload for recording a repayment
// between two wallet members.
type RecordSettlementRequest struct {
	ToUserID uint    `json:"to_user_id" binding:"required"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Note     string  `json:"note" binding:"max=500"`
}

// CreateWallet handles the creation of a shared wallet
// @Summary     Create wallet
// @Description Create a shared wallet with the caller as owner and first member
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateWalletRequest true "Wallet details"
// @Success     201 {object} models.SharedWallet "Wallet created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /wallets [post]
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	wallet, err := h.walletService.CreateWallet(userID, req.Name, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"wallet": wallet})
}

// GetWallets handles the listing of the caller's wallets
// @Summary     List wallets
// @Description Get a paginated list of the wallets the caller belongs to
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.SharedWallet] "Wallets"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /wallets [get]
func (h *WalletHandler) GetWallets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	wallets, err := h.walletService.GetUserWallets(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallets)
}

// GetWalletByID handles retrieval of a single wallet
// @Summary     Get wallet
// @Description Get a wallet with its members
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Wallet ID"
// @Success     200 {object} models.SharedWallet "Wallet"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Router      /wallets/{id} [get]
func (h *WalletHandler) GetWalletByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	walletID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	wallet, err := h.walletService.GetWalletByID(userID, walletID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

// JoinWallet handles joining a wallet by invite code
// @Summary     Join wallet
// @Description Join a shared wallet using its invite code
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body JoinWalletRequest true "Invite code"
// @Success     200 {object} models.SharedWallet "Joined wallet"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Invalid invite code"
// @Failure     409 {object} ErrorResponse "Already a member"
// @Router      /wallets/join [post]
func (h *WalletHandler) JoinWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req JoinWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	wallet, err := h.walletService.JoinWallet(userID, req.InviteCode)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

// DeleteWallet handles deletion of a wallet by its owner
// @Summary     Delete wallet
// @Description Delete a wallet and its members, transactions, and splits; owner only
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Wallet ID"
// @Success     200 {object} MessageResponse "Wallet deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Owner only"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Router      /wallets/{id} [delete]
func (h *WalletHandler) DeleteWallet(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	walletID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.walletService.DeleteWallet(userID, walletID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Wallet deleted successfully"})
}

// AddSharedTransaction handles recording a shared transaction
// @Summary     Add shared transaction
// @Description Record a shared expense or income with its split across members
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Wallet ID"
// @Param       request body SharedTransactionRequest true "Transaction details"
// @Success     201 {object} models.SharedTransaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or split"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Router      /wallets/{id}/transactions [post]
func (h *WalletHandler) AddSharedTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	walletID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SharedTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.SharedTransactionInput{
		Amount:      req.Amount,
		Type:        req.Type,
		PaidBy:      req.PaidBy,
		SplitType:   req.SplitType,
		Description: req.Description,
		Date:        time.Now(),
	}
	if req.Date != nil && *req.Date != "" {
		parsed, err := parseFlexibleTime(*req.Date)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		input.Date = parsed
	}
	for _, share := range req.Shares {
		input.Shares = append(input.Shares, services.SplitShare{
			UserID:     share.UserID,
			Amount:     share.Amount,
			Percentage: share.Percentage,
		})
	}

	transaction, err := h.walletService.AddSharedTransaction(userID, walletID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetWalletTransactions handles the listing of a wallet's transactions
// @Summary     List wallet transactions
// @Description Get a paginated list of a wallet's transactions with their splits
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Wallet ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.SharedTransaction] "Transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Router      /wallets/{id}/transactions [get]
func (h *WalletHandler) GetWalletTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	walletID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transactions, err := h.walletService.GetWalletTransactions(userID, walletID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

// GetWalletBalances handles per-member net balance requests
// @Summary     Wallet balances
// @Description Get each member's net position in the wallet; positive means the wallet owes them
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Wallet ID"
// @Success     200 {object} map[string]float64 "Balances keyed by user ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Router      /wallets/{id}/balances [get]
func (h *WalletHandler) GetWalletBalances(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	walletID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	balances, err := h.walletService.GetWalletBalances(userID, walletID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

// GetSuggestedSettlements handles settlement plan requests
// @Summary     Suggested settlements
// @Description Get a minimal list of who-pays-whom instructions that settles the wallet
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Wallet ID"
// @Success     200 {array} services.SettlementInstruction "Settlement instructions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Router      /wallets/{id}/settlements [get]
func (h *WalletHandler) GetSuggestedSettlements(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	walletID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	settlements, err := h.walletService.GetSuggestedSettlements(userID, walletID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settlements": settlements})
}

// RecordSettlement handles recording a repayment between members
// @Summary     Record settlement
// @Description Record a repayment from the caller to another member; moves member balances, not the pooled total
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Wallet ID"
// @Param       request body RecordSettlementRequest true "Settlement details"
// @Success     201 {object} models.SharedTransaction "Settlement recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Router      /wallets/{id}/settlements [post]
func (h *WalletHandler) RecordSettlement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	walletID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	settlement, err := h.walletService.RecordSettlement(userID, walletID, req.ToUserID, req.Amount, req.Note)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"settlement": settlement})
}
