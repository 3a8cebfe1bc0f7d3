package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/syednasirayub17/expenses-tracker-2-sub000/internal/errors"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/models"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/pagination"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/services"
)

// TransactionHandler handles ledger transaction requests.
type TransactionHandler struct {
	ledgerService services.LedgerServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerService services.LedgerServicer) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// TransactionRequest represents the payload for creating or updating a
// transaction.
type TransactionRequest struct {
	AccountID         uint                      `json:"account_id" binding:"required"`
	AccountType       models.LedgerAccountType  `json:"account_type" binding:"required,ledger_account_type"`
	Type              models.TransactionType    `json:"type" binding:"required,transaction_type"`
	Amount            float64                   `json:"amount" binding:"required,gt=0"`
	Category          string                    `json:"category" binding:"max=100"`
	Description       string                    `json:"description" binding:"max=500"`
	Date              *string                   `json:"date"`
	LinkedAccountID   *uint                     `json:"linked_account_id"`
	LinkedAccountType *models.LedgerAccountType `json:"linked_account_type" binding:"omitempty,ledger_account_type"`
	EMICount          int                       `json:"emi_count" binding:"omitempty,gte=1"`
}

func (r *TransactionRequest) toInput() (services.TransactionInput, error) {
	input := services.TransactionInput{
		AccountID:         r.AccountID,
		AccountType:       r.AccountType,
		Type:              r.Type,
		Amount:            r.Amount,
		Category:          r.Category,
		Description:       r.Description,
		Date:              time.Now(),
		LinkedAccountID:   r.LinkedAccountID,
		LinkedAccountType: r.LinkedAccountType,
		EMICount:          r.EMICount,
	}
	if r.Date != nil && *r.Date != "" {
		parsed, err := parseFlexibleTime(*r.Date)
		if err != nil {
			return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD")
		}
		input.Date = parsed
	}
	return input, nil
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create transaction
// @Description Record a transaction and apply its balance effect; linked payments and transfers also move the counterpart account
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.ledgerService.ApplyNewTransaction(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetTransactionByID handles retrieval of a single transaction
// @Summary     Get transaction
// @Description Get a transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.ledgerService.GetTransactionByID(userID, txID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles editing a transaction
// @Summary     Update transaction
// @Description Reverse the old balance effect and apply the new one; linked legs move in step
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Param       request body TransactionRequest true "New transaction state"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.ledgerService.UpdateTransaction(userID, txID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles deletion of a transaction
// @Summary     Delete transaction
// @Description Delete a transaction, reversing its balance effect; a dual-transfer leg takes its counterpart with it
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	txID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ledgerService.DeleteTransaction(userID, txID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// GetAccountTransactions handles the filtered listing of one account's
// transactions
// @Summary     List account transactions
// @Description Get a paginated, filtered list of transactions for one account
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       type path string true "Account type" Enums(bank, credit_card, loan)
// @Param       id path int true "Account ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       from_date query string false "From date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date query string false "To date (RFC3339 or YYYY-MM-DD)"
// @Param       type query string false "Transaction type"
// @Param       category query string false "Category"
// @Param       min_amount query number false "Minimum amount"
// @Param       max_amount query number false "Maximum amount"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{type}/{id}/transactions [get]
func (h *TransactionHandler) GetAccountTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountType := models.LedgerAccountType(c.Param("type"))
	switch accountType {
	case models.LedgerAccountBank, models.LedgerAccountCreditCard, models.LedgerAccountLoan:
	default:
		respondWithError(c, apperrors.ErrInvalidAccountType)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactions, err := h.ledgerService.GetAccountTransactions(userID, accountType, accountID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactions)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		switch txType {
		case models.TransactionTypeIncome, models.TransactionTypeExpense, models.TransactionTypePayment:
			filter.Type = &txType
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be income, expense, or payment")
		}
	}

	if v := c.Query("category"); v != "" {
		category := v
		filter.Category = &category
	}

	if v := c.Query("min_amount"); v != "" {
		amt, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid min_amount")
		}
		filter.MinAmount = &amt
	}

	if v := c.Query("max_amount"); v != "" {
		amt, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid max_amount")
		}
		filter.MaxAmount = &amt
	}

	return filter, nil
}

// GetReconciliations handles the listing of cross-account payment audit
// records
// @Summary     List reconciliations
// @Description Get a paginated list of the reconciliation audit records
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Reconciliation] "Reconciliations"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reconciliations [get]
func (h *TransactionHandler) GetReconciliations(c *gin.Context) {
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

	records, err := h.ledgerService.GetReconciliations(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}
