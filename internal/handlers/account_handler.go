package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/syednasirayub17/expenses-tracker-2-sub000/internal/errors"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/models"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/pagination"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/services"
)

// AccountHandler handles account-related requests across the three account
// collections.
type AccountHandler struct {
	accountService services.AccountServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateBankAccountRequest represents the request payload for creating a bank account
type CreateBankAccountRequest struct {
	Name           string                 `json:"name" binding:"required,min=1,max=100"`
	AccountNumber  string                 `json:"account_number" binding:"max=50"`
	BankName       string                 `json:"bank_name" binding:"max=100"`
	Type           models.BankAccountType `json:"type" binding:"required,bank_account_type"`
	OpeningBalance float64                `json:"opening_balance" binding:"gte=0"`
}

// UpdateBankAccountRequest represents the request payload for updating a bank
// account. Balance is deliberately not bindable.
type UpdateBankAccountRequest struct {
	Name          *string                 `json:"name" binding:"omitempty,min=1,max=100"`
	AccountNumber *string                 `json:"account_number" binding:"omitempty,max=50"`
	BankName      *string                 `json:"bank_name" binding:"omitempty,max=100"`
	Type          *models.BankAccountType `json:"type" binding:"omitempty,bank_account_type"`
}

// CreateCreditCardRequest represents the request payload for creating a credit card
type CreateCreditCardRequest struct {
	Name            string  `json:"name" binding:"required,min=1,max=100"`
	CardNumber      string  `json:"card_number" binding:"max=25"`
	CreditLimit     float64 `json:"credit_limit" binding:"gte=0"`
	DueDay          int     `json:"due_day" binding:"required,due_day"`
	LinkedAccountID *uint   `json:"linked_account_id"`
}

// UpdateCreditCardRequest represents the request payload for updating a
// credit card. CurrentBalance and AvailableCredit are not bindable.
type UpdateCreditCardRequest struct {
	Name            *string  `json:"name" binding:"omitempty,min=1,max=100"`
	CardNumber      *string  `json:"card_number" binding:"omitempty,max=25"`
	CreditLimit     *float64 `json:"credit_limit" binding:"omitempty,gte=0"`
	DueDay          *int     `json:"due_day" binding:"omitempty,due_day"`
	LinkedAccountID *uint    `json:"linked_account_id"`
}

// CreateLoanRequest represents the request payload for creating a loan. When
// EMIAmount is omitted it is derived from the amortization formula.
type CreateLoanRequest struct {
	Name            string                 `json:"name" binding:"required,min=1,max=100"`
	PrincipalAmount float64                `json:"principal_amount" binding:"required,gt=0"`
	InterestRate    float64                `json:"interest_rate" binding:"gte=0,lte=100"`
	TenureMonths    int                    `json:"tenure_months" binding:"required,gt=0"`
	EMIAmount       *float64               `json:"emi_amount" binding:"omitempty,gt=0"`
	PaymentMode     models.LoanPaymentMode `json:"payment_mode" binding:"omitempty,payment_mode"`
	LinkedAccountID *uint                  `json:"linked_account_id"`
}

// UpdateLoanRequest represents the request payload for updating a loan.
// Balance-bearing fields are owned by the ledger and not bindable.
type UpdateLoanRequest struct {
	Name            *string                 `json:"name" binding:"omitempty,min=1,max=100"`
	PaymentMode     *models.LoanPaymentMode `json:"payment_mode" binding:"omitempty,payment_mode"`
	LinkedAccountID *uint                   `json:"linked_account_id"`
}

// CreateBankAccount handles the creation of a new bank account
// @Summary     Create a bank account
// @Description Create a new bank account for the authenticated user
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBankAccountRequest true "Bank account details"
// @Success     201 {object} models.BankAccount "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/banks [post]
func (h *AccountHandler) CreateBankAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.CreateBankAccount(userID, req.Name, req.AccountNumber, req.BankName, req.Type, req.OpeningBalance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetBankAccounts handles listing the user's bank accounts
// @Summary     List bank accounts
// @Description Get a paginated list of the authenticated user's bank accounts
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.BankAccount] "Bank accounts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/banks [get]
func (h *AccountHandler) GetBankAccounts(c *gin.Context) {
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

	accounts, err := h.accountService.GetBankAccounts(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, accounts)
}

// GetBankAccountByID handles retrieval of a single bank account
// @Summary     Get bank account
// @Description Get a bank account by ID
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Account ID"
// @Success     200 {object} models.BankAccount "Bank account"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/banks/{id} [get]
func (h *AccountHandler) GetBankAccountByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetBankAccountByID(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateBankAccount handles metadata updates of a bank account
// @Summary     Update bank account
// @Description Update a bank account's metadata; the balance is ledger-owned
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Account ID"
// @Param       request body UpdateBankAccountRequest true "Fields to update"
// @Success     200 {object} models.BankAccount "Updated account"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/banks/{id} [put]
func (h *AccountHandler) UpdateBankAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.accountService.UpdateBankAccount(userID, accountID, services.BankAccountUpdate{
		Name:          req.Name,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		Type:          req.Type,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteBankAccount handles deletion of a bank account
// @Summary     Delete bank account
// @Description Delete a bank account and its transaction history
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Account ID"
// @Success     200 {object} MessageResponse "Account deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/banks/{id} [delete]
func (h *AccountHandler) DeleteBankAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.accountService.DeleteBankAccount(userID, accountID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

// CreateCreditCard handles the creation of a new credit card
// @Summary     Create a credit card
// @Description Create a new credit card for the authenticated user
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCreditCardRequest true "Credit card details"
// @Success     201 {object} models.CreditCard "Card created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /accounts/cards [post]
func (h *AccountHandler) CreateCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCreditCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	card, err := h.accountService.CreateCreditCard(userID, req.Name, req.CardNumber, req.CreditLimit, req.DueDay, req.LinkedAccountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"card": card})
}

// GetCreditCards handles listing the user's credit cards
// @Summary     List credit cards
// @Description Get a paginated list of the authenticated user's credit cards
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.CreditCard] "Credit cards"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /accounts/cards [get]
func (h *AccountHandler) GetCreditCards(c *gin.Context) {
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

	cards, err := h.accountService.GetCreditCards(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, cards)
}

// GetCreditCardByID handles retrieval of a single credit card
// @Summary     Get credit card
// @Description Get a credit card by ID
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Card ID"
// @Success     200 {object} models.CreditCard "Credit card"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/cards/{id} [get]
func (h *AccountHandler) GetCreditCardByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	card, err := h.accountService.GetCreditCardByID(userID, cardID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": card})
}

// UpdateCreditCard handles metadata updates of a credit card
// @Summary     Update credit card
// @Description Update a credit card's metadata; balances are ledger-owned
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Card ID"
// @Param       request body UpdateCreditCardRequest true "Fields to update"
// @Success     200 {object} models.CreditCard "Updated card"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/cards/{id} [put]
func (h *AccountHandler) UpdateCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCreditCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	card, err := h.accountService.UpdateCreditCard(userID, cardID, services.CreditCardUpdate{
		Name:            req.Name,
		CardNumber:      req.CardNumber,
		CreditLimit:     req.CreditLimit,
		DueDay:          req.DueDay,
		LinkedAccountID: req.LinkedAccountID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"card": card})
}

// DeleteCreditCard handles deletion of a credit card
// @Summary     Delete credit card
// @Description Delete a credit card and its transaction history
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Card ID"
// @Success     200 {object} MessageResponse "Card deleted"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/cards/{id} [delete]
func (h *AccountHandler) DeleteCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.accountService.DeleteCreditCard(userID, cardID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Card deleted successfully"})
}

// CreateLoan handles the creation of a new loan
// @Summary     Create a loan
// @Description Create a new loan; the EMI is derived when not provided
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateLoanRequest true "Loan details"
// @Success     201 {object} models.Loan "Loan created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /loans [post]
func (h *AccountHandler) CreateLoan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	loan, err := h.accountService.CreateLoan(userID, req.Name, req.PrincipalAmount, req.InterestRate,
		req.TenureMonths, req.EMIAmount, req.PaymentMode, req.LinkedAccountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"loan": loan})
}

// GetLoans handles listing the user's loans
// @Summary     List loans
// @Description Get a paginated list of the authenticated user's loans
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Loan] "Loans"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /loans [get]
func (h *AccountHandler) GetLoans(c *gin.Context) {
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

	loans, err := h.accountService.GetLoans(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, loans)
}

// GetLoanByID handles retrieval of a single loan
// @Summary     Get loan
// @Description Get a loan by ID
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Loan ID"
// @Success     200 {object} models.Loan "Loan"
// @Failure     404 {object} ErrorResponse "Loan not found"
// @Router      /loans/{id} [get]
func (h *AccountHandler) GetLoanByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	loan, err := h.accountService.GetLoanByID(userID, loanID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": loan})
}

// UpdateLoan handles metadata updates of a loan
// @Summary     Update loan
// @Description Update a loan's metadata; amortization fields are ledger-owned
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Loan ID"
// @Param       request body UpdateLoanRequest true "Fields to update"
// @Success     200 {object} models.Loan "Updated loan"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Loan not found"
// @Router      /loans/{id} [put]
func (h *AccountHandler) UpdateLoan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	loan, err := h.accountService.UpdateLoan(userID, loanID, services.LoanUpdate{
		Name:            req.Name,
		PaymentMode:     req.PaymentMode,
		LinkedAccountID: req.LinkedAccountID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": loan})
}

// DeleteLoan handles deletion of a loan
// @Summary     Delete loan
// @Description Delete a loan and its transaction history
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Loan ID"
// @Success     200 {object} MessageResponse "Loan deleted"
// @Failure     404 {object} ErrorResponse "Loan not found"
// @Router      /loans/{id} [delete]
func (h *AccountHandler) DeleteLoan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.accountService.DeleteLoan(userID, loanID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Loan deleted successfully"})
}
