package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/amortization"
	apperrors "github.com/syednasirayub17/expenses-tracker-2-sub000/internal/errors"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/services"
)

// LoanHandler handles loan payment and amortization calculator requests.
type LoanHandler struct {
	accountService services.AccountServicer
	ledgerService  services.LedgerServicer
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(accountService services.AccountServicer, ledgerService services.LedgerServicer) *LoanHandler {
	return &LoanHandler{accountService: accountService, ledgerService: ledgerService}
}

// PayEMIsRequest represents the payload for a bulk EMI payment.
type PayEMIsRequest struct {
	NumberOfEMIs int `json:"number_of_emis" binding:"required,gte=1"`
}

// CalculatorRequest represents the loan terms for the EMI calculator.
type CalculatorRequest struct {
	PrincipalAmount float64 `json:"principal_amount" binding:"required,gt=0"`
	InterestRate    float64 `json:"interest_rate" binding:"gte=0"`
	TenureMonths    int     `json:"tenure_months" binding:"required,gte=1"`
}

// PrepaymentRequest represents the payload for a prepayment what-if.
type PrepaymentRequest struct {
	PrincipalAmount float64                   `json:"principal_amount" binding:"required,gt=0"`
	InterestRate    float64                   `json:"interest_rate" binding:"gte=0"`
	TenureMonths    int                       `json:"tenure_months" binding:"required,gte=1"`
	PrepayAmount    float64                   `json:"prepay_amount" binding:"required,gt=0"`
	Option          amortization.PrepayOption `json:"option" binding:"required,prepay_option"`
}

// calculatorError maps amortization package errors onto the API error
// envelope.
func calculatorError(err error) error {
	switch {
	case errors.Is(err, amortization.ErrInvalidTerms):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "principal and tenure must be positive, rate non-negative")
	case errors.Is(err, amortization.ErrPrepaymentTooLarge):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "prepayment must be smaller than the outstanding principal")
	case errors.Is(err, amortization.ErrEMITooSmall):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "installment does not cover the monthly interest")
	case errors.Is(err, amortization.ErrUnknownOption):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "option must be reduce_emi or reduce_tenure")
	default:
		return err
	}
}

// PayEMIs handles a bulk EMI payment against a loan
// @Summary     Pay loan EMIs
// @Description Pay one or more EMIs from the loan's linked bank account in a single transaction
// @Tags        loans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Loan ID"
// @Param       request body PayEMIsRequest true "Number of EMIs"
// @Success     201 {object} models.Transaction "Payment transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient funds"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Loan not found"
// @Router      /loans/{id}/emis [post]
func (h *LoanHandler) PayEMIs(c *gin.Context) {
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

	var req PayEMIsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.ledgerService.PayLoanEMIs(userID, loanID, req.NumberOfEMIs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// GetSchedule handles amortization schedule requests for a stored loan
// @Summary     Get loan schedule
// @Description Get the month-by-month amortization schedule for a loan
// @Tags        loans
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Loan ID"
// @Success     200 {array} amortization.ScheduleEntry "Schedule"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Loan not found"
// @Router      /loans/{id}/schedule [get]
func (h *LoanHandler) GetSchedule(c *gin.Context) {
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

	schedule, err := amortization.GenerateSchedule(loan.PrincipalAmount, loan.InterestRate, loan.TenureMonths)
	if err != nil {
		respondWithError(c, calculatorError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

// Calculate handles standalone EMI calculations
// @Summary     EMI calculator
// @Description Compute the EMI, total interest, and total payment for loan terms
// @Tags        loans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CalculatorRequest true "Loan terms"
// @Success     200 {object} amortization.EMIResult "Calculation result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /loans/calculator [post]
func (h *LoanHandler) Calculate(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req CalculatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := amortization.CalculateEMI(req.PrincipalAmount, req.InterestRate, req.TenureMonths)
	if err != nil {
		respondWithError(c, calculatorError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// Prepayment handles prepayment what-if calculations
// @Summary     Prepayment impact
// @Description Compute the new EMI or tenure, and the interest saved, for a lump-sum prepayment
// @Tags        loans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PrepaymentRequest true "Loan terms and prepayment"
// @Success     200 {object} amortization.PrepaymentResult "Prepayment impact"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /loans/prepayment [post]
func (h *LoanHandler) Prepayment(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req PrepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := amortization.PrepaymentImpact(req.PrincipalAmount, req.InterestRate, req.TenureMonths, req.PrepayAmount, req.Option)
	if err != nil {
		respondWithError(c, calculatorError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
