package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/syednasirayub17/expenses-tracker-2-sub000/internal/errors"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/models"
)

func setupLoanRouter(handler *LoanHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/loans/:id/emis", handler.PayEMIs)
	auth.GET("/loans/:id/schedule", handler.GetSchedule)
	auth.POST("/loans/calculator", handler.Calculate)
	auth.POST("/loans/prepayment", handler.Prepayment)
	return r
}

func TestLoanHandler_PayEMIs(t *testing.T) {
	t.Run("returns 201 with payment transaction", func(t *testing.T) {
		var gotN int
		ledgerSvc := &mockLedgerService{
			payLoanEMIsFn: func(userID, loanID uint, numberOfEMIs int) (*models.Transaction, error) {
				gotN = numberOfEMIs
				return &models.Transaction{
					Base:        models.Base{ID: 1},
					UserID:      userID,
					AccountID:   loanID,
					AccountType: models.LedgerAccountLoan,
					Type:        models.TransactionTypePayment,
					Amount:      26374.77,
				}, nil
			},
		}
		handler := NewLoanHandler(&mockAccountService{}, ledgerSvc)
		r := setupLoanRouter(handler)

		rec := doRequest(r, "POST", "/loans/4/emis", `{"number_of_emis":3}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotN != 3 {
			t.Errorf("expected 3 EMIs forwarded, got %d", gotN)
		}
	})

	t.Run("returns 400 for zero EMIs", func(t *testing.T) {
		handler := NewLoanHandler(&mockAccountService{}, &mockLedgerService{})
		r := setupLoanRouter(handler)

		rec := doRequest(r, "POST", "/loans/4/emis", `{"number_of_emis":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on insufficient funds", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			payLoanEMIsFn: func(uint, uint, int) (*models.Transaction, error) {
				return nil, apperrors.ErrInsufficientFunds
			},
		}
		handler := NewLoanHandler(&mockAccountService{}, ledgerSvc)
		r := setupLoanRouter(handler)

		rec := doRequest(r, "POST", "/loans/4/emis", `{"number_of_emis":2}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INSUFFICIENT_FUNDS")
	})

	t.Run("returns 404 for missing loan", func(t *testing.T) {
		ledgerSvc := &mockLedgerService{
			payLoanEMIsFn: func(uint, uint, int) (*models.Transaction, error) {
				return nil, apperrors.ErrLoanNotFound
			},
		}
		handler := NewLoanHandler(&mockAccountService{}, ledgerSvc)
		r := setupLoanRouter(handler)

		rec := doRequest(r, "POST", "/loans/99/emis", `{"number_of_emis":1}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestLoanHandler_GetSchedule(t *testing.T) {
	t.Run("returns full schedule for the loan terms", func(t *testing.T) {
		acctSvc := &mockAccountService{
			getLoanByIDFn: func(userID, loanID uint) (*models.Loan, error) {
				return &models.Loan{
					Base:            models.Base{ID: loanID},
					UserID:          userID,
					PrincipalAmount: 100000,
					InterestRate:    10,
					TenureMonths:    12,
				}, nil
			},
		}
		handler := NewLoanHandler(acctSvc, &mockLedgerService{})
		r := setupLoanRouter(handler)

		rec := doRequest(r, "GET", "/loans/4/schedule", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		schedule, ok := result["schedule"].([]interface{})
		if !ok {
			t.Fatalf("expected schedule array, got: %v", result)
		}
		if len(schedule) != 12 {
			t.Errorf("expected 12 entries, got %d", len(schedule))
		}
		last, ok := schedule[11].(map[string]interface{})
		if !ok {
			t.Fatalf("expected schedule entry object, got: %v", schedule[11])
		}
		if last["ending_balance"] != 0.0 {
			t.Errorf("expected final balance 0, got %v", last["ending_balance"])
		}
	})

	t.Run("returns 404 for missing loan", func(t *testing.T) {
		acctSvc := &mockAccountService{
			getLoanByIDFn: func(uint, uint) (*models.Loan, error) {
				return nil, apperrors.ErrLoanNotFound
			},
		}
		handler := NewLoanHandler(acctSvc, &mockLedgerService{})
		r := setupLoanRouter(handler)

		rec := doRequest(r, "GET", "/loans/99/schedule", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "LOAN_NOT_FOUND")
	})
}

func TestLoanHandler_Calculate(t *testing.T) {
	t.Run("returns EMI for valid terms", func(t *testing.T) {
		handler := NewLoanHandler(&mockAccountService{}, &mockLedgerService{})
		r := setupLoanRouter(handler)

		rec := doRequest(r, "POST", "/loans/calculator",
			`{"principal_amount":100000,"interest_rate":10,"tenure_months":12}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		calc, ok := result["result"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected result object, got: %v", result)
		}
		if calc["emi"] != 8791.59 {
			t.Errorf("expected EMI 8791.59, got %v", calc["emi"])
		}
	})

	t.Run("returns 400 for zero tenure", func(t *testing.T) {
		handler := NewLoanHandler(&mockAccountService{}, &mockLedgerService{})
		r := setupLoanRouter(handler)

		rec := doRequest(r, "POST", "/loans/calculator",
			`{"principal_amount":100000,"interest_rate":10,"tenure_months":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestLoanHandler_Prepayment(t *testing.T) {
	t.Run("reduce_tenure shortens the loan", func(t *testing.T) {
		handler := NewLoanHandler(&mockAccountService{}, &mockLedgerService{})
		r := setupLoanRouter(handler)

		rec := doRequest(r, "POST", "/loans/prepayment",
			`{"principal_amount":100000,"interest_rate":10,"tenure_months":12,"prepay_amount":30000,"option":"reduce_tenure"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		impact, ok := result["result"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected result object, got: %v", result)
		}
		months, ok := impact["new_tenure_months"].(float64)
		if !ok || months >= 12 {
			t.Errorf("expected shortened tenure, got %v", impact["new_tenure_months"])
		}
		saved, ok := impact["interest_saved"].(float64)
		if !ok || saved <= 0 {
			t.Errorf("expected positive interest saved, got %v", impact["interest_saved"])
		}
	})

	t.Run("returns 400 for unknown option", func(t *testing.T) {
		handler := NewLoanHandler(&mockAccountService{}, &mockLedgerService{})
		r := setupLoanRouter(handler)

		rec := doRequest(r, "POST", "/loans/prepayment",
			`{"principal_amount":100000,"interest_rate":10,"tenure_months":12,"prepay_amount":30000,"option":"skip_payments"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 when prepayment exceeds principal", func(t *testing.T) {
		handler := NewLoanHandler(&mockAccountService{}, &mockLedgerService{})
		r := setupLoanRouter(handler)

		rec := doRequest(r, "POST", "/loans/prepayment",
			`{"principal_amount":100000,"interest_rate":10,"tenure_months":12,"prepay_amount":100000,"option":"reduce_emi"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}
