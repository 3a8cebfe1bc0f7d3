// Package errors provides the application error types used across the
// service layer. Every error returned to a handler should be an AppError so
// that responses stay consistent and internal details never leak to clients.
package errors

import "net/http"

// AppError is a structured application error carrying a stable error code,
// a human-readable message, an HTTP status code, and an optional wrapped
// internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap returns a copy of sentinel that wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage returns a copy of sentinel with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Account errors.
var (
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrLoanNotFound    = &AppError{Code: "LOAN_NOT_FOUND", Message: "Loan not found", StatusCode: http.StatusNotFound}
)

// Ledger errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
	ErrInvalidAccountType     = &AppError{Code: "INVALID_ACCOUNT_TYPE", Message: "Unsupported account type", StatusCode: http.StatusBadRequest}
	ErrInsufficientFunds      = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Insufficient funds in source account", StatusCode: http.StatusBadRequest}
	ErrAmbiguousLink          = &AppError{Code: "AMBIGUOUS_LINK", Message: "Linked transaction counterpart is ambiguous", StatusCode: http.StatusConflict}
	ErrSameAccountTransfer    = &AppError{Code: "SAME_ACCOUNT_TRANSFER", Message: "Cannot transfer to the same account", StatusCode: http.StatusBadRequest}
)

// Wallet errors.
var (
	ErrWalletNotFound      = &AppError{Code: "WALLET_NOT_FOUND", Message: "Wallet not found", StatusCode: http.StatusNotFound}
	ErrNotWalletMember     = &AppError{Code: "NOT_WALLET_MEMBER", Message: "You are not a member of this wallet", StatusCode: http.StatusForbidden}
	ErrAlreadyWalletMember = &AppError{Code: "ALREADY_WALLET_MEMBER", Message: "Already a member of this wallet", StatusCode: http.StatusConflict}
	ErrInvalidInviteCode   = &AppError{Code: "INVALID_INVITE_CODE", Message: "Invalid invite code", StatusCode: http.StatusNotFound}
	ErrInvalidSplit        = &AppError{Code: "INVALID_SPLIT", Message: "Split amounts do not add up to the transaction amount", StatusCode: http.StatusBadRequest}
	ErrSharedTxnNotFound   = &AppError{Code: "SHARED_TRANSACTION_NOT_FOUND", Message: "Shared transaction not found", StatusCode: http.StatusNotFound}
	ErrWalletOwnerOnly     = &AppError{Code: "WALLET_OWNER_ONLY", Message: "Only the wallet owner can do this", StatusCode: http.StatusForbidden}
	ErrSettlementNotMember = &AppError{Code: "SETTLEMENT_NOT_MEMBER", Message: "Settlement parties must be wallet members", StatusCode: http.StatusBadRequest}
)
