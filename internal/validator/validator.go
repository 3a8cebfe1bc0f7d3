// Package validator registers custom validation functions with Gin's
// binding engine for this service's enums.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("bank_account_type", validateBankAccountType)
		_ = v.RegisterValidation("ledger_account_type", validateLedgerAccountType)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("payment_mode", validatePaymentMode)
		_ = v.RegisterValidation("split_type", validateSplitType)
		_ = v.RegisterValidation("shared_transaction_type", validateSharedTransactionType)
		_ = v.RegisterValidation("prepay_option", validatePrepayOption)
		_ = v.RegisterValidation("due_day", validateDueDay)
	}
}

func validateBankAccountType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "savings", "current", "cash":
		return true
	}
	return false
}

func validateLedgerAccountType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "bank", "credit_card", "loan":
		return true
	}
	return false
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "expense", "payment", "income":
		return true
	}
	return false
}

func validatePaymentMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "auto", "manual":
		return true
	}
	return false
}

func validateSplitType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "equal", "custom", "percentage":
		return true
	}
	return false
}

func validateSharedTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "expense", "income", "settlement":
		return true
	}
	return false
}

func validatePrepayOption(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "reduce_emi", "reduce_tenure":
		return true
	}
	return false
}

func validateDueDay(fl validator.FieldLevel) bool {
	day := fl.Field().Int()
	return day >= 1 && day <= 31
}
