// Package amortization computes EMIs, amortization schedules, and prepayment
// impact for fixed-rate loans using the standard annuity formula. All
// monetary outputs are rounded to two decimal places.
package amortization

import (
	"errors"
	"math"

	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/money"
)

// PrepayOption selects how a prepayment is absorbed.
type PrepayOption string

const (
	// ReduceEMI keeps the tenure and lowers the monthly installment.
	ReduceEMI PrepayOption = "reduce_emi"
	// ReduceTenure keeps the installment and shortens the tenure.
	ReduceTenure PrepayOption = "reduce_tenure"
)

var (
	// ErrInvalidTerms is returned for non-positive principal or tenure, or a
	// negative interest rate.
	ErrInvalidTerms = errors.New("amortization: principal and tenure must be positive, rate non-negative")
	// ErrPrepaymentTooLarge is returned when the prepayment meets or exceeds
	// the outstanding principal.
	ErrPrepaymentTooLarge = errors.New("amortization: prepayment must be smaller than the principal")
	// ErrEMITooSmall is returned when the EMI does not exceed the
	// interest-only payment, so no finite tenure can repay the loan.
	ErrEMITooSmall = errors.New("amortization: installment does not cover monthly interest")
	// ErrUnknownOption is returned for an unrecognized prepayment option.
	ErrUnknownOption = errors.New("amortization: unknown prepayment option")
)

// EMIResult holds the installment and totals for a loan.
type EMIResult struct {
	EMI           float64 `json:"emi"`
	TotalInterest float64 `json:"total_interest"`
	TotalPayment  float64 `json:"total_payment"`
}

// ScheduleEntry is one month of an amortization schedule.
type ScheduleEntry struct {
	Month            int     `json:"month"`
	EMI              float64 `json:"emi"`
	PrincipalPortion float64 `json:"principal_portion"`
	InterestPortion  float64 `json:"interest_portion"`
	EndingBalance    float64 `json:"ending_balance"`
}

// PrepaymentResult describes the effect of a lump-sum prepayment.
type PrepaymentResult struct {
	Option          PrepayOption `json:"option"`
	NewEMI          float64      `json:"new_emi"`
	NewTenureMonths int          `json:"new_tenure_months"`
	InterestSaved   float64      `json:"interest_saved"`
}

// monthlyRate converts an annual percentage rate to a monthly fraction.
func monthlyRate(annualRatePercent float64) float64 {
	return annualRatePercent / 12 / 100
}

// CalculateEMI computes the equated monthly installment for a loan using
// emi = P*r*(1+r)^n / ((1+r)^n - 1). A zero rate degenerates to P/n, since
// the general formula divides by zero at r = 0.
func CalculateEMI(principal, annualRatePercent float64, tenureMonths int) (EMIResult, error) {
	if principal <= 0 || tenureMonths <= 0 || annualRatePercent < 0 {
		return EMIResult{}, ErrInvalidTerms
	}

	var emi float64
	if annualRatePercent == 0 {
		emi = principal / float64(tenureMonths)
	} else {
		r := monthlyRate(annualRatePercent)
		factor := math.Pow(1+r, float64(tenureMonths))
		emi = principal * r * factor / (factor - 1)
	}

	emi = money.Round2(emi)
	totalPayment := money.Round2(emi * float64(tenureMonths))
	return EMIResult{
		EMI:           emi,
		TotalInterest: money.Round2(totalPayment - principal),
		TotalPayment:  totalPayment,
	}, nil
}

// GenerateSchedule produces the month-by-month amortization schedule. The
// final entry absorbs rounding drift: its principal portion clears the
// outstanding balance and the ending balance is clamped at zero.
func GenerateSchedule(principal, annualRatePercent float64, tenureMonths int) ([]ScheduleEntry, error) {
	result, err := CalculateEMI(principal, annualRatePercent, tenureMonths)
	if err != nil {
		return nil, err
	}

	r := monthlyRate(annualRatePercent)
	balance := principal
	schedule := make([]ScheduleEntry, 0, tenureMonths)

	for month := 1; month <= tenureMonths; month++ {
		interest := money.Round2(balance * r)
		principalPortion := money.Round2(result.EMI - interest)
		emi := result.EMI

		if month == tenureMonths {
			principalPortion = money.Round2(balance)
			emi = money.Round2(principalPortion + interest)
		}

		balance = money.NonNegative(balance - principalPortion)
		schedule = append(schedule, ScheduleEntry{
			Month:            month,
			EMI:              emi,
			PrincipalPortion: principalPortion,
			InterestPortion:  interest,
			EndingBalance:    balance,
		})
	}

	return schedule, nil
}

// PrepaymentImpact computes the new EMI or new tenure after a lump-sum
// prepayment, along with the interest saved versus the original plan.
//
// For ReduceTenure the new tenure solves the annuity formula for n:
// n = -ln(1 - P*r/emi) / ln(1+r), rounded up. The log argument is
// non-positive when the EMI does not exceed the interest-only payment on the
// reduced principal; that case returns ErrEMITooSmall.
func PrepaymentImpact(principal, annualRatePercent float64, tenureMonths int, prepayAmount float64, option PrepayOption) (PrepaymentResult, error) {
	if principal <= 0 || tenureMonths <= 0 || annualRatePercent < 0 {
		return PrepaymentResult{}, ErrInvalidTerms
	}
	if prepayAmount <= 0 || prepayAmount >= principal {
		return PrepaymentResult{}, ErrPrepaymentTooLarge
	}

	original, err := CalculateEMI(principal, annualRatePercent, tenureMonths)
	if err != nil {
		return PrepaymentResult{}, err
	}
	reduced := principal - prepayAmount

	switch option {
	case ReduceEMI:
		recalculated, err := CalculateEMI(reduced, annualRatePercent, tenureMonths)
		if err != nil {
			return PrepaymentResult{}, err
		}
		return PrepaymentResult{
			Option:          ReduceEMI,
			NewEMI:          recalculated.EMI,
			NewTenureMonths: tenureMonths,
			InterestSaved:   money.Round2(original.TotalInterest - recalculated.TotalInterest),
		}, nil

	case ReduceTenure:
		newTenure, err := TenureForEMI(reduced, annualRatePercent, original.EMI)
		if err != nil {
			return PrepaymentResult{}, err
		}
		// The last installment settles the residual balance, so it is
		// smaller than a full EMI. Walk the reduced balance to total the
		// interest actually charged instead of assuming newTenure full EMIs.
		r := monthlyRate(annualRatePercent)
		balance := reduced
		newInterest := 0.0
		for month := 1; month <= newTenure && balance > 0; month++ {
			interest := money.Round2(balance * r)
			principalPortion := money.Round2(original.EMI - interest)
			if month == newTenure || principalPortion > balance {
				principalPortion = money.Round2(balance)
			}
			balance = money.NonNegative(balance - principalPortion)
			newInterest = money.Round2(newInterest + interest)
		}
		return PrepaymentResult{
			Option:          ReduceTenure,
			NewEMI:          original.EMI,
			NewTenureMonths: newTenure,
			InterestSaved:   money.Round2(original.TotalInterest - newInterest),
		}, nil

	default:
		return PrepaymentResult{}, ErrUnknownOption
	}
}

// TenureForEMI solves the annuity formula for the smallest whole number of
// months that repays principal at the given rate with the given installment:
// n = -ln(1 - P*r/emi) / ln(1+r), rounded up. Returns ErrEMITooSmall when
// the installment does not exceed the interest-only payment, where the log
// argument becomes non-positive and no finite tenure exists.
func TenureForEMI(principal, annualRatePercent, emi float64) (int, error) {
	if principal <= 0 || annualRatePercent < 0 || emi <= 0 {
		return 0, ErrInvalidTerms
	}
	if annualRatePercent == 0 {
		return int(math.Ceil(principal / emi)), nil
	}

	r := monthlyRate(annualRatePercent)
	logArg := 1 - principal*r/emi
	if logArg <= 0 {
		return 0, ErrEMITooSmall
	}
	return int(math.Ceil(-math.Log(logArg) / math.Log(1+r))), nil
}

// RemainingMonths is the linear proxy the ledger uses after loan payments:
// ceil(remaining / principal * tenure). It intentionally matches the system
// this replaces rather than walking the true amortization schedule.
func RemainingMonths(remaining, principal float64, tenureMonths int) int {
	if principal <= 0 || remaining <= 0 {
		return 0
	}
	months := int(math.Ceil(remaining / principal * float64(tenureMonths)))
	if months > tenureMonths {
		return tenureMonths
	}
	return months
}
