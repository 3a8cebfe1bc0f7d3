package services

import (
	"sort"

	apperrors "github.com/syednasirayub17/expenses-tracker-2-sub000/internal/errors"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/models"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/money"
)

// SplitShare is one participant's slice of a shared transaction. Amount is
// read for custom splits, Percentage for percentage splits; equal splits use
// only the user ID.
type SplitShare struct {
	UserID     uint    `json:"userId"`
	Amount     float64 `json:"amount,omitempty"`
	Percentage float64 `json:"percentage,omitempty"`
}

// SettlementInstruction is one suggested payment that reduces wallet debt.
type SettlementInstruction struct {
	FromUserID uint    `json:"fromUserId"`
	ToUserID   uint    `json:"toUserId"`
	Amount     float64 `json:"amount"`
}

// ComputeBalances replays a wallet's transaction history into per-member net
// positions. Positive means the member is owed money, negative means they
// owe. Every member starts at zero so settled members still appear.
func ComputeBalances(members []models.WalletMember, transactions []models.SharedTransaction) map[uint]float64 {
	balances := make(map[uint]float64, len(members))
	for _, m := range members {
		balances[m.UserID] = 0
	}

	for _, txn := range transactions {
		switch txn.Type {
		case models.SharedTxnExpense, models.SharedTxnSettlement:
			balances[txn.PaidBy] += txn.Amount
			for _, split := range txn.Splits {
				balances[split.UserID] -= split.Amount
			}
		case models.SharedTxnIncome:
			// Income mirrors expense: the receiver owes the group the
			// members' shares of what came in.
			balances[txn.PaidBy] -= txn.Amount
			for _, split := range txn.Splits {
				balances[split.UserID] += split.Amount
			}
		}
	}

	for userID, balance := range balances {
		balances[userID] = money.Round2(balance)
	}
	return balances
}

// SuggestSettlements produces a minimal-looking set of payments that zeroes
// all balances: the largest creditor is repeatedly matched against the
// largest debtor. For n members with nonzero balances it emits at most n-1
// instructions. Balances within a cent of zero are treated as settled.
func SuggestSettlements(balances map[uint]float64) []SettlementInstruction {
	type position struct {
		userID uint
		amount float64
	}

	var creditors, debtors []position
	for userID, balance := range balances {
		switch {
		case balance >= money.CentTolerance:
			creditors = append(creditors, position{userID, balance})
		case balance <= -money.CentTolerance:
			debtors = append(debtors, position{userID, -balance})
		}
	}

	// Largest first; ties break on user ID so output is deterministic.
	sort.Slice(creditors, func(i, j int) bool {
		if creditors[i].amount != creditors[j].amount {
			return creditors[i].amount > creditors[j].amount
		}
		return creditors[i].userID < creditors[j].userID
	})
	sort.Slice(debtors, func(i, j int) bool {
		if debtors[i].amount != debtors[j].amount {
			return debtors[i].amount > debtors[j].amount
		}
		return debtors[i].userID < debtors[j].userID
	})

	var instructions []SettlementInstruction
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		amount := creditors[i].amount
		if debtors[j].amount < amount {
			amount = debtors[j].amount
		}
		amount = money.Round2(amount)

		instructions = append(instructions, SettlementInstruction{
			FromUserID: debtors[j].userID,
			ToUserID:   creditors[i].userID,
			Amount:     amount,
		})

		creditors[i].amount -= amount
		debtors[j].amount -= amount
		if creditors[i].amount < money.CentTolerance {
			i++
		}
		if debtors[j].amount < money.CentTolerance {
			j++
		}
	}
	return instructions
}

// BuildSplits turns a shared-transaction intent into per-member split rows
// summing exactly to the amount. Rounding remainders go to the payer's
// split, so no member overpays by the group's rounding.
func BuildSplits(amount float64, splitType models.SplitType, paidBy uint, shares []SplitShare) ([]models.TransactionSplit, error) {
	if len(shares) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidSplit, "at least one split participant is required")
	}

	seen := make(map[uint]bool, len(shares))
	for _, share := range shares {
		if seen[share.UserID] {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidSplit, "duplicate participant in split")
		}
		seen[share.UserID] = true
	}

	splits := make([]models.TransactionSplit, len(shares))

	switch splitType {
	case models.SplitTypeEqual:
		each := money.Round2(amount / float64(len(shares)))
		for i, share := range shares {
			splits[i] = models.TransactionSplit{UserID: share.UserID, Amount: each}
		}

	case models.SplitTypeCustom:
		var sum float64
		for i, share := range shares {
			if share.Amount < 0 {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidSplit, "split amounts cannot be negative")
			}
			rounded := money.Round2(share.Amount)
			splits[i] = models.TransactionSplit{UserID: share.UserID, Amount: rounded}
			sum += rounded
		}
		tolerance := float64(len(shares)) * money.CentTolerance
		diff := sum - amount
		if diff < 0 {
			diff = -diff
		}
		if diff > tolerance {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidSplit, "split amounts must sum to the transaction amount")
		}

	case models.SplitTypePercentage:
		var pctSum float64
		for i, share := range shares {
			if share.Percentage < 0 {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidSplit, "split percentages cannot be negative")
			}
			pctSum += share.Percentage
			splits[i] = models.TransactionSplit{
				UserID:     share.UserID,
				Amount:     money.Round2(amount * share.Percentage / 100),
				Percentage: share.Percentage,
			}
		}
		if !money.Equal(pctSum, 100) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidSplit, "split percentages must sum to 100")
		}

	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidSplit, "unknown split type")
	}

	assignRemainder(amount, paidBy, splits)
	return splits, nil
}

// assignRemainder pins the rounding drift between the split sum and the
// transaction amount onto the payer's split (or the first split when the
// payer is not a participant).
func assignRemainder(amount float64, paidBy uint, splits []models.TransactionSplit) {
	var sum float64
	for _, split := range splits {
		sum += split.Amount
	}
	remainder := money.Round2(amount - sum)
	if remainder == 0 {
		return
	}

	target := 0
	for i, split := range splits {
		if split.UserID == paidBy {
			target = i
			break
		}
	}
	splits[target].Amount = money.Round2(splits[target].Amount + remainder)
}
