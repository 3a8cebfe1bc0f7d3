package services

import (
	"testing"
	"time"

	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/models"
)

func members(ids ...uint) []models.WalletMember {
	out := make([]models.WalletMember, len(ids))
	for i, id := range ids {
		out[i] = models.WalletMember{UserID: id}
	}
	return out
}

func sharedExpense(paidBy uint, amount float64, shares map[uint]float64) models.SharedTransaction {
	txn := models.SharedTransaction{
		Amount: amount,
		Type:   models.SharedTxnExpense,
		PaidBy: paidBy,
		Date:   time.Now(),
	}
	for userID, share := range shares {
		txn.Splits = append(txn.Splits, models.TransactionSplit{UserID: userID, Amount: share})
	}
	return txn
}

func TestComputeBalances(t *testing.T) {
	t.Run("balances_sum_to_zero", func(t *testing.T) {
		txns := []models.SharedTransaction{
			sharedExpense(1, 90, map[uint]float64{1: 30, 2: 30, 3: 30}),
			sharedExpense(2, 45, map[uint]float64{1: 15, 2: 15, 3: 15}),
			sharedExpense(3, 10.50, map[uint]float64{1: 5.25, 2: 5.25}),
		}
		balances := ComputeBalances(members(1, 2, 3), txns)

		var sum float64
		for _, b := range balances {
			sum += b
		}
		if sum < -0.005 || sum > 0.005 {
			t.Errorf("expected balances to sum to zero, got %.4f", sum)
		}
		if balances[1] != 39.75 {
			t.Errorf("expected user 1 at 39.75, got %.2f", balances[1])
		}
	})

	t.Run("members_without_transactions_appear_at_zero", func(t *testing.T) {
		balances := ComputeBalances(members(1, 2, 3), nil)
		if len(balances) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(balances))
		}
		for userID, b := range balances {
			if b != 0 {
				t.Errorf("expected user %d at zero, got %.2f", userID, b)
			}
		}
	})

	t.Run("income_mirrors_expense", func(t *testing.T) {
		txns := []models.SharedTransaction{
			{
				Amount: 60,
				Type:   models.SharedTxnIncome,
				PaidBy: 1,
				Splits: []models.TransactionSplit{
					{UserID: 1, Amount: 20}, {UserID: 2, Amount: 20}, {UserID: 3, Amount: 20},
				},
			},
		}
		balances := ComputeBalances(members(1, 2, 3), txns)
		// Receiver holds 60 of which 40 belongs to the others.
		if balances[1] != -40 {
			t.Errorf("expected receiver at -40, got %.2f", balances[1])
		}
		if balances[2] != 20 || balances[3] != 20 {
			t.Errorf("expected others at 20, got %.2f and %.2f", balances[2], balances[3])
		}
	})

	t.Run("settlement_moves_both_parties_toward_zero", func(t *testing.T) {
		txns := []models.SharedTransaction{
			sharedExpense(1, 100, map[uint]float64{1: 50, 2: 50}),
			{
				Amount: 50,
				Type:   models.SharedTxnSettlement,
				PaidBy: 2,
				Splits: []models.TransactionSplit{{UserID: 1, Amount: 50, Paid: true}},
			},
		}
		balances := ComputeBalances(members(1, 2), txns)
		if balances[1] != 0 || balances[2] != 0 {
			t.Errorf("expected both settled at zero, got %.2f and %.2f", balances[1], balances[2])
		}
	})
}

func TestSuggestSettlements(t *testing.T) {
	t.Run("instructions_cancel_balances_exactly", func(t *testing.T) {
		balances := map[uint]float64{1: 70.25, 2: -30.25, 3: -40}
		instructions := SuggestSettlements(balances)

		for _, ins := range instructions {
			balances[ins.FromUserID] += ins.Amount
			balances[ins.ToUserID] -= ins.Amount
		}
		for userID, b := range balances {
			if b < -0.005 || b > 0.005 {
				t.Errorf("user %d not settled: %.4f", userID, b)
			}
		}
	})

	t.Run("at_most_members_minus_one", func(t *testing.T) {
		balances := map[uint]float64{1: 100, 2: 40, 3: -60, 4: -50, 5: -30}
		instructions := SuggestSettlements(balances)
		if len(instructions) > 4 {
			t.Errorf("expected at most 4 instructions, got %d", len(instructions))
		}
	})

	t.Run("settled_wallet_needs_nothing", func(t *testing.T) {
		balances := map[uint]float64{1: 0, 2: 0.004, 3: -0.004}
		if got := SuggestSettlements(balances); len(got) != 0 {
			t.Errorf("expected no instructions, got %d", len(got))
		}
	})

	t.Run("deterministic_on_ties", func(t *testing.T) {
		balances := map[uint]float64{4: -25, 2: -25, 1: 25, 3: 25}
		first := SuggestSettlements(balances)
		second := SuggestSettlements(map[uint]float64{1: 25, 2: -25, 3: 25, 4: -25})
		if len(first) != len(second) {
			t.Fatalf("instruction count differs: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("instruction %d differs: %+v vs %+v", i, first[i], second[i])
			}
		}
	})
}

func TestBuildSplits(t *testing.T) {
	t.Run("equal_split_remainder_goes_to_payer", func(t *testing.T) {
		shares := []SplitShare{{UserID: 1}, {UserID: 2}, {UserID: 3}}
		splits, err := BuildSplits(100, models.SplitTypeEqual, 1, shares)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var sum float64
		for _, s := range splits {
			sum += s.Amount
		}
		if sum < 99.995 || sum > 100.005 {
			t.Errorf("expected splits to sum to 100, got %.4f", sum)
		}
		// 100/3 rounds to 33.33; the payer absorbs the extra cent.
		for _, s := range splits {
			want := 33.33
			if s.UserID == 1 {
				want = 33.34
			}
			if s.Amount != want {
				t.Errorf("user %d: expected %.2f, got %.2f", s.UserID, want, s.Amount)
			}
		}
	})

	t.Run("custom_split_must_sum_to_amount", func(t *testing.T) {
		shares := []SplitShare{{UserID: 1, Amount: 40}, {UserID: 2, Amount: 40}}
		_, err := BuildSplits(100, models.SplitTypeCustom, 1, shares)
		if err == nil {
			t.Fatal("expected invalid split error")
		}
	})

	t.Run("custom_split_within_tolerance_accepted", func(t *testing.T) {
		shares := []SplitShare{{UserID: 1, Amount: 33.33}, {UserID: 2, Amount: 33.33}, {UserID: 3, Amount: 33.33}}
		splits, err := BuildSplits(100, models.SplitTypeCustom, 2, shares)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var sum float64
		for _, s := range splits {
			sum += s.Amount
		}
		if sum < 99.995 || sum > 100.005 {
			t.Errorf("expected corrected sum 100, got %.4f", sum)
		}
	})

	t.Run("percentage_split", func(t *testing.T) {
		shares := []SplitShare{
			{UserID: 1, Percentage: 50},
			{UserID: 2, Percentage: 30},
			{UserID: 3, Percentage: 20},
		}
		splits, err := BuildSplits(250, models.SplitTypePercentage, 1, shares)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := map[uint]float64{1: 125, 2: 75, 3: 50}
		for _, s := range splits {
			if s.Amount != want[s.UserID] {
				t.Errorf("user %d: expected %.2f, got %.2f", s.UserID, want[s.UserID], s.Amount)
			}
		}
	})

	t.Run("percentages_must_sum_to_hundred", func(t *testing.T) {
		shares := []SplitShare{{UserID: 1, Percentage: 60}, {UserID: 2, Percentage: 30}}
		_, err := BuildSplits(100, models.SplitTypePercentage, 1, shares)
		if err == nil {
			t.Fatal("expected invalid split error")
		}
	})

	t.Run("duplicate_participant_rejected", func(t *testing.T) {
		shares := []SplitShare{{UserID: 1}, {UserID: 1}}
		_, err := BuildSplits(100, models.SplitTypeEqual, 1, shares)
		if err == nil {
			t.Fatal("expected invalid split error")
		}
	})

	t.Run("empty_shares_rejected", func(t *testing.T) {
		_, err := BuildSplits(100, models.SplitTypeEqual, 1, nil)
		if err == nil {
			t.Fatal("expected invalid split error")
		}
	})
}
