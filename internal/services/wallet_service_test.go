package services

import (
	"testing"
	"time"

	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/models"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/pagination"
	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/testutil"
)

func TestCreateWallet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewWalletService(db)
	user := testutil.CreateTestUser(t, db)

	wallet, err := svc.CreateWallet(user.ID, "Trip to Goa", "INR")
	testutil.AssertNoError(t, err)
	if wallet.InviteCode == "" || len(wallet.InviteCode) != 8 {
		t.Errorf("expected 8-character invite code, got %q", wallet.InviteCode)
	}
	if len(wallet.Members) != 1 || wallet.Members[0].Role != models.WalletRoleOwner {
		t.Errorf("expected creator as owner, got %+v", wallet.Members)
	}
}

func TestJoinWallet(t *testing.T) {
	t.Run("join_by_invite_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWalletService(db)
		owner := testutil.CreateTestUser(t, db)
		joiner := testutil.CreateTestUser(t, db)

		wallet, err := svc.CreateWallet(owner.ID, "Flat 4B", "INR")
		testutil.AssertNoError(t, err)

		joined, err := svc.JoinWallet(joiner.ID, wallet.InviteCode)
		testutil.AssertNoError(t, err)
		if len(joined.Members) != 2 {
			t.Fatalf("expected 2 members, got %d", len(joined.Members))
		}
	})

	t.Run("invite_code_is_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWalletService(db)
		owner := testutil.CreateTestUser(t, db)
		joiner := testutil.CreateTestUser(t, db)

		wallet, err := svc.CreateWallet(owner.ID, "Flat 4B", "INR")
		testutil.AssertNoError(t, err)

		lower := ""
		for _, r := range wallet.InviteCode {
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			lower += string(r)
		}
		_, err = svc.JoinWallet(joiner.ID, lower)
		testutil.AssertNoError(t, err)
	})

	t.Run("unknown_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWalletService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.JoinWallet(user.ID, "NOPE1234")
		testutil.AssertAppError(t, err, "INVALID_INVITE_CODE")
	})

	t.Run("double_join_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWalletService(db)
		owner := testutil.CreateTestUser(t, db)

		wallet, err := svc.CreateWallet(owner.ID, "Flat 4B", "INR")
		testutil.AssertNoError(t, err)

		_, err = svc.JoinWallet(owner.ID, wallet.InviteCode)
		testutil.AssertAppError(t, err, "ALREADY_WALLET_MEMBER")
	})
}

func TestDeleteWallet(t *testing.T) {
	t.Run("owner_delete_cascades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWalletService(db)
		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)

		wallet, err := svc.CreateWallet(owner.ID, "Flat 4B", "INR")
		testutil.AssertNoError(t, err)
		_, err = svc.JoinWallet(member.ID, wallet.InviteCode)
		testutil.AssertNoError(t, err)
		_, err = svc.AddSharedTransaction(owner.ID, wallet.ID, SharedTransactionInput{
			Amount:    100,
			Type:      models.SharedTxnExpense,
			SplitType: models.SplitTypeEqual,
			Date:      time.Now(),
		})
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeleteWallet(owner.ID, wallet.ID))

		var memberCount, txnCount, splitCount int64
		db.Model(&models.WalletMember{}).Where("wallet_id = ?", wallet.ID).Count(&memberCount)
		db.Model(&models.SharedTransaction{}).Where("wallet_id = ?", wallet.ID).Count(&txnCount)
		db.Model(&models.TransactionSplit{}).Count(&splitCount)
		if memberCount != 0 || txnCount != 0 || splitCount != 0 {
			t.Errorf("expected cascade delete, got members=%d txns=%d splits=%d", memberCount, txnCount, splitCount)
		}

		_, err = svc.GetWalletByID(owner.ID, wallet.ID)
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
	})

	t.Run("non_owner_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWalletService(db)
		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)

		wallet, err := svc.CreateWallet(owner.ID, "Flat 4B", "INR")
		testutil.AssertNoError(t, err)
		_, err = svc.JoinWallet(member.ID, wallet.InviteCode)
		testutil.AssertNoError(t, err)

		err = svc.DeleteWallet(member.ID, wallet.ID)
		testutil.AssertAppError(t, err, "WALLET_OWNER_ONLY")
	})
}

func TestAddSharedTransaction(t *testing.T) {
	setup := func(t *testing.T) (WalletServicer, *models.SharedWallet, *models.User, *models.User, func()) {
		db := testutil.SetupTestDB(t)
		svc := NewWalletService(db)
		owner := testutil.CreateTestUser(t, db)
		member := testutil.CreateTestUser(t, db)
		wallet, err := svc.CreateWallet(owner.ID, "Flat 4B", "INR")
		testutil.AssertNoError(t, err)
		_, err = svc.JoinWallet(member.ID, wallet.InviteCode)
		testutil.AssertNoError(t, err)
		return svc, wallet, owner, member, func() { testutil.TeardownTestDB(t, db) }
	}

	t.Run("equal_split_defaults_to_all_members", func(t *testing.T) {
		svc, wallet, owner, _, teardown := setup(t)
		defer teardown()

		txn, err := svc.AddSharedTransaction(owner.ID, wallet.ID, SharedTransactionInput{
			Amount:    101,
			Type:      models.SharedTxnExpense,
			SplitType: models.SplitTypeEqual,
			Date:      time.Now(),
		})
		testutil.AssertNoError(t, err)
		if len(txn.Splits) != 2 {
			t.Fatalf("expected 2 splits, got %d", len(txn.Splits))
		}
		var sum float64
		for _, s := range txn.Splits {
			sum += s.Amount
		}
		if sum < 100.995 || sum > 101.005 {
			t.Errorf("expected splits to sum to 101, got %.4f", sum)
		}
	})

	t.Run("expense_decreases_wallet_balance", func(t *testing.T) {
		svc, wallet, owner, _, teardown := setup(t)
		defer teardown()

		_, err := svc.AddSharedTransaction(owner.ID, wallet.ID, SharedTransactionInput{
			Amount:    250,
			Type:      models.SharedTxnExpense,
			SplitType: models.SplitTypeEqual,
			Date:      time.Now(),
		})
		testutil.AssertNoError(t, err)

		updated, err := svc.GetWalletByID(owner.ID, wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertMoneyEqual(t, -250, updated.Balance, "wallet balance")
	})

	t.Run("income_increases_wallet_balance", func(t *testing.T) {
		svc, wallet, owner, _, teardown := setup(t)
		defer teardown()

		_, err := svc.AddSharedTransaction(owner.ID, wallet.ID, SharedTransactionInput{
			Amount:    400,
			Type:      models.SharedTxnIncome,
			SplitType: models.SplitTypeEqual,
			Date:      time.Now(),
		})
		testutil.AssertNoError(t, err)

		updated, err := svc.GetWalletByID(owner.ID, wallet.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertMoneyEqual(t, 400, updated.Balance, "wallet balance")
	})

	t.Run("non_member_payer_rejected", func(t *testing.T) {
		svc, wallet, owner, _, teardown := setup(t)
		defer teardown()

		_, err := svc.AddSharedTransaction(owner.ID, wallet.ID, SharedTransactionInput{
			Amount:    50,
			Type:      models.SharedTxnExpense,
			PaidBy:    9999,
			SplitType: models.SplitTypeEqual,
			Date:      time.Now(),
		})
		testutil.AssertAppError(t, err, "NOT_WALLET_MEMBER")
	})

	t.Run("non_member_caller_rejected", func(t *testing.T) {
		svc, wallet, _, _, teardown := setup(t)
		defer teardown()

		_, err := svc.AddSharedTransaction(9999, wallet.ID, SharedTransactionInput{
			Amount:    50,
			Type:      models.SharedTxnExpense,
			SplitType: models.SplitTypeEqual,
		})
		testutil.AssertAppError(t, err, "NOT_WALLET_MEMBER")
	})

	t.Run("split_on_non_member_rejected", func(t *testing.T) {
		svc, wallet, owner, member, teardown := setup(t)
		defer teardown()

		_, err := svc.AddSharedTransaction(owner.ID, wallet.ID, SharedTransactionInput{
			Amount:    50,
			Type:      models.SharedTxnExpense,
			SplitType: models.SplitTypeCustom,
			Shares: []SplitShare{
				{UserID: member.ID, Amount: 25},
				{UserID: 9999, Amount: 25},
			},
		})
		testutil.AssertAppError(t, err, "INVALID_SPLIT")
	})

	t.Run("settlement_type_not_allowed_here", func(t *testing.T) {
		svc, wallet, owner, _, teardown := setup(t)
		defer teardown()

		_, err := svc.AddSharedTransaction(owner.ID, wallet.ID, SharedTransactionInput{
			Amount:    50,
			Type:      models.SharedTxnSettlement,
			SplitType: models.SplitTypeEqual,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestWalletBalancesAndSettlements(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewWalletService(db)
	owner := testutil.CreateTestUser(t, db)
	second := testutil.CreateTestUser(t, db)
	third := testutil.CreateTestUser(t, db)

	wallet, err := svc.CreateWallet(owner.ID, "Road Trip", "INR")
	testutil.AssertNoError(t, err)
	_, err = svc.JoinWallet(second.ID, wallet.InviteCode)
	testutil.AssertNoError(t, err)
	_, err = svc.JoinWallet(third.ID, wallet.InviteCode)
	testutil.AssertNoError(t, err)

	// Owner fronts 900 split equally.
	_, err = svc.AddSharedTransaction(owner.ID, wallet.ID, SharedTransactionInput{
		Amount:    900,
		Type:      models.SharedTxnExpense,
		SplitType: models.SplitTypeEqual,
		Date:      time.Now(),
	})
	testutil.AssertNoError(t, err)

	balances, err := svc.GetWalletBalances(owner.ID, wallet.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertMoneyEqual(t, 600, balances[owner.ID], "owner net")
	testutil.AssertMoneyEqual(t, -300, balances[second.ID], "second net")
	testutil.AssertMoneyEqual(t, -300, balances[third.ID], "third net")

	instructions, err := svc.GetSuggestedSettlements(owner.ID, wallet.ID)
	testutil.AssertNoError(t, err)
	if len(instructions) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(instructions))
	}
	for _, ins := range instructions {
		if ins.ToUserID != owner.ID {
			t.Errorf("expected all payments toward the owner, got %+v", ins)
		}
		testutil.AssertMoneyEqual(t, 300, ins.Amount, "instruction amount")
	}

	// Second member pays the owner back in full.
	_, err = svc.RecordSettlement(second.ID, wallet.ID, owner.ID, 300, "repaid trip share")
	testutil.AssertNoError(t, err)

	balances, err = svc.GetWalletBalances(owner.ID, wallet.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertMoneyEqual(t, 300, balances[owner.ID], "owner net after settlement")
	testutil.AssertMoneyEqual(t, 0, balances[second.ID], "second net after settlement")

	// Settlements don't move the pooled wallet balance.
	updated, err := svc.GetWalletByID(owner.ID, wallet.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertMoneyEqual(t, -900, updated.Balance, "pooled balance")

	remaining, err := svc.GetSuggestedSettlements(owner.ID, wallet.ID)
	testutil.AssertNoError(t, err)
	if len(remaining) != 1 {
		t.Fatalf("expected 1 remaining instruction, got %d", len(remaining))
	}
	if remaining[0].FromUserID != third.ID || remaining[0].ToUserID != owner.ID {
		t.Errorf("expected third member to owe the owner, got %+v", remaining[0])
	}
}

func TestRecordSettlement(t *testing.T) {
	t.Run("self_settlement_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWalletService(db)
		owner := testutil.CreateTestUser(t, db)
		wallet, err := svc.CreateWallet(owner.ID, "Solo", "INR")
		testutil.AssertNoError(t, err)

		_, err = svc.RecordSettlement(owner.ID, wallet.ID, owner.ID, 100, "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("receiver_must_be_member", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewWalletService(db)
		owner := testutil.CreateTestUser(t, db)
		wallet, err := svc.CreateWallet(owner.ID, "Solo", "INR")
		testutil.AssertNoError(t, err)

		_, err = svc.RecordSettlement(owner.ID, wallet.ID, 9999, 100, "")
		testutil.AssertAppError(t, err, "SETTLEMENT_NOT_MEMBER")
	})
}

func TestGetWalletTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewWalletService(db)
	owner := testutil.CreateTestUser(t, db)
	wallet, err := svc.CreateWallet(owner.ID, "Household", "INR")
	testutil.AssertNoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.AddSharedTransaction(owner.ID, wallet.ID, SharedTransactionInput{
			Amount:    float64(10 * (i + 1)),
			Type:      models.SharedTxnExpense,
			SplitType: models.SplitTypeEqual,
			Date:      time.Now().Add(time.Duration(i) * time.Hour),
		})
		testutil.AssertNoError(t, err)
	}

	page, err := svc.GetWalletTransactions(owner.ID, wallet.ID, pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 3 {
		t.Errorf("expected 3 transactions, got %d", page.TotalItems)
	}
	if len(page.Data) != 2 {
		t.Errorf("expected page of 2, got %d", len(page.Data))
	}
	if len(page.Data) > 0 && len(page.Data[0].Splits) == 0 {
		t.Error("expected splits preloaded")
	}
}
