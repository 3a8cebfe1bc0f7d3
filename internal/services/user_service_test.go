package services

import (
	"testing"

	"github.com/syednasirayub17/expenses-tracker-2-sub000/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	t.Run("creates_user_with_hashed_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("Alice@Example.com", "password123", "Alice")
		testutil.AssertNoError(t, err)
		if user.Email != "alice@example.com" {
			t.Errorf("expected lowercased email, got %q", user.Email)
		}
		if user.Password == "password123" {
			t.Error("password stored in plaintext")
		}
		if !svc.VerifyPassword(user, "password123") {
			t.Error("expected password to verify")
		}
		if svc.VerifyPassword(user, "wrong") {
			t.Error("expected wrong password to fail")
		}
	})

	t.Run("duplicate_email_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("bob@example.com", "password123", "Bob")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateUser("bob@example.com", "different456", "Bobby")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("missing_credentials_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("", "password123", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.CreateUser("carol@example.com", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	created, err := svc.CreateUser("dan@example.com", "password123", "Dan")
	testutil.AssertNoError(t, err)

	found, err := svc.GetUserByEmail("DAN@example.com")
	testutil.AssertNoError(t, err)
	if found.ID != created.ID {
		t.Errorf("expected user %d, got %d", created.ID, found.ID)
	}

	_, err = svc.GetUserByEmail("nobody@example.com")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}
