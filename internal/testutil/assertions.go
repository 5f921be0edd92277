package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// AssertAppError fails unless err is, or wraps, an *AppError carrying
// expectedCode.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	var appErr *apperrors.AppError
	switch {
	case err == nil:
		t.Fatalf("expected %s, got nil", expectedCode)
	case !errors.As(err, &appErr):
		t.Fatalf("expected %s, got %T: %v", expectedCode, err, err)
	case appErr.Code != expectedCode:
		t.Errorf("expected %s, got %s (%s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError stops the test on any error.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ReloadAccount reads the account's current row.
func ReloadAccount(t *testing.T, db *gorm.DB, id uint) *models.Account {
	t.Helper()

	var account models.Account
	if err := db.First(&account, id).Error; err != nil {
		t.Fatalf("failed to reload account %d: %v", id, err)
	}
	return &account
}

// AssertBalance checks the stored balance of account id.
func AssertBalance(t *testing.T, db *gorm.DB, id uint, want string) {
	t.Helper()

	got := ReloadAccount(t, db, id).Balance
	if !got.Equal(Money(t, want)) {
		t.Errorf("account %d: expected balance %s, got %s", id, want, got)
	}
}

// AssertLedgerConsistent checks that every account balance equals the signed
// sum of the transactions referencing it.
func AssertLedgerConsistent(t *testing.T, db *gorm.DB) {
	t.Helper()

	var accounts []models.Account
	if err := db.Find(&accounts).Error; err != nil {
		t.Fatalf("failed to load accounts: %v", err)
	}
	for _, a := range accounts {
		var txns []models.Transaction
		if err := db.Where("account_id = ?", a.ID).Find(&txns).Error; err != nil {
			t.Fatalf("failed to load transactions: %v", err)
		}
		sum := decimal.Zero
		for _, tx := range txns {
			if tx.Type == models.TransactionTypeExpense {
				sum = sum.Sub(tx.Amount)
			} else {
				sum = sum.Add(tx.Amount)
			}
		}
		if !a.Balance.Equal(sum) {
			t.Errorf("account %d: balance %s does not match transactions sum %s", a.ID, a.Balance, sum)
		}
	}
}
