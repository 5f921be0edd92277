package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fintrack/internal/database"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// NewTransaction holds the fields of a transaction to create.
type NewTransaction struct {
	AccountID   uint
	CategoryID  *uint
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	// Date defaults to the current time when zero.
	Date time.Time
}

// TransactionChanges holds the fields to change on an existing transaction.
// A nil field is left untouched. CategoryID set to a pointer to nil clears
// the category.
type TransactionChanges struct {
	AccountID   *uint
	CategoryID  **uint
	Type        *models.TransactionType
	Amount      *decimal.Decimal
	Description *string
	Date        *time.Time
}

// Engine applies transaction mutations together with their balance effects.
// Each Apply* call is one unit of work: the transaction row and every
// affected account balance commit together or not at all. The engine never
// retries; ErrConsistencyConflict is returned to the caller as is.
type Engine struct {
	uow database.UnitOfWork
	now func() time.Time
}

// NewEngine creates an Engine running its writes through uow.
func NewEngine(uow database.UnitOfWork) *Engine {
	return &Engine{uow: uow, now: time.Now}
}

// ApplyCreate inserts a transaction for userID and moves its account's
// balance by the signed amount.
func (e *Engine) ApplyCreate(ctx context.Context, userID uint, in NewTransaction) (*models.Transaction, error) {
	if err := validateNew(in); err != nil {
		return nil, err
	}

	var created *models.Transaction
	err := e.uow.Do(ctx, func(tx *gorm.DB) error {
		t, err := e.ApplyCreateTx(tx, userID, in)
		created = t
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ApplyCreateTx is ApplyCreate inside a unit of work the caller already
// holds, for operations that create transactions as part of a larger write.
func (e *Engine) ApplyCreateTx(tx *gorm.DB, userID uint, in NewTransaction) (*models.Transaction, error) {
	if err := validateNew(in); err != nil {
		return nil, err
	}

	accounts, err := lockAccounts(tx, userID, in.AccountID)
	if err != nil {
		return nil, err
	}
	if err := checkCategory(tx, in.CategoryID, in.Type); err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = e.now()
	}

	t := &models.Transaction{
		UserID:      userID,
		AccountID:   in.AccountID,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        date.UTC(),
	}
	if err := tx.Create(t).Error; err != nil {
		return nil, storeError(err)
	}

	if err := applyAdjustments(tx, accounts, CreateAdjustments(EntryOf(t))); err != nil {
		return nil, err
	}
	return t, nil
}

// ApplyUpdate changes a transaction owned by userID. The old signed amount is
// reversed on its original account and the new one applied on the (possibly
// different) target account.
func (e *Engine) ApplyUpdate(ctx context.Context, userID, transactionID uint, ch TransactionChanges) (*models.Transaction, error) {
	if ch.Amount != nil {
		if err := ValidateAmount(*ch.Amount); err != nil {
			return nil, err
		}
	}
	if ch.Type != nil {
		if err := ValidateType(*ch.Type); err != nil {
			return nil, err
		}
	}

	var updated models.Transaction
	err := e.uow.Do(ctx, func(tx *gorm.DB) error {
		current, err := lockTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}

		next := *current
		applyChanges(&next, ch)

		accounts, err := lockAccounts(tx, userID, current.AccountID, next.AccountID)
		if err != nil {
			return err
		}
		if err := checkCategory(tx, next.CategoryID, next.Type); err != nil {
			return err
		}

		if err := tx.Model(&next).
			Select("account_id", "category_id", "type", "amount", "description", "date", "updated_at").
			Updates(&next).Error; err != nil {
			return storeError(err)
		}

		if err := applyAdjustments(tx, accounts, UpdateAdjustments(EntryOf(current), EntryOf(&next))); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ApplyDelete removes a transaction owned by userID and reverses its effect
// on the account balance.
func (e *Engine) ApplyDelete(ctx context.Context, userID, transactionID uint) (*models.Transaction, error) {
	var deleted *models.Transaction
	err := e.uow.Do(ctx, func(tx *gorm.DB) error {
		current, err := lockTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}

		accounts, err := lockAccounts(tx, userID, current.AccountID)
		if err != nil {
			return err
		}

		if err := tx.Delete(current).Error; err != nil {
			return storeError(err)
		}
		if err := applyAdjustments(tx, accounts, DeleteAdjustments(EntryOf(current))); err != nil {
			return err
		}
		deleted = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func validateNew(in NewTransaction) error {
	if in.AccountID == 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account_id is required")
	}
	if err := ValidateType(in.Type); err != nil {
		return err
	}
	return ValidateAmount(in.Amount)
}

func applyChanges(t *models.Transaction, ch TransactionChanges) {
	if ch.AccountID != nil {
		t.AccountID = *ch.AccountID
	}
	if ch.CategoryID != nil {
		t.CategoryID = *ch.CategoryID
	}
	if ch.Type != nil {
		t.Type = *ch.Type
	}
	if ch.Amount != nil {
		t.Amount = *ch.Amount
	}
	if ch.Description != nil {
		t.Description = *ch.Description
	}
	if ch.Date != nil {
		t.Date = ch.Date.UTC()
	}
}

// lockTransaction reads a transaction owned by userID and holds its row
// until the unit of work ends.
func lockTransaction(tx *gorm.DB, userID, transactionID uint) (*models.Transaction, error) {
	var t models.Transaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, storeError(err)
	}
	return &t, nil
}

// lockAccounts reads the given accounts of userID in ascending id order and
// holds their rows until the unit of work ends. An account that does not
// exist or belongs to someone else is ErrAccountNotFound.
func lockAccounts(tx *gorm.DB, userID uint, ids ...uint) (map[uint]*models.Account, error) {
	sorted := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			sorted = append(sorted, id)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	accounts := make(map[uint]*models.Account, len(sorted))
	for _, id := range sorted {
		var account models.Account
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, userID).
			First(&account).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrAccountNotFound
			}
			return nil, storeError(err)
		}
		accounts[id] = &account
	}
	return accounts, nil
}

// checkCategory verifies that categoryID, when set, names a category whose
// type accepts t. The category row is share-locked so a concurrent type
// change cannot slip in underneath.
func checkCategory(tx *gorm.DB, categoryID *uint, t models.TransactionType) error {
	if categoryID == nil {
		return nil
	}
	var category models.Category
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).First(&category, *categoryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return storeError(err)
	}
	return CheckCategory(category.Type, t)
}

// applyAdjustments writes each delta to its locked account. The write is
// guarded by the version read under lock; if the row moved anyway the unit
// of work fails with ErrConsistencyConflict.
func applyAdjustments(tx *gorm.DB, accounts map[uint]*models.Account, adjs []Adjustment) error {
	for _, adj := range adjs {
		if adj.Delta.IsZero() {
			continue
		}
		account, ok := accounts[adj.AccountID]
		if !ok {
			return apperrors.Wrap(apperrors.ErrInternalServer,
				fmt.Errorf("account %d adjusted without being locked", adj.AccountID))
		}

		balance := account.Balance.Add(adj.Delta)
		res := tx.Model(&models.Account{}).
			Where("id = ? AND version = ?", account.ID, account.Version).
			Updates(map[string]interface{}{
				"balance": balance,
				"version": account.Version + 1,
			})
		if res.Error != nil {
			return storeError(res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.Wrap(apperrors.ErrConsistencyConflict,
				fmt.Errorf("account %d changed since version %d", account.ID, account.Version))
		}

		logger.Get().Debugw("ledger adjustment",
			"account_id", account.ID,
			"delta", adj.Delta.String(),
			"balance", balance.String(),
		)
		account.Balance = balance
		account.Version++
	}
	return nil
}

// storeError converts a database error raised inside a unit of work into an
// AppError, keeping concurrency aborts distinguishable.
func storeError(err error) error {
	err = database.TranslateError(err)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
