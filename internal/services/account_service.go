package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fintrack/internal/config"
	"fintrack/internal/database"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// openingBalanceDescription labels the transaction that carries an
// account's starting balance.
const openingBalanceDescription = "Initial balance"

// accountService handles account-related business logic.
type accountService struct {
	db           *gorm.DB
	uow          database.UnitOfWork
	engine       *ledger.Engine
	deletePolicy config.AccountDeletePolicy
}

// NewAccountService creates a new AccountServicer. deletePolicy decides what
// happens to an account that still has transactions when it is deleted.
func NewAccountService(db *gorm.DB, engine *ledger.Engine, deletePolicy config.AccountDeletePolicy) AccountServicer {
	return &accountService{
		db:           db,
		uow:          database.NewUnitOfWork(db),
		engine:       engine,
		deletePolicy: deletePolicy,
	}
}

// CreateAccount creates a new account for a user. A non-zero opening balance
// is booked as an income (or, when negative, expense) transaction in the
// same unit of work, so the balance is backed by the ledger from the start.
func (s *accountService) CreateAccount(ctx context.Context, userID uint, name string, openingBalance decimal.Decimal) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if !models.IsMoney(openingBalance) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "balance must have at most 2 decimal places")
	}

	var account models.Account
	err := s.uow.Do(ctx, func(tx *gorm.DB) error {
		account = models.Account{UserID: userID, Name: name, Balance: decimal.Zero}
		if err := tx.Create(&account).Error; err != nil {
			return err
		}

		if openingBalance.IsZero() {
			return nil
		}
		txType := models.TransactionTypeIncome
		if openingBalance.IsNegative() {
			txType = models.TransactionTypeExpense
		}
		if _, err := s.engine.ApplyCreateTx(tx, userID, ledger.NewTransaction{
			AccountID:   account.ID,
			Type:        txType,
			Amount:      openingBalance.Abs(),
			Description: openingBalanceDescription,
		}); err != nil {
			return err
		}
		return tx.First(&account, account.ID).Error
	})
	if err != nil {
		return nil, serviceError(err)
	}

	return &account, nil
}

// GetUserAccounts retrieves a paginated list of accounts for a user.
func (s *accountService) GetUserAccounts(ctx context.Context, userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.WithContext(ctx).Model(&models.Account{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Order("id").Scopes(pagination.Paginate(page)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page, totalItems)
	return &result, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *accountService) GetAccountByID(ctx context.Context, userID, accountID uint) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount renames an account. The balance is never written here.
func (s *accountService) UpdateAccount(ctx context.Context, userID, accountID uint, name string) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	account, err := s.GetAccountByID(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(account).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.Name = name
	return account, nil
}

// DeleteAccount removes an account. Under the reject policy an account that
// still has transactions is kept and ErrAccountHasTransactions returned;
// under the cascade policy its transactions go with it.
func (s *accountService) DeleteAccount(ctx context.Context, userID, accountID uint) error {
	err := s.uow.Do(ctx, func(tx *gorm.DB) error {
		var account models.Account
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", accountID, userID).
			First(&account).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrAccountNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.Transaction{}).Where("account_id = ?", account.ID).Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			if s.deletePolicy != config.DeletePolicyCascade {
				return apperrors.WithMessage(apperrors.ErrAccountHasTransactions,
					"Account still has transactions; delete or move them first")
			}
			if err := tx.Where("account_id = ?", account.ID).Delete(&models.Transaction{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&account).Error
	})
	return serviceError(err)
}

// serviceError maps whatever a unit of work returned to an AppError.
func serviceError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
