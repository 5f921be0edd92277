package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// transactionService handles transaction-related business logic. Every
// mutation goes through the ledger engine so balances follow.
type transactionService struct {
	db     *gorm.DB
	engine *ledger.Engine
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, engine *ledger.Engine) TransactionServicer {
	return &transactionService{db: db, engine: engine}
}

// CreateTransaction records a transaction and moves its account's balance.
func (s *transactionService) CreateTransaction(ctx context.Context, userID uint, in ledger.NewTransaction) (*models.Transaction, error) {
	return s.engine.ApplyCreate(ctx, userID, in)
}

// GetTransactionByID retrieves a transaction by ID for a specific user.
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// GetUserTransactions returns a filtered, sorted page of a user's transactions.
func (s *transactionService) GetUserTransactions(
	ctx context.Context,
	userID uint,
	page pagination.PageRequest,
	sort pagination.SortRequest,
	filter TransactionFilter,
) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := applyTransactionFilter(
		s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID),
		filter,
	)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err := base.Scopes(
		pagination.Order(sort, "date", "date", "amount"),
		pagination.Paginate(page),
	).Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page, totalItems)
	return &result, nil
}

// GetAccountTransactions is GetUserTransactions restricted to one account,
// which must belong to the user.
func (s *transactionService) GetAccountTransactions(
	ctx context.Context,
	userID, accountID uint,
	page pagination.PageRequest,
	sort pagination.SortRequest,
	filter TransactionFilter,
) (*pagination.PageResponse[models.Transaction], error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ? AND user_id = ?", accountID, userID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return nil, apperrors.ErrAccountNotFound
	}

	filter.AccountID = &accountID
	return s.GetUserTransactions(ctx, userID, page, sort, filter)
}

// UpdateTransaction changes a transaction and rebalances the accounts involved.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID uint, changes ledger.TransactionChanges) (*models.Transaction, error) {
	return s.engine.ApplyUpdate(ctx, userID, transactionID, changes)
}

// DeleteTransaction removes a transaction and reverses its balance effect.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID uint) error {
	_, err := s.engine.ApplyDelete(ctx, userID, transactionID)
	return err
}

func applyTransactionFilter(q *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.FromDate != nil {
		q = q.Where("date >= ?", filter.FromDate.UTC())
	}
	if filter.ToDate != nil {
		q = q.Where("date <= ?", filter.ToDate.UTC())
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.AccountID != nil {
		q = q.Where("account_id = ?", *filter.AccountID)
	}
	return q
}
