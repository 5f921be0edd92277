package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fintrack/internal/database"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db  *gorm.DB
	uow database.UnitOfWork
	now func() time.Time
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db, uow: database.NewUnitOfWork(db), now: time.Now}
}

// CreateBudget creates a budget on an expense (or both) category. A user has
// at most one budget per category.
func (s *budgetService) CreateBudget(ctx context.Context, userID, categoryID uint, amount decimal.Decimal, period models.BudgetPeriod) (*models.Budget, error) {
	if err := ledger.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if !period.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be weekly, monthly or yearly")
	}

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
		Period:     period,
	}

	err := s.uow.Do(ctx, func(tx *gorm.DB) error {
		category, err := lockBudgetCategory(tx, categoryID)
		if err != nil {
			return err
		}
		if err := tx.Omit("Category").Create(budget).Error; err != nil {
			return err
		}
		budget.Category = category
		return nil
	})
	if err != nil {
		return nil, budgetError(err)
	}

	return budget, nil
}

// GetUserBudgets returns a paginated list of the user's budgets, each with
// its status for the current period.
func (s *budgetService) GetUserBudgets(ctx context.Context, userID uint, page pagination.PageRequest) (*pagination.PageResponse[BudgetWithStatus], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Budget{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").Order("id").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	withStatus, err := budgetStatuses(ctx, s.db, userID, budgets, s.now())
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResponse(withStatus, page, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(ctx context.Context, userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.WithContext(ctx).Preload("Category").Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// GetBudgetWithStatus returns a budget together with what has been spent
// against it in the current period.
func (s *budgetService) GetBudgetWithStatus(ctx context.Context, userID, budgetID uint) (*BudgetWithStatus, error) {
	budget, err := s.GetBudgetByID(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	withStatus, err := budgetStatuses(ctx, s.db, userID, []models.Budget{*budget}, s.now())
	if err != nil {
		return nil, err
	}
	return &withStatus[0], nil
}

// UpdateBudget updates an existing budget's fields.
func (s *budgetService) UpdateBudget(ctx context.Context, userID, budgetID uint, update BudgetUpdate) (*models.Budget, error) {
	updates := make(map[string]interface{})
	if update.Amount != nil {
		if err := ledger.ValidateAmount(*update.Amount); err != nil {
			return nil, err
		}
		updates["amount"] = *update.Amount
	}
	if update.Period != nil {
		if !update.Period.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be weekly, monthly or yearly")
		}
		updates["period"] = *update.Period
	}
	if update.CategoryID != nil {
		updates["category_id"] = *update.CategoryID
	}

	var budget models.Budget
	err := s.uow.Do(ctx, func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", budgetID, userID).
			First(&budget).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrBudgetNotFound
			}
			return err
		}

		if update.CategoryID != nil && *update.CategoryID != budget.CategoryID {
			if _, err := lockBudgetCategory(tx, *update.CategoryID); err != nil {
				return err
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&budget).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.Preload("Category").First(&budget, budget.ID).Error
	})
	if err != nil {
		return nil, budgetError(err)
	}

	return &budget, nil
}

// DeleteBudget removes a budget.
func (s *budgetService) DeleteBudget(ctx context.Context, userID, budgetID uint) error {
	budget, err := s.GetBudgetByID(ctx, userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&models.Budget{}, budget.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// lockBudgetCategory share-locks a category and checks that it can carry a
// budget, which only makes sense for expense spending.
func lockBudgetCategory(tx *gorm.DB, categoryID uint) (*models.Category, error) {
	var category models.Category
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).First(&category, categoryID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, err
	}
	if !category.Type.Accepts(models.TransactionTypeExpense) {
		return nil, apperrors.WithMessage(apperrors.ErrIncompatibleCategory,
			"Budgets can only be set on expense categories")
	}
	return &category, nil
}

func budgetError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrDuplicateBudget
	}
	return serviceError(err)
}

// budgetStatuses computes the current-period status of each budget from the
// user's expense transactions in the budget's category and window.
func budgetStatuses(ctx context.Context, db *gorm.DB, userID uint, budgets []models.Budget, at time.Time) ([]BudgetWithStatus, error) {
	out := make([]BudgetWithStatus, 0, len(budgets))
	for i := range budgets {
		b := &budgets[i]
		start, end := ledger.PeriodWindow(b.Period, at)

		var txns []models.Transaction
		err := db.WithContext(ctx).
			Where("user_id = ? AND category_id = ? AND type = ?", userID, b.CategoryID, models.TransactionTypeExpense).
			Where("date >= ? AND date < ?", start, end).
			Find(&txns).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		out = append(out, BudgetWithStatus{
			Budget: *b,
			Status: ledger.ComputeBudgetStatus(b, txns, at),
		})
	}
	return out, nil
}
