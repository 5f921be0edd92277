package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/ledger"
	"fintrack/internal/models"
)

// summaryService assembles the dashboard summary.
type summaryService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSummaryService creates a new SummaryServicer.
func NewSummaryService(db *gorm.DB) SummaryServicer {
	return &summaryService{db: db, now: time.Now}
}

// GetSummary returns the user's total balance, this month's income and
// expense, and the status of every budget.
func (s *summaryService) GetSummary(ctx context.Context, userID uint) (*Summary, error) {
	db := s.db.WithContext(ctx)
	now := s.now()

	var accounts []models.Account
	if err := db.Where("user_id = ?", userID).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}

	start, end := ledger.PeriodWindow(models.BudgetPeriodMonthly, now)
	var month []models.Transaction
	if err := db.Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).Find(&month).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	income, expense := ledger.Totals(month)

	var budgets []models.Budget
	if err := db.Preload("Category").Where("user_id = ?", userID).Order("id").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	statuses, err := budgetStatuses(ctx, s.db, userID, budgets, now)
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalBalance: total,
		AccountCount: len(accounts),
		PeriodStart:  start,
		PeriodEnd:    end,
		MonthIncome:  income,
		MonthExpense: expense,
		MonthNet:     income.Sub(expense),
		Budgets:      statuses,
	}, nil
}
