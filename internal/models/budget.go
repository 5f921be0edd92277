package models

import "github.com/shopspring/decimal"

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// Valid reports whether p is a supported period.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodYearly:
		return true
	}
	return false
}

// Budget caps spending in one category per period. What has been spent is
// never stored; it is derived from transactions on every read.
type Budget struct {
	Base
	UserID     uint            `gorm:"not null;uniqueIndex:idx_budgets_user_category" json:"user_id"`
	CategoryID uint            `gorm:"not null;uniqueIndex:idx_budgets_user_category" json:"category_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Period     BudgetPeriod    `gorm:"not null" json:"period"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
