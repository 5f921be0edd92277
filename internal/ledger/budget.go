package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

var hundred = decimal.NewFromInt(100)

// BudgetStatus is the derived view of a budget for one period.
type BudgetStatus struct {
	Budgeted     decimal.Decimal `json:"budgeted"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	Percentage   float64         `json:"percentage"`
	IsOverBudget bool            `json:"is_over_budget"`
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
}

// PeriodWindow returns the half-open UTC window [start, end) of the period
// containing at. Weeks start on Monday.
func PeriodWindow(period models.BudgetPeriod, at time.Time) (start, end time.Time) {
	at = at.UTC()
	y, m, d := at.Date()

	switch period {
	case models.BudgetPeriodWeekly:
		sinceMonday := (int(at.Weekday()) + 6) % 7
		start = time.Date(y, m, d-sinceMonday, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 7)
	case models.BudgetPeriodYearly:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(1, 0, 0)
	default:
		start = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	}
	return start, end
}

// ComputeBudgetStatus derives what has been spent against b in the period
// containing at. Only expense transactions in b's category dated inside the
// window count; everything else in txns is ignored, so callers may pass a
// superset.
func ComputeBudgetStatus(b *models.Budget, txns []models.Transaction, at time.Time) BudgetStatus {
	start, end := PeriodWindow(b.Period, at)

	spent := decimal.Zero
	for i := range txns {
		t := &txns[i]
		if t.Type != models.TransactionTypeExpense || t.CategoryID == nil || *t.CategoryID != b.CategoryID {
			continue
		}
		date := t.Date.UTC()
		if date.Before(start) || !date.Before(end) {
			continue
		}
		spent = spent.Add(t.Amount)
	}

	status := BudgetStatus{
		Budgeted:     b.Amount,
		Spent:        spent,
		Remaining:    b.Amount.Sub(spent),
		IsOverBudget: spent.GreaterThan(b.Amount),
		PeriodStart:  start,
		PeriodEnd:    end,
	}
	if b.Amount.IsPositive() {
		status.Percentage = spent.Mul(hundred).Div(b.Amount).Round(2).InexactFloat64()
	}
	return status
}
