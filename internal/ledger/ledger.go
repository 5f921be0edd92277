// Package ledger keeps account balances consistent with the transactions
// that reference them.
//
// Every transaction mutation is reduced to a list of Adjustments (per-account
// balance deltas) by pure functions in this file; Engine applies those
// adjustments together with the transaction row write inside one unit of
// work. Budget spending is never stored: ComputeBudgetStatus derives it from
// the transaction set on every read.
package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// Entry is the part of a transaction that affects a balance.
type Entry struct {
	AccountID uint
	Type      models.TransactionType
	Amount    decimal.Decimal
}

// EntryOf projects t onto its balance-relevant fields.
func EntryOf(t *models.Transaction) Entry {
	return Entry{AccountID: t.AccountID, Type: t.Type, Amount: t.Amount}
}

// Signed returns the entry's amount with the direction implied by its type.
func (e Entry) Signed() decimal.Decimal {
	return SignedAmount(e.Type, e.Amount)
}

// SignedAmount returns +amount for income and -amount for expense.
func SignedAmount(t models.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == models.TransactionTypeExpense {
		return amount.Neg()
	}
	return amount
}

// Adjustment is a balance delta to apply to one account.
type Adjustment struct {
	AccountID uint
	Delta     decimal.Decimal
}

// CreateAdjustments returns the balance effect of inserting e.
func CreateAdjustments(e Entry) []Adjustment {
	return []Adjustment{{AccountID: e.AccountID, Delta: e.Signed()}}
}

// DeleteAdjustments returns the balance effect of removing e.
func DeleteAdjustments(e Entry) []Adjustment {
	return []Adjustment{{AccountID: e.AccountID, Delta: e.Signed().Neg()}}
}

// UpdateAdjustments returns the balance effect of replacing old with next:
// old's signed amount is reversed on its account and next's is applied on
// its own. When both live on the same account the two collapse into one
// delta, and a zero delta yields no adjustment. Adjustments are ordered by
// account id so concurrent writers lock rows in the same order.
func UpdateAdjustments(old, next Entry) []Adjustment {
	if old.AccountID == next.AccountID {
		delta := next.Signed().Sub(old.Signed())
		if delta.IsZero() {
			return nil
		}
		return []Adjustment{{AccountID: old.AccountID, Delta: delta}}
	}

	adjs := []Adjustment{
		{AccountID: old.AccountID, Delta: old.Signed().Neg()},
		{AccountID: next.AccountID, Delta: next.Signed()},
	}
	sort.Slice(adjs, func(i, j int) bool { return adjs[i].AccountID < adjs[j].AccountID })
	return adjs
}

// ValidateAmount checks that amount is a positive value with at most two
// fractional digits.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !models.IsMoney(amount) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput,
			fmt.Sprintf("amount must have at most %d decimal places", models.MoneyScale))
	}
	return nil
}

// ValidateType checks that t is income or expense.
func ValidateType(t models.TransactionType) error {
	if !t.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be income or expense")
	}
	return nil
}

// CheckCategory reports ErrIncompatibleCategory when a category of type ct
// cannot hold a transaction of type tt.
func CheckCategory(ct models.CategoryType, tt models.TransactionType) error {
	if ct.Accepts(tt) {
		return nil
	}
	return apperrors.WithMessage(apperrors.ErrIncompatibleCategory,
		fmt.Sprintf("a %s category cannot be used for %s transactions", ct, tt))
}

// Totals sums the income and expense amounts of txns.
func Totals(txns []models.Transaction) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for i := range txns {
		switch txns[i].Type {
		case models.TransactionTypeIncome:
			income = income.Add(txns[i].Amount)
		case models.TransactionTypeExpense:
			expense = expense.Add(txns[i].Amount)
		}
	}
	return income, expense
}
