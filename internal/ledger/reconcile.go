package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fintrack/internal/database"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// Drift describes an account whose stored balance differs from the signed
// sum of its transactions.
type Drift struct {
	AccountID  uint            `json:"account_id"`
	UserID     uint            `json:"user_id"`
	Name       string          `json:"name"`
	Recorded   decimal.Decimal `json:"recorded"`
	Expected   decimal.Decimal `json:"expected"`
	Difference decimal.Decimal `json:"difference"`
	Fixed      bool            `json:"fixed"`
}

// ReconcileReport is the outcome of a Reconcile run.
type ReconcileReport struct {
	AccountsChecked int     `json:"accounts_checked"`
	Drifts          []Drift `json:"drifts"`
}

// Reconcile recomputes every account balance from the transaction set and
// reports the accounts that drifted. With fix set, drifting balances are
// rewritten in the same unit of work that measured them.
func Reconcile(ctx context.Context, uow database.UnitOfWork, fix bool) (*ReconcileReport, error) {
	report := &ReconcileReport{Drifts: []Drift{}}

	err := uow.Do(ctx, func(tx *gorm.DB) error {
		var accounts []models.Account
		q := tx.Order("id")
		if fix {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.Find(&accounts).Error; err != nil {
			return storeError(err)
		}

		expected, err := signedSums(tx)
		if err != nil {
			return err
		}

		locked := make(map[uint]*models.Account, len(accounts))
		for i := range accounts {
			a := &accounts[i]
			locked[a.ID] = a

			want := expected[a.ID]
			if a.Balance.Equal(want) {
				continue
			}
			report.Drifts = append(report.Drifts, Drift{
				AccountID:  a.ID,
				UserID:     a.UserID,
				Name:       a.Name,
				Recorded:   a.Balance,
				Expected:   want,
				Difference: want.Sub(a.Balance),
			})
		}
		report.AccountsChecked = len(accounts)

		if !fix {
			return nil
		}
		for i := range report.Drifts {
			d := &report.Drifts[i]
			adj := []Adjustment{{AccountID: d.AccountID, Delta: d.Difference}}
			if err := applyAdjustments(tx, locked, adj); err != nil {
				return err
			}
			d.Fixed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(report.Drifts) > 0 {
		logger.Get().Warnw("ledger drift detected",
			"accounts_checked", report.AccountsChecked,
			"drifts", len(report.Drifts),
			"fixed", fix,
		)
	}
	return report, nil
}

// signedSums streams every transaction and returns the signed total per
// account. Summing happens here rather than in SQL so the arithmetic stays
// exact on every driver.
func signedSums(tx *gorm.DB) (map[uint]decimal.Decimal, error) {
	rows, err := tx.Model(&models.Transaction{}).
		Select("id", "account_id", "type", "amount").
		Rows()
	if err != nil {
		return nil, storeError(err)
	}
	defer rows.Close()

	sums := make(map[uint]decimal.Decimal)
	for rows.Next() {
		var t models.Transaction
		if err := tx.ScanRows(rows, &t); err != nil {
			return nil, storeError(err)
		}
		sums[t.AccountID] = sums[t.AccountID].Add(SignedAmount(t.Type, t.Amount))
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err)
	}
	return sums, nil
}
