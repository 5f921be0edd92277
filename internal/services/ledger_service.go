package services

import (
	"context"

	"gorm.io/gorm"

	"fintrack/internal/database"
	"fintrack/internal/ledger"
)

// ledgerService exposes ledger maintenance to the admin endpoints.
type ledgerService struct {
	uow database.UnitOfWork
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB) LedgerServicer {
	return &ledgerService{uow: database.NewUnitOfWork(db)}
}

// Reconcile checks every account balance against its transactions and,
// with fix set, corrects the ones that drifted.
func (s *ledgerService) Reconcile(ctx context.Context, fix bool) (*ledger.ReconcileReport, error) {
	report, err := ledger.Reconcile(ctx, s.uow, fix)
	if err != nil {
		return nil, serviceError(err)
	}
	return report, nil
}
