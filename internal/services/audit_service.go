package services

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// Audit actions recorded by the handlers.
const (
	AuditCreateAccount     = "CREATE_ACCOUNT"
	AuditUpdateAccount     = "UPDATE_ACCOUNT"
	AuditDeleteAccount     = "DELETE_ACCOUNT"
	AuditCreateTransaction = "CREATE_TRANSACTION"
	AuditUpdateTransaction = "UPDATE_TRANSACTION"
	AuditDeleteTransaction = "DELETE_TRANSACTION"
	AuditCreateBudget      = "CREATE_BUDGET"
	AuditUpdateBudget      = "UPDATE_BUDGET"
	AuditDeleteBudget      = "DELETE_BUDGET"
	AuditReconcileLedger   = "RECONCILE_LEDGER"
)

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer writing to the audit_logs table.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records entry. The request has already succeeded by the time it is
// audited, so failures only produce an error log line.
func (s *auditService) Log(ctx context.Context, entry AuditEntry) {
	row := &models.AuditLog{
		UserID:       entry.UserID,
		Action:       entry.Action,
		ResourceType: entry.Resource,
		ResourceID:   entry.ResourceID,
		IPAddress:    entry.IPAddress,
		RequestID:    entry.RequestID,
	}

	if len(entry.Changes) > 0 {
		data, err := json.Marshal(entry.Changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit changes", "error", err, "action", entry.Action)
		} else {
			row.Changes = string(data)
		}
	}

	// A cancelled request must still leave its audit trail.
	if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(row).Error; err != nil {
		logger.Get().Errorw("failed to write audit log",
			"error", err,
			"action", entry.Action,
			"resource", entry.Resource,
			"resource_id", entry.ResourceID,
			"request_id", entry.RequestID,
		)
	}
}
