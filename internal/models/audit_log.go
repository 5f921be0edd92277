package models

import "time"

// AuditResource names the kind of row an audit entry points at.
type AuditResource string

const (
	AuditResourceAccount     AuditResource = "account"
	AuditResourceTransaction AuditResource = "transaction"
	AuditResourceBudget      AuditResource = "budget"
	AuditResourceLedger      AuditResource = "ledger"
)

// AuditLog is an append-only record of an operation that touched the ledger.
// UserID is 0 for operator actions such as a reconciliation run.
type AuditLog struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time     `json:"created_at"`
	UserID       uint          `gorm:"not null;index" json:"user_id"`
	Action       string        `gorm:"not null" json:"action"`
	ResourceType AuditResource `gorm:"not null" json:"resource_type"`
	ResourceID   uint          `json:"resource_id,omitempty"`
	IPAddress    string        `json:"ip_address"`
	RequestID    string        `json:"request_id,omitempty"`
	Changes      string        `json:"changes,omitempty"`
}
