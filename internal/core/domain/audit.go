package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction identifies the kind of operation recorded in the audit trail.
type AuditAction string

const (
	AuditActionRegister           AuditAction = "REGISTER"
	AuditActionLogin              AuditAction = "LOGIN"
	AuditActionWithdrawalRequest  AuditAction = "WITHDRAWAL_REQUEST"
	AuditActionWithdrawalComplete AuditAction = "WITHDRAWAL_COMPLETE"
	AuditActionWithdrawalFail     AuditAction = "WITHDRAWAL_FAIL"
)

// AuditLog is an append-only record of a successful write operation.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	UserID       *int64      `json:"user_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	IPAddress    string      `json:"ip_address"`
	Details      string      `json:"details"` // JSON blob
	CreatedAt    time.Time   `json:"created_at"`
}
