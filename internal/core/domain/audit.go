package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionMarkPaid      AuditAction = "MARK_PAID"
	AuditActionReturnSuccess AuditAction = "RETURN_SUCCESS"
	AuditActionReturnCancel  AuditAction = "RETURN_CANCEL"
)

// AuditLog records a manual or browser-driven change to an application.
// Gateway notifications are not audited here; their trace is the record itself.
type AuditLog struct {
	ID            uuid.UUID   `json:"id"`
	Action        AuditAction `json:"action"`
	ApplicationID string      `json:"application_id"`
	Applied       bool        `json:"applied"`
	Details       string      `json:"details,omitempty"` // JSON string
	IPAddress     string      `json:"ip_address"`
	CreatedAt     time.Time   `json:"created_at"`
}
