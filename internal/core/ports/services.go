package ports

import (
	"context"

	"itn-gateway/internal/core/domain"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService reproduces the gateway's MD5 signing scheme.
type SignatureService interface {
	// Canonicalize builds the exact string the gateway signed.
	Canonicalize(n *domain.Notification, passphrase string) string
	// Sign returns the lowercase hex digest of a canonical string.
	Sign(canonical string) string
	// Verify checks the notification's own signature field.
	Verify(n *domain.Notification, passphrase string) domain.ValidationResult
}

// Attestor confirms a notification with the gateway out-of-band.
type Attestor interface {
	// Attest replays body to the gateway. A non-nil error explains a rejection.
	Attest(ctx context.Context, body []byte, contentType string) (domain.ValidationResult, error)
}

// HashService handles secret hashing (Argon2id).
type HashService interface {
	Hash(secret string) (string, error)
	Verify(secret string, hash string) (bool, error)
}

// --- Service Ports (Business Logic) ---

// ReconciliationService applies a verified notification to its application.
type ReconciliationService interface {
	Reconcile(ctx context.Context, n *domain.Notification) (*domain.ApplicationRecord, error)
}

// ITNService runs the full notification pipeline for one delivery.
type ITNService interface {
	Process(ctx context.Context, body []byte, contentType string) (*domain.ITNResult, error)
}

// AdminService holds the manual override actions.
type AdminService interface {
	MarkPaid(ctx context.Context, id string, secret string, clientIP string) (*domain.ApplicationRecord, error)
}

// ReturnService handles the payer's browser coming back from the gateway.
type ReturnService interface {
	HandleReturn(ctx context.Context, outcome domain.ReturnOutcome, id string, clientIP string) (bool, error)
}

// AuditService records audited actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
