package ports

import (
	"context"
	"time"

	"itn-gateway/internal/core/domain"
)

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

// ApplicationRepository applies keyed partial updates to application records.
// Every method is a single conditional write; implementations must not read
// then write without a guard. A nil record with a nil error means no row matched.
type ApplicationRepository interface {
	// ApplyPayment sets paid=true plus metadata when u.Complete, otherwise
	// writes metadata only and leaves paid untouched.
	ApplyPayment(ctx context.Context, id string, u domain.PaymentUpdate) (*domain.ApplicationRecord, error)
	// MarkPaid is the manual override: paid=true, nothing else.
	MarkPaid(ctx context.Context, id string) (*domain.ApplicationRecord, error)
	// ApplyReturn records a browser return. It only touches rows that are not
	// paid and reports whether a row was changed.
	ApplyReturn(ctx context.Context, id string, outcome domain.ReturnOutcome, at time.Time) (bool, error)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
