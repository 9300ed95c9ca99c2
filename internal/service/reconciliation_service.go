package service

import (
	"context"
	"errors"
	"time"

	"itn-gateway/internal/core/domain"
	"itn-gateway/internal/core/ports"
	"itn-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

type reconciliationService struct {
	repo   ports.ApplicationRepository
	encSvc ports.EncryptionService
	now    func() time.Time
	log    zerolog.Logger
}

// NewReconciliationService creates the service that applies verified
// notifications. When encSvc is nil the token is stored as received.
func NewReconciliationService(
	repo ports.ApplicationRepository,
	encSvc ports.EncryptionService,
	log zerolog.Logger,
) ports.ReconciliationService {
	return &reconciliationService{
		repo:   repo,
		encSvc: encSvc,
		now:    time.Now,
		log:    log,
	}
}

// Reconcile writes one notification to its application record with a single
// conditional update. Only COMPLETE sets paid; nothing here clears it.
func (s *reconciliationService) Reconcile(ctx context.Context, n *domain.Notification) (*domain.ApplicationRecord, error) {
	id, ok := n.CorrelationID()
	if !ok {
		return nil, apperror.ErrReferenceMissing()
	}

	update := domain.NewPaymentUpdate(n, s.now())

	if update.PaymentToken != nil && s.encSvc != nil {
		enc, err := s.encSvc.Encrypt(*update.PaymentToken)
		if err != nil {
			return nil, apperror.ErrEncryptionFailure(err)
		}
		update.PaymentToken = &enc
	}

	record, err := s.repo.ApplyPayment(ctx, id, update)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.ErrStorageFailure(err)
	}
	if record == nil {
		return nil, apperror.ErrUnknownReference(id)
	}

	s.log.Info().
		Str("application_id", record.ID).
		Str("payment_status", string(n.Status())).
		Bool("complete", update.Complete).
		Bool("paid", record.Paid).
		Msg("reconcile: application updated")

	return record, nil
}
