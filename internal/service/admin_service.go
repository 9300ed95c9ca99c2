package service

import (
	"context"
	"errors"

	"itn-gateway/internal/core/domain"
	"itn-gateway/internal/core/ports"
	"itn-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

type adminService struct {
	repo       ports.ApplicationRepository
	hashSvc    ports.HashService
	auditSvc   ports.AuditService
	secretHash string
	log        zerolog.Logger
}

// NewAdminService creates the manual override service. secretHash is the
// argon2id encoding of the shared admin secret.
func NewAdminService(
	repo ports.ApplicationRepository,
	hashSvc ports.HashService,
	auditSvc ports.AuditService,
	secretHash string,
	log zerolog.Logger,
) ports.AdminService {
	return &adminService{
		repo:       repo,
		hashSvc:    hashSvc,
		auditSvc:   auditSvc,
		secretHash: secretHash,
		log:        log,
	}
}

// MarkPaid sets paid=true on one application after checking the shared secret.
// It is the only path besides a COMPLETE notification that sets paid.
func (s *adminService) MarkPaid(ctx context.Context, id string, secret string, clientIP string) (*domain.ApplicationRecord, error) {
	ok, err := s.hashSvc.Verify(secret, s.secretHash)
	if err != nil {
		s.log.Error().Err(err).Msg("admin: configured secret hash is unusable")
		return nil, apperror.InternalError(err)
	}
	if !ok {
		s.log.Warn().Str("application_id", id).Str("ip", clientIP).Msg("admin: invalid secret")
		return nil, apperror.ErrInvalidAdminSecret()
	}

	record, err := s.repo.MarkPaid(ctx, id)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.ErrStorageFailure(err)
	}
	if record == nil {
		return nil, apperror.ErrNotFound("Application")
	}

	s.auditSvc.Log(ctx, &domain.AuditLog{
		Action:        domain.AuditActionMarkPaid,
		ApplicationID: record.ID,
		Applied:       true,
		IPAddress:     clientIP,
	})

	return record, nil
}
