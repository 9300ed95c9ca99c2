package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"itn-gateway/internal/core/domain"
	"itn-gateway/internal/core/ports"
	"itn-gateway/pkg/apperror"

	"github.com/rs/zerolog"
)

type returnService struct {
	repo     ports.ApplicationRepository
	auditSvc ports.AuditService
	now      func() time.Time
	log      zerolog.Logger
}

// NewReturnService creates the service behind the payer's browser return.
func NewReturnService(repo ports.ApplicationRepository, auditSvc ports.AuditService, log zerolog.Logger) ports.ReturnService {
	return &returnService{
		repo:     repo,
		auditSvc: auditSvc,
		now:      time.Now,
		log:      log,
	}
}

// HandleReturn annotates an unpaid application. A cancel also clears the
// gateway metadata. Paid rows are left alone, so a late cancel cannot undo a
// confirmed payment. The bool reports whether a row changed.
func (s *returnService) HandleReturn(ctx context.Context, outcome domain.ReturnOutcome, id string, clientIP string) (bool, error) {
	id = strings.TrimSpace(id)
	if !outcome.Valid() || id == "" {
		return false, apperror.ErrInvalidReturn()
	}

	applied, err := s.repo.ApplyReturn(ctx, id, outcome, s.now())
	if err != nil {
		return false, apperror.ErrStorageFailure(err)
	}

	s.log.Info().
		Str("application_id", id).
		Str("outcome", string(outcome)).
		Bool("applied", applied).
		Msg("return: browser came back from gateway")

	action := domain.AuditActionReturnSuccess
	if outcome == domain.ReturnCancel {
		action = domain.AuditActionReturnCancel
	}
	s.auditSvc.Log(ctx, &domain.AuditLog{
		Action:        action,
		ApplicationID: id,
		Applied:       applied,
		Details:       fmt.Sprintf(`{"outcome":%q}`, outcome),
		IPAddress:     clientIP,
	})

	return applied, nil
}
