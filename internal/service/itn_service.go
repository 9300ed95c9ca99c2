package service

import (
	"context"
	"errors"
	"strings"

	"itn-gateway/internal/core/domain"
	"itn-gateway/internal/core/ports"
	"itn-gateway/pkg/apperror"
	"itn-gateway/pkg/logger"

	"github.com/rs/zerolog"
)

// signaturePrefixLen is how much of a digest reaches the logs.
const signaturePrefixLen = 8

// ITNConfig is the verification configuration injected at construction.
type ITNConfig struct {
	Passphrase string
	Checks     []NotificationCheck
}

type itnService struct {
	cfg       ITNConfig
	sigSvc    ports.SignatureService
	attestor  ports.Attestor
	reconcile ports.ReconciliationService
	log       zerolog.Logger
}

// NewITNService creates the notification pipeline.
func NewITNService(
	cfg ITNConfig,
	sigSvc ports.SignatureService,
	attestor ports.Attestor,
	reconcile ports.ReconciliationService,
	log zerolog.Logger,
) ports.ITNService {
	return &itnService{
		cfg:       cfg,
		sigSvc:    sigSvc,
		attestor:  attestor,
		reconcile: reconcile,
		log:       log,
	}
}

// Process runs received → signature-checked → attested → reconciled.
// Every gate failure returns an *apperror.AppError; only storage and
// unexpected failures are retryable.
func (s *itnService) Process(ctx context.Context, body []byte, contentType string) (*domain.ITNResult, error) {
	s.log.Debug().
		Str("state", string(domain.ITNStateReceived)).
		Int("body_len", len(body)).
		Msg("itn: received")

	n, err := domain.ParseNotification(body)
	if err != nil {
		return nil, s.reject(apperror.ErrMalformedNotification(err), s.log)
	}
	log := s.log.With().
		Str("payment_status", string(n.Status())).
		Str("gateway_id", n.Value(domain.FieldGatewayID)).
		Logger()
	if id, ok := n.CorrelationID(); ok {
		log = log.With().Str("application_id", id).Logger()
	}

	if result := s.sigSvc.Verify(n, s.cfg.Passphrase); result != domain.ValidationConfirmed {
		got, _ := n.Signature()
		expected := s.sigSvc.Sign(s.sigSvc.Canonicalize(n, s.cfg.Passphrase))
		log.Warn().
			Str("state", string(domain.ITNStateRejected)).
			Str("result", result.String()).
			Bool("passphrase_set", strings.TrimSpace(s.cfg.Passphrase) != "").
			Str("signature", logger.Prefix(got, signaturePrefixLen)).
			Str("expected", logger.Prefix(expected, signaturePrefixLen)).
			Msg("itn: signature mismatch")
		return nil, apperror.ErrInvalidSignature()
	}
	log.Debug().Str("state", string(domain.ITNStateSignatureChecked)).Msg("itn: signature verified")

	for _, c := range s.cfg.Checks {
		if err := c.Check(n); err != nil {
			return nil, s.reject(err, log.With().Str("check", c.Name).Logger())
		}
	}

	result, err := s.attestor.Attest(ctx, n.Raw, contentType)
	if result != domain.ValidationConfirmed {
		if err == nil {
			err = errors.New(result.String())
		}
		return nil, s.reject(apperror.ErrAttestationFailed(err), log)
	}
	log.Debug().Str("state", string(domain.ITNStateAttested)).Msg("itn: gateway confirmed")

	record, err := s.reconcile.Reconcile(ctx, n)
	if err != nil {
		return nil, s.reject(err, log)
	}

	log.Info().
		Str("state", string(domain.ITNStateReconciled)).
		Bool("paid", record.Paid).
		Msg("itn: reconciled")

	return &domain.ITNResult{
		State:         domain.ITNStateReconciled,
		ApplicationID: record.ID,
		Status:        n.Status(),
		Paid:          record.Paid,
	}, nil
}

// reject logs err at the state it maps to and returns it as an AppError.
// Anything that is not already an AppError becomes an internal error.
func (s *itnService) reject(err error, log zerolog.Logger) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.InternalError(err)
	}

	state := domain.ITNStateRejected
	event := log.Warn()
	if appErr.Retryable() {
		state = domain.ITNStateErrored
		event = log.Error()
	}
	event.Err(appErr).
		Str("state", string(state)).
		Str("error_code", appErr.Code).
		Msg("itn: " + string(state))

	return appErr
}
