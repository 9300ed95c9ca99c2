package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"itn-gateway/internal/core/domain"

	"github.com/rs/zerolog"
)

// attestationValid is the only response body the gateway sends for a genuine notification.
const attestationValid = "VALID"

// maxAttestationResponse caps how much of the gateway reply is read.
const maxAttestationResponse = 4 << 10

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// GatewayAttestor implements ports.Attestor against the gateway's validate endpoint.
type GatewayAttestor struct {
	validateURL string
	httpClient  HTTPClient
	log         zerolog.Logger
}

// NewGatewayAttestor creates an attestor posting to validateURL.
func NewGatewayAttestor(validateURL string, httpClient HTTPClient, log zerolog.Logger) *GatewayAttestor {
	return &GatewayAttestor{
		validateURL: validateURL,
		httpClient:  httpClient,
		log:         log,
	}
}

// NewAttestationClient returns the client used for attestation.
// The timeout bounds the whole round trip, body included.
func NewAttestationClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Attest replays the raw notification body to the gateway once.
// Anything but a 2xx reply whose trimmed body is exactly VALID is a rejection.
func (a *GatewayAttestor) Attest(ctx context.Context, body []byte, contentType string) (domain.ValidationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.validateURL, bytes.NewReader(body))
	if err != nil {
		return domain.ValidationGatewayRejected, fmt.Errorf("building attestation request: %w", err)
	}
	if contentType == "" {
		contentType = "application/x-www-form-urlencoded"
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.log.Warn().Err(err).Str("url", a.validateURL).Msg("attest: request failed")
		return domain.ValidationGatewayRejected, fmt.Errorf("attestation request: %w", err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxAttestationResponse))
	if err != nil {
		a.log.Warn().Err(err).Int("status", resp.StatusCode).Msg("attest: reading response failed")
		return domain.ValidationGatewayRejected, fmt.Errorf("reading attestation response: %w", err)
	}
	verdict := strings.TrimSpace(string(reply))

	a.log.Debug().
		Int("status", resp.StatusCode).
		Str("verdict", verdict).
		Dur("latency", time.Since(start)).
		Msg("attest: gateway replied")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ValidationGatewayRejected, fmt.Errorf("gateway answered status %d", resp.StatusCode)
	}
	if verdict != attestationValid {
		return domain.ValidationGatewayRejected, fmt.Errorf("gateway answered %q", verdict)
	}
	return domain.ValidationConfirmed, nil
}
