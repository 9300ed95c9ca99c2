package service

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"

	"itn-gateway/internal/core/domain"
)

// MD5SignatureService implements ports.SignatureService with the gateway's
// MD5-over-canonical-string scheme.
type MD5SignatureService struct{}

// NewMD5SignatureService creates a new signature service.
func NewMD5SignatureService() *MD5SignatureService {
	return &MD5SignatureService{}
}

// Canonicalize builds the signed string for n.
func (s *MD5SignatureService) Canonicalize(n *domain.Notification, passphrase string) string {
	return Canonicalize(n.Fields, passphrase)
}

// Sign computes MD5 of the canonical string's UTF-8 bytes.
// Returns lowercase hex.
func (s *MD5SignatureService) Sign(canonical string) string {
	sum := md5.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the digest and compares it with the signature field.
// A missing or empty signature is always invalid.
func (s *MD5SignatureService) Verify(n *domain.Notification, passphrase string) domain.ValidationResult {
	got, ok := n.Signature()
	if !ok {
		return domain.ValidationSignatureInvalid
	}
	expected := s.Sign(s.Canonicalize(n, passphrase))
	if subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		return domain.ValidationSignatureInvalid
	}
	return domain.ValidationConfirmed
}
