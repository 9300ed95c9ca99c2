package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on error code so callers can use errors.Is against a constructor result.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Retryable reports whether the gateway should redeliver after this error.
func (e *AppError) Retryable() bool {
	return e.HTTPStatus >= http.StatusInternalServerError
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Notification verification (ITN) ----
// All ITN errors are terminal for the gateway: they render as 400.

func ErrInvalidSignature() *AppError {
	return New("ITN_001", "Invalid signature", http.StatusBadRequest)
}

func ErrAttestationFailed(err error) *AppError {
	return Wrap("ITN_002", "Gateway validation failed", http.StatusBadRequest, err)
}

func ErrReferenceMissing() *AppError {
	return New("ITN_003", "Missing payment reference", http.StatusBadRequest)
}

func ErrMerchantMismatch() *AppError {
	return New("ITN_004", "Merchant mismatch", http.StatusBadRequest)
}

func ErrAmountMismatch() *AppError {
	return New("ITN_005", "Amount mismatch", http.StatusBadRequest)
}

func ErrUnknownReference(id string) *AppError {
	return New("ITN_006", fmt.Sprintf("Unknown payment reference %q", id), http.StatusBadRequest)
}

func ErrMalformedNotification(err error) *AppError {
	return Wrap("ITN_007", "Malformed notification", http.StatusBadRequest, err)
}

// ---- Payment return (RET) ----

func ErrInvalidReturn() *AppError {
	return New("RET_001", "Missing or invalid pay/pid", http.StatusBadRequest)
}

// ---- Administration (AUTH) ----

func ErrInvalidAdminSecret() *AppError {
	return New("AUTH_001", "Invalid admin password", http.StatusUnauthorized)
}

func ErrNotFound(entity string) *AppError {
	return New("AUTH_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrStorageFailure(err error) *AppError {
	return Wrap("SYS_001", "Storage failure", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an unexpected error as SYS_000.
func InternalError(err error) *AppError {
	return Wrap("SYS_000", "Server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("REQ_001", message, http.StatusBadRequest)
}
