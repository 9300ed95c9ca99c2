package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"itn-gateway/internal/adapter/http/dto"
	"itn-gateway/internal/adapter/storage/memory"
	redisStore "itn-gateway/internal/adapter/storage/redis"
	"itn-gateway/internal/core/domain"
	"itn-gateway/internal/core/ports"
	"itn-gateway/internal/core/ports/mocks"
	"itn-gateway/internal/service"
	"itn-gateway/pkg/apperror"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const formContentType = "application/x-www-form-urlencoded"

// --- ITN Handler Tests ---

func TestNotify_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockITN := mocks.NewMockITNService(ctrl)
	h := NewITNHandler(mockITN)

	body := "m_payment_id=42&payment_status=COMPLETE&signature=abc"
	mockITN.EXPECT().Process(gomock.Any(), []byte(body), formContentType).
		Return(&domain.ITNResult{State: domain.ITNStateReconciled, ApplicationID: "42", Paid: true}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/payments/itn", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", formContentType)

	h.Notify(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestNotify_NonPostIsAcknowledged(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewITNHandler(mocks.NewMockITNService(ctrl))

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodPut} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(method, "/api/v1/payments/itn", nil)

		h.Notify(c)

		assert.Equal(t, http.StatusOK, w.Code, method)
	}
}

func TestNotify_Rejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockITN := mocks.NewMockITNService(ctrl)
	h := NewITNHandler(mockITN)

	mockITN.EXPECT().Process(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInvalidSignature())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("signature=bad"))

	h.Notify(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid signature", w.Body.String())
}

func TestNotify_StorageFailureIsRetryable(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockITN := mocks.NewMockITNService(ctrl)
	h := NewITNHandler(mockITN)

	mockITN.EXPECT().Process(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrStorageFailure(errors.New("connection refused")))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("m_payment_id=42"))

	h.Notify(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server error", w.Body.String())
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestNotify_BodyTooLarge(t *testing.T) {
	ctrl := gomock.NewController(t)
	router := SetupRouter(RouterDeps{
		ITNSvc:      mocks.NewMockITNService(ctrl),
		ReturnSvc:   mocks.NewMockReturnService(ctrl),
		MaxBodySize: 16,
		Logger:      zerolog.Nop(),
	})

	big := strings.Repeat("a", 64)

	// declared length
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/itn", strings.NewReader(big))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// undeclared length fails on read
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/payments/itn", io.NopCloser(strings.NewReader(big)))
	req.ContentLength = -1
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

// --- Return Handler Tests ---

func TestReturn_RedirectsAfterCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockReturn := mocks.NewMockReturnService(ctrl)
	h := NewReturnHandler(mockReturn, "https://example.org/thanks")

	mockReturn.EXPECT().HandleReturn(gomock.Any(), domain.ReturnCancel, "42", gomock.Any()).Return(true, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/payments/return?pay=CANCEL&pid=%2042%20", nil)

	h.Return(c)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.org/thanks", w.Header().Get("Location"))
}

func TestReturn_DefaultRedirect(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockReturn := mocks.NewMockReturnService(ctrl)
	h := NewReturnHandler(mockReturn, "")

	mockReturn.EXPECT().HandleReturn(gomock.Any(), domain.ReturnSuccess, "42", gomock.Any()).Return(false, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/payments/return?pay=success&pid=42", nil)

	h.Return(c)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestReturn_InvalidQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewReturnHandler(mocks.NewMockReturnService(ctrl), "/")

	for _, q := range []string{"", "?pay=success", "?pid=42", "?pay=refund&pid=42", "?pay=success&pid=42;DROP"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/payments/return"+q, nil)

		h.Return(c)

		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, "Missing or invalid pay/pid", w.Body.String(), q)
	}
}

func TestReturn_StorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockReturn := mocks.NewMockReturnService(ctrl)
	h := NewReturnHandler(mockReturn, "/")

	mockReturn.EXPECT().HandleReturn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(false, apperror.ErrStorageFailure(errors.New("down")))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/payments/return?pay=success&pid=42", nil)

	h.Return(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Location"))
}

// --- Admin Handler Tests ---

func TestMarkPaid_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAdmin := mocks.NewMockAdminService(ctrl)
	h := NewAdminHandler(mockAdmin)

	at := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	ref := "1089250"
	mockAdmin.EXPECT().MarkPaid(gomock.Any(), "42", "s3cret", gomock.Any()).
		Return(&domain.ApplicationRecord{ID: "42", Paid: true, PaymentReference: &ref, PaymentDate: &at}, nil)

	body, _ := json.Marshal(dto.MarkPaidRequest{AdminPassword: "s3cret"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/admin/applications/42/paid", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	h.MarkPaid(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "42", data["id"])
	assert.Equal(t, true, data["paid"])
	assert.Equal(t, "1089250", data["payment_reference"])
	assert.Equal(t, "2026-02-01T08:00:00Z", data["payment_date"])
}

func TestMarkPaid_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewAdminHandler(mocks.NewMockAdminService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	h.MarkPaid(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkPaid_WrongSecret(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAdmin := mocks.NewMockAdminService(ctrl)
	h := NewAdminHandler(mockAdmin)

	mockAdmin.EXPECT().MarkPaid(gomock.Any(), "42", "guess", gomock.Any()).Return(nil, apperror.ErrInvalidAdminSecret())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"admin_password":"guess"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	h.MarkPaid(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AUTH_001", resp["error_code"])
}

// --- Health Check Tests ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(ctx context.Context) error { return s.err }
func (s stubChecker) Name() string                   { return s.name }

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgresql"})(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgresql"}, stubChecker{name: "redis", err: errors.New("dial tcp: refused")})(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	deps := resp["dependencies"].(map[string]interface{})
	assert.Equal(t, "unhealthy", deps["redis"].(map[string]interface{})["status"])
}

// --- Router Tests ---

func TestRouter_AdminDisabledWithoutService(t *testing.T) {
	ctrl := gomock.NewController(t)
	router := SetupRouter(RouterDeps{
		ITNSvc:    mocks.NewMockITNService(ctrl),
		ReturnSvc: mocks.NewMockReturnService(ctrl),
		Logger:    zerolog.Nop(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/applications/42/paid", strings.NewReader(`{"admin_password":"x"}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_ReturnIsRateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockReturn := mocks.NewMockReturnService(ctrl)
	mockReturn.EXPECT().HandleReturn(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	router := SetupRouter(RouterDeps{
		ITNSvc:         mocks.NewMockITNService(ctrl),
		ReturnSvc:      mockReturn,
		RateLimitStore: redisStore.NewRateLimitStore(client),
		Logger:         zerolog.Nop(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/return?pay=success&pid=42", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "30", w.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

// --- End-to-end flow ---

const flowPassphrase = "jt7NOE43FZPn"

func signedForm(t *testing.T, fields []domain.Field) string {
	t.Helper()
	parts := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		parts = append(parts, f.Name+"="+url.QueryEscape(f.Value))
	}
	sig := service.NewMD5SignatureService().Sign(service.Canonicalize(fields, flowPassphrase))
	return strings.Join(append(parts, "signature="+sig), "&")
}

func setupFlowRouter(t *testing.T, verdict string) (*gin.Engine, *memory.ApplicationStore) {
	t.Helper()
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(verdict))
	}))
	t.Cleanup(gateway.Close)

	log := zerolog.Nop()
	store := memory.NewApplicationStore("42")
	auditSvc := service.NewAuditService(nil, log)
	itnSvc := service.NewITNService(
		service.ITNConfig{Passphrase: flowPassphrase, Checks: []service.NotificationCheck{service.MerchantCheck("10000100")}},
		service.NewMD5SignatureService(),
		service.NewGatewayAttestor(gateway.URL, service.NewAttestationClient(time.Second), log),
		service.NewReconciliationService(store, nil, log),
		log,
	)

	router := SetupRouter(RouterDeps{
		ITNSvc:         itnSvc,
		ReturnSvc:      service.NewReturnService(store, auditSvc, log),
		HealthCheckers: []ports.HealthChecker{},
		RedirectURL:    "/",
		Logger:         log,
	})
	return router, store
}

func flowFields() []domain.Field {
	return []domain.Field{
		{Name: "m_payment_id", Value: "42"},
		{Name: "pf_payment_id", Value: "1089250"},
		{Name: "payment_status", Value: "COMPLETE"},
		{Name: "item_name", Value: "Mentorship 2026"},
		{Name: "amount_gross", Value: "350.00"},
		{Name: "amount_fee", Value: "-8.05"},
		{Name: "amount_net", Value: "341.95"},
		{Name: "merchant_id", Value: "10000100"},
	}
}

func postITN(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/itn", strings.NewReader(body))
	req.Header.Set("Content-Type", formContentType)
	router.ServeHTTP(w, req)
	return w
}

func TestFlow_CompleteThenLateCancel(t *testing.T) {
	router, store := setupFlowRouter(t, "VALID")

	w := postITN(router, signedForm(t, flowFields()))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "OK", w.Body.String())

	rec, ok := store.Get("42")
	require.True(t, ok)
	assert.True(t, rec.Paid)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/return?pay=cancel&pid=42", nil))
	assert.Equal(t, http.StatusFound, w.Code)

	rec, _ = store.Get("42")
	assert.True(t, rec.Paid, "a late cancel must not undo a confirmed payment")
	require.NotNil(t, rec.PaymentReference)
	assert.Equal(t, "1089250", *rec.PaymentReference)
}

func TestFlow_TamperedNotificationIsRejected(t *testing.T) {
	router, store := setupFlowRouter(t, "VALID")

	body := strings.Replace(signedForm(t, flowFields()), "amount_gross=350.00", "amount_gross=1.00", 1)
	w := postITN(router, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	rec, _ := store.Get("42")
	assert.False(t, rec.Paid)
}

func TestFlow_GatewaySaysInvalid(t *testing.T) {
	router, store := setupFlowRouter(t, "INVALID")

	w := postITN(router, signedForm(t, flowFields()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	rec, _ := store.Get("42")
	assert.False(t, rec.Paid)
}

func TestFlow_MerchantMismatch(t *testing.T) {
	router, store := setupFlowRouter(t, "VALID")

	fields := flowFields()
	fields[7].Value = "99999999"
	w := postITN(router, signedForm(t, fields))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	rec, _ := store.Get("42")
	assert.False(t, rec.Paid)
}

func TestFlow_UnknownReference(t *testing.T) {
	router, _ := setupFlowRouter(t, "VALID")

	fields := flowFields()
	fields[0].Value = "404"
	w := postITN(router, signedForm(t, fields))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
