package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentDeliveries fires redelivered, out-of-order notifications and
// browser cancels at one application. Whatever the interleaving, the single
// COMPLETE must leave the record paid.
func TestConcurrentDeliveries(t *testing.T) {
	router, store := setupFlowRouter(t, "VALID")
	srv := httptest.NewServer(router)
	defer srv.Close()

	complete := signedForm(t, flowFields())
	pendingFields := flowFields()
	pendingFields[2].Value = "PENDING"
	pending := signedForm(t, pendingFields)

	const rounds = 30
	var (
		wg        sync.WaitGroup
		okCount   atomic.Int64
		failCount atomic.Int64
	)

	post := func(body string) {
		defer wg.Done()
		r, err := http.Post(srv.URL+"/api/v1/payments/itn", formContentType, strings.NewReader(body))
		if err != nil {
			failCount.Add(1)
			return
		}
		defer r.Body.Close()
		_, _ = io.ReadAll(r.Body)
		if r.StatusCode == http.StatusOK {
			okCount.Add(1)
		} else {
			failCount.Add(1)
		}
	}

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	cancel := func() {
		defer wg.Done()
		r, err := client.Get(srv.URL + "/api/v1/payments/return?pay=cancel&pid=42")
		if err != nil {
			return
		}
		_ = r.Body.Close()
	}

	for i := 0; i < rounds; i++ {
		wg.Add(3)
		if i%3 == 0 {
			go post(complete)
		} else {
			go post(pending)
		}
		go post(pending)
		go cancel()
	}
	wg.Wait()

	t.Logf("Concurrent deliveries: %d acknowledged, %d failed", okCount.Load(), failCount.Load())
	assert.Equal(t, int64(rounds*2), okCount.Load())
	assert.Zero(t, failCount.Load())

	rec, ok := store.Get("42")
	require.True(t, ok)
	assert.True(t, rec.Paid)
}
