package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/underneath-app/underneath/internal/api/middleware"
)

func TestRateLimit_BlocksAfterLimit(t *testing.T) {
	handler := middleware.RateLimit(3, time.Hour, middleware.KeyByIP)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	do := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/invitations/validate", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do("10.0.0.1:1234"), "request %d should pass", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1234"))

	// A different client has its own bucket.
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234"))
}

func TestRateLimit_ZeroLimitActsAsOne(t *testing.T) {
	handler := middleware.RateLimit(0, time.Hour, middleware.KeyByIP)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/invitations/validate", nil)
		req.RemoteAddr = "10.0.0.3:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}

func TestKeyByIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4321"
	assert.Equal(t, "192.168.1.5", middleware.KeyByIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", middleware.KeyByIP(req))
}
