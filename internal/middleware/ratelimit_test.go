package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddleware_UnlimitedGeneral(t *testing.T) {
	handler := NewRateLimitMiddleware(0, 1, "/jwt").Handler(okHandler())

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/class", nil))
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
}

func TestRateLimitMiddleware_LimitedStrictPrefix(t *testing.T) {
	handler := NewRateLimitMiddleware(0, 1, "/jwt", "/create-payment-intent").Handler(okHandler())

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/jwt", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	// Burst of one: the immediate retry finds the bucket empty.
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/jwt", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":true,"code":"RATE_LIMITED","message":"too many requests"}`, second.Body.String())

	// Buckets are per client.
	other := httptest.NewRequest(http.MethodPost, "/create-payment-intent", nil)
	other.Header.Set("X-Forwarded-For", "203.0.113.9")
	third := httptest.NewRecorder()
	handler.ServeHTTP(third, other)
	assert.Equal(t, http.StatusOK, third.Code)
}

func TestRateLimitMiddleware_Configuration(t *testing.T) {
	mw := NewRateLimitMiddleware(-1, 0, "/JWT")
	assert.Equal(t, -1, mw.generalRPM)
	assert.Equal(t, 10, mw.strictRPM)
	assert.True(t, mw.isStrict("/jwt"))
	assert.False(t, mw.isStrict("/users"))
}

func TestExtractClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4312"
	assert.Equal(t, "198.51.100.7", extractClientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", extractClientIP(req))

	req.Header.Set("X-Forwarded-For", "192.0.2.1, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", extractClientIP(req))
}
