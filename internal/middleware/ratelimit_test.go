package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/citizenslab/citizens-chat/internal/ratelimit"
)

func newTestLimiter() *ratelimit.MemoryRateLimiter {
	return ratelimit.NewMemoryRateLimiter(&ratelimit.Config{
		WindowSize:    time.Minute,
		MaxAttempts:   3,
		CleanupPeriod: time.Hour,
		BanDuration:   time.Minute,
	})
}

func TestAuthSuccessMiddlewareResetsAttempts(t *testing.T) {
	limiter := newTestLimiter()
	defer limiter.Close()

	// Burn two failed attempts from the same client.
	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.1")

	handler := AuthSuccessMiddleware(limiter, "login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	handler.ServeHTTP(httptest.NewRecorder(), r)

	_, info := limiter.Allow("10.0.0.1")
	if info.Remaining != 2 {
		t.Fatalf("expected counter reset after successful auth, got %d remaining", info.Remaining)
	}
}

func TestAuthSuccessMiddlewareKeepsAttemptsOnFailure(t *testing.T) {
	limiter := newTestLimiter()
	defer limiter.Close()

	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.1")

	handler := AuthSuccessMiddleware(limiter, "login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	r := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	handler.ServeHTTP(httptest.NewRecorder(), r)

	_, info := limiter.Allow("10.0.0.1")
	if info.Remaining != 0 {
		t.Fatalf("failed auth must not reset the counter, got %d remaining", info.Remaining)
	}
}
