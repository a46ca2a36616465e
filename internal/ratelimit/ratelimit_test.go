package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testConfig() *Config {
	return &Config{
		WindowSize:    100 * time.Millisecond,
		MaxAttempts:   3,
		CleanupPeriod: time.Hour,
		BanDuration:   200 * time.Millisecond,
	}
}

func TestAllowWithinLimit(t *testing.T) {
	rl := NewMemoryRateLimiter(testConfig())
	defer rl.Close()

	for i := 0; i < 3; i++ {
		allowed, info := rl.Allow("1.2.3.4")
		if !allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
		if info.Remaining != 3-(i+1) {
			t.Fatalf("attempt %d: expected %d remaining, got %d", i+1, 3-(i+1), info.Remaining)
		}
	}
}

func TestBanAfterExceedingLimit(t *testing.T) {
	rl := NewMemoryRateLimiter(testConfig())
	defer rl.Close()

	for i := 0; i < 3; i++ {
		rl.Allow("1.2.3.4")
	}

	allowed, info := rl.Allow("1.2.3.4")
	if allowed {
		t.Fatal("fourth attempt should be banned")
	}
	if !info.Banned || info.RetryAfter <= 0 {
		t.Fatalf("expected ban info, got %+v", info)
	}

	// Other identifiers are unaffected.
	if allowed, _ := rl.Allow("5.6.7.8"); !allowed {
		t.Fatal("unrelated identifier should not be banned")
	}
}

func TestWindowResets(t *testing.T) {
	rl := NewMemoryRateLimiter(testConfig())
	defer rl.Close()

	for i := 0; i < 3; i++ {
		rl.Allow("1.2.3.4")
	}
	time.Sleep(110 * time.Millisecond)

	allowed, info := rl.Allow("1.2.3.4")
	if !allowed {
		t.Fatal("attempt after window expiry should be allowed")
	}
	if info.Remaining != 2 {
		t.Fatalf("expected fresh window, got %d remaining", info.Remaining)
	}
}

func TestRecordSuccessClearsAttempts(t *testing.T) {
	rl := NewMemoryRateLimiter(testConfig())
	defer rl.Close()

	rl.Allow("1.2.3.4")
	rl.Allow("1.2.3.4")
	rl.RecordSuccess("1.2.3.4")

	_, info := rl.Allow("1.2.3.4")
	if info.Remaining != 2 {
		t.Fatalf("expected reset counter after success, got %d remaining", info.Remaining)
	}
}

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "10.0.0.1:5000", nil, "10.0.0.1"},
		{"x-forwarded-for", "10.0.0.1:5000", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "203.0.113.7"},
		{"x-forwarded-for chain", "10.0.0.1:5000", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}, "203.0.113.7"},
		{"x-real-ip", "10.0.0.1:5000", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
