package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenBucket_Allow(t *testing.T) {
	// Capacity 5, refill rate 1 token/second
	tb := NewTokenBucket(5, 1.0)

	// Should allow 5 requests immediately (burst capacity)
	for i := 0; i < 5; i++ {
		if !tb.Allow() {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 6th request should be denied (bucket empty)
	if tb.Allow() {
		t.Error("6th request should be denied")
	}
}

func TestTokenBucket_Tokens(t *testing.T) {
	tb := NewTokenBucket(10, 1.0)

	if tokens := tb.Tokens(); tokens != 10.0 {
		t.Errorf("Expected 10 tokens, got %f", tokens)
	}

	tb.Allow()

	if tokens := tb.Tokens(); tokens != 9.0 {
		t.Errorf("Expected 9 tokens after one request, got %f", tokens)
	}
}

func TestRateLimiter_PerKey(t *testing.T) {
	rl := NewRateLimiter(2, 1.0, 0)

	// Each key gets its own bucket
	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Error("First two requests for a key should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("Third request for a key should be denied")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("A different key should have its own budget")
	}
}

func TestRateLimiter_Reset(t *testing.T) {
	rl := NewRateLimiter(1, 1.0, 0)

	rl.Allow("1.2.3.4")
	if rl.Allow("1.2.3.4") {
		t.Error("Bucket should be empty")
	}

	rl.Reset("1.2.3.4")
	if !rl.Allow("1.2.3.4") {
		t.Error("Request should be allowed after reset")
	}
}

func TestMiddleware_EndpointLimit(t *testing.T) {
	m := NewMiddleware(&Config{
		EndpointLimits: map[string]EndpointLimit{
			"POST /verify/guest/resend": {Capacity: 2, RefillRate: 0.001},
		},
		BucketTTL: time.Hour,
	})

	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doRequest := func(path string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "1.2.3.4:5678"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := doRequest("/verify/guest/resend"); code != http.StatusOK {
		t.Errorf("First request should pass, got %d", code)
	}
	if code := doRequest("/verify/guest/resend"); code != http.StatusOK {
		t.Errorf("Second request should pass, got %d", code)
	}
	if code := doRequest("/verify/guest/resend"); code != http.StatusTooManyRequests {
		t.Errorf("Third request should be limited, got %d", code)
	}

	// Other routes are untouched by the endpoint limit
	if code := doRequest("/login"); code != http.StatusOK {
		t.Errorf("Unlimited route should pass, got %d", code)
	}
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	if ip := getClientIP(req); ip != "10.0.0.1" {
		t.Errorf("Expected RemoteAddr IP, got %q", ip)
	}

	req.Header.Set("X-Real-IP", "10.0.0.2")
	if ip := getClientIP(req); ip != "10.0.0.2" {
		t.Errorf("Expected X-Real-IP, got %q", ip)
	}

	req.Header.Set("X-Forwarded-For", "10.0.0.3, 10.0.0.4")
	if ip := getClientIP(req); ip != "10.0.0.3" {
		t.Errorf("Expected first X-Forwarded-For entry, got %q", ip)
	}
}
