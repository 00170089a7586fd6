package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Config holds rate limiting configuration. This middleware guards
// against abusive clients at the IP level; the per-account resend
// throttle is separate and lives in the verification flow.
type Config struct {
	// Per-IP rate limiting across all routes
	PerIPEnabled    bool
	PerIPCapacity   int
	PerIPRefillRate float64 // requests per second

	// Endpoint-specific limits, keyed by "METHOD /path"
	EndpointLimits map[string]EndpointLimit

	// How long to keep inactive buckets in memory
	BucketTTL time.Duration
}

// EndpointLimit defines rate limits for a specific endpoint
type EndpointLimit struct {
	Capacity   int
	RefillRate float64
}

// DefaultConfig returns a sensible default configuration with tighter
// limits on the routes that create accounts or send email.
func DefaultConfig() *Config {
	return &Config{
		// Per-IP: 100 requests per minute
		PerIPEnabled:    true,
		PerIPCapacity:   100,
		PerIPRefillRate: 100.0 / 60.0,

		BucketTTL: 1 * time.Hour,

		EndpointLimits: map[string]EndpointLimit{
			"POST /register/guest": {
				Capacity:   10,
				RefillRate: 10.0 / 60.0,
			},
			"POST /verify/guest/resend": {
				Capacity:   10,
				RefillRate: 10.0 / 60.0,
			},
			"POST /login": {
				Capacity:   20,
				RefillRate: 20.0 / 60.0,
			},
		},
	}
}

// Middleware holds the rate limiting middleware state
type Middleware struct {
	config           *Config
	ipLimiter        *RateLimiter
	endpointLimiters map[string]*RateLimiter
}

// NewMiddleware creates a new rate limiting middleware
func NewMiddleware(config *Config) *Middleware {
	if config == nil {
		config = DefaultConfig()
	}

	m := &Middleware{
		config:           config,
		endpointLimiters: make(map[string]*RateLimiter),
	}

	if config.PerIPEnabled {
		m.ipLimiter = NewRateLimiter(
			config.PerIPCapacity,
			config.PerIPRefillRate,
			config.BucketTTL,
		)
	}

	for endpoint, limit := range config.EndpointLimits {
		m.endpointLimiters[endpoint] = NewRateLimiter(
			limit.Capacity,
			limit.RefillRate,
			config.BucketTTL,
		)
	}

	return m
}

// Handler returns the rate limiting middleware handler
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getClientIP(r)

		if m.config.PerIPEnabled && ip != "" && !m.ipLimiter.Allow(ip) {
			m.rateLimitExceeded(w, r, "ip")
			return
		}

		endpointKey := r.Method + " " + r.URL.Path
		if limiter, exists := m.endpointLimiters[endpointKey]; exists {
			if !limiter.Allow(ip + ":" + endpointKey) {
				m.rateLimitExceeded(w, r, "endpoint")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) rateLimitExceeded(w http.ResponseWriter, r *http.Request, limitType string) {
	slog.Warn("Rate limit exceeded",
		"type", limitType,
		"ip", getClientIP(r),
		"path", r.URL.Path,
		"method", r.Method,
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	fmt.Fprintf(w, `{"error":"Too many requests, please try again later","code":"RATE_LIMIT_EXCEEDED","type":%q}`, limitType)
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "IP:port"
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
