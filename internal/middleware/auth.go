package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vehicare/vehicare-api/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserContextKey holds the verified token claims for the request.
	UserContextKey contextKey = "user"
)

// AuthMiddleware validates bearer tokens and attaches the caller's claims
// to the request context.
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate validates the Authorization header and adds user context.
// Anonymous endpoints (login, register, status) are passed through; the
// handlers behind them never read the user context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSkipAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		token, err := m.authService.ExtractTokenFromHeader(authHeader)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext extracts the verified claims from a request context.
func GetUserFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*auth.Claims)
	return claims, ok
}

// shouldSkipAuth determines if authentication should be skipped for a path.
func shouldSkipAuth(path string) bool {
	skipPaths := []string{
		"/api/auth/login",
		"/api/auth/register",
		"/api/status",
		"/health",
	}

	for _, skipPath := range skipPaths {
		if strings.HasPrefix(path, skipPath) {
			return true
		}
	}
	return false
}

// RateLimitMiddleware provides basic per-IP rate limiting over a sliding
// window. Entries for idle clients are dropped as their windows expire, so
// the map only holds recently active IPs.
type RateLimitMiddleware struct {
	requests map[string][]time.Time
	mu       sync.Mutex
}

// NewRateLimitMiddleware creates a new rate limiting middleware.
func NewRateLimitMiddleware() *RateLimitMiddleware {
	return &RateLimitMiddleware{
		requests: make(map[string][]time.Time),
	}
}

// RateLimit limits each client IP to maxRequests per windowSeconds.
func (m *RateLimitMiddleware) RateLimit(maxRequests int, windowSeconds int) func(http.Handler) http.Handler {
	window := time.Duration(windowSeconds) * time.Second
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)
			now := time.Now()

			m.mu.Lock()
			recent := m.prune(clientIP, now.Add(-window))
			if len(recent) >= maxRequests {
				m.mu.Unlock()
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			m.requests[clientIP] = append(recent, now)
			m.mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

// prune drops timestamps older than cutoff for the given IP and removes the
// entry entirely when nothing remains. Caller holds the lock.
func (m *RateLimitMiddleware) prune(clientIP string, cutoff time.Time) []time.Time {
	kept := m.requests[clientIP][:0]
	for _, ts := range m.requests[clientIP] {
		if !ts.Before(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(m.requests, clientIP)
		return nil
	}
	return kept
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.Split(ip, ",")[0]
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	ip := r.RemoteAddr
	if colonIndex := strings.LastIndex(ip, ":"); colonIndex != -1 {
		ip = ip[:colonIndex]
	}
	return ip
}
