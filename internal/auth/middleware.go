package auth

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/richat-partners/staffing-api/internal/config"
	"go.uber.org/zap"
)

// APIKeyHeader carries the static admin key
const APIKeyHeader = "X-API-Key"

// Middleware authenticates administrative requests with the static API key
type Middleware struct {
	apiKey string
	logger *zap.Logger
}

// NewMiddleware creates a new authentication middleware.
// An empty key rejects every request.
func NewMiddleware(cfg *config.ApiKeyConfig, logger *zap.Logger) *Middleware {
	if cfg.Value == "" {
		logger.Warn("admin API key is not configured, all /api/v1 requests will be rejected")
	}
	return &Middleware{
		apiKey: cfg.Value,
		logger: logger,
	}
}

// Authenticate rejects requests without a valid X-API-Key header
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		key := r.Header.Get(APIKeyHeader)
		if key == "" {
			unauthorized(w, "missing API key")
			return
		}
		if !m.validateAPIKey(key) {
			m.logger.Warn("invalid API key attempt",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			unauthorized(w, "invalid API key")
			return
		}

		caller := &Caller{Name: "admin", Method: "api_key"}
		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("auth_type", caller.Method),
			zap.Duration("auth_duration", time.Since(start)),
		)

		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"type":"unauthorized","title":"Unauthorized","status":401,"detail":"` + detail + `"}`))
}
