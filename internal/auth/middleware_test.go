package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/richat-partners/staffing-api/internal/auth"
	"github.com/richat-partners/staffing-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createTestMiddleware(apiKey string) *auth.Middleware {
	return auth.NewMiddleware(&config.ApiKeyConfig{Value: apiKey}, zap.NewNop())
}

func TestMiddleware_Authenticate_WithAPIKey(t *testing.T) {
	middleware := createTestMiddleware("test-api-key-12345")

	var captured *auth.Caller
	handler := middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenders", nil)
	req.Header.Set("x-api-key", "test-api-key-12345") // header lookup is case-insensitive
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "admin", captured.Name)
	assert.Equal(t, "api_key", captured.Method)
}

func TestMiddleware_Authenticate_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		sent       string
	}{
		{"missing header", "correct-key", ""},
		{"wrong key", "correct-key", "wrong-key"},
		{"prefix of key", "correct-key", "correct"},
		{"no key configured", "", "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := createTestMiddleware(tt.configured).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/tenders", nil)
			if tt.sent != "" {
				req.Header.Set(auth.APIKeyHeader, tt.sent)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.False(t, handlerCalled)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"status":401`)
		})
	}
}

func TestFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	caller, ok := auth.FromContext(req.Context())
	assert.False(t, ok)
	assert.Nil(t, caller)
}
