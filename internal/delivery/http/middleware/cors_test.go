package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorsPolicy_AllowedOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		siteURL string
		origin  string
		want    string
	}{
		{"exact match reflected", []string{"https://app.example.com"}, "", "https://app.example.com", "https://app.example.com"},
		{"prefix match reflected", []string{"http://localhost"}, "", "http://localhost:5173", "http://localhost:5173"},
		{"site url allowed", []string{"http://localhost:5173"}, "https://board.example.com/", "https://board.example.com", "https://board.example.com"},
		{"unmatched gets first configured", []string{"https://app.example.com", "http://localhost:5173"}, "", "https://evil.test", "https://app.example.com"},
		{"missing origin gets first configured", []string{"https://app.example.com"}, "", "", "https://app.example.com"},
		{"empty list gets wildcard", nil, "", "https://evil.test", "*"},
		{"blank entries skipped", []string{" ", ""}, "", "https://evil.test", "*"},
		{"trailing slash trimmed", []string{"https://app.example.com/"}, "", "https://app.example.com", "https://app.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewCorsPolicy(tt.origins, tt.siteURL)
			assert.Equal(t, tt.want, p.AllowedOrigin(tt.origin))
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	p := NewCorsPolicy([]string{"https://app.example.com"}, "")
	nextCalled := false
	handler := CORS(p, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/notifications/mentions", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.False(t, nextCalled)
	assert.Empty(t, rr.Body.String())
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,POST,OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
}

func TestCORS_SubstantiveResponse(t *testing.T) {
	p := NewCorsPolicy([]string{"https://app.example.com"}, "")
	handler := CORS(p, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	req.Header.Set("Origin", "https://other.example.org")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Methods"))
}
