package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"projectgateway/internal/delivery/http/helpers"
	"projectgateway/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	identity *domain.Identity
	err      error
}

func (f *fakeTokenVerifier) Verify(_ string) (*domain.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func TestRequireAuth(t *testing.T) {
	valid := &fakeTokenVerifier{identity: &domain.Identity{UserID: "user-123", Email: "ana@example.com"}}

	tests := []struct {
		name         string
		authHeader   string
		verifier     domain.TokenVerifier
		wantStatus   int
		wantBodyCode string
		nextCalled   bool
		wantUserID   string
	}{
		{
			name:       "valid token sets identity and calls next",
			authHeader: "Bearer valid-token",
			verifier:   valid,
			wantStatus: http.StatusOK,
			nextCalled: true,
			wantUserID: "user-123",
		},
		{
			name:         "missing authorization header",
			verifier:     valid,
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "invalid authorization format no Bearer prefix",
			authHeader:   "Basic abc",
			verifier:     valid,
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "empty token after Bearer",
			authHeader:   "Bearer ",
			verifier:     valid,
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "verifier returns error",
			authHeader:   "Bearer bad-token",
			verifier:     &fakeTokenVerifier{err: errors.New("token expired")},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var captured *domain.Identity
			next := func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				captured, _ = IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}
			handler := RequireAuth(tt.verifier, discardLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "http://test/notifications", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.nextCalled, nextCalled, "next handler called")
			if tt.wantUserID != "" {
				require.NotNil(t, captured)
				assert.Equal(t, tt.wantUserID, captured.UserID)
			}
			if tt.wantBodyCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestIdentityFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := IdentityFromContext(req.Context())
	assert.False(t, ok)
}
