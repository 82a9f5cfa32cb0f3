package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTAuthority_IssueAndVerify(t *testing.T) {
	a := NewJWTAuthority("test-secret", "")

	token, err := a.Issue("user-123", "u@example.com", time.Hour)
	require.NoError(t, err)

	id, err := a.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id.UserID)
	assert.Equal(t, "u@example.com", id.Email)
}

func TestJWTAuthority_Verify_rejects(t *testing.T) {
	a := NewJWTAuthority("test-secret", "authenticated")

	good, err := a.Issue("user-1", "", time.Hour)
	require.NoError(t, err)
	_, err = a.Verify(good)
	require.NoError(t, err)

	wrongSecret, err := NewJWTAuthority("other", "authenticated").Issue("user-1", "", time.Hour)
	require.NoError(t, err)
	expired, err := a.Issue("user-1", "", -time.Minute)
	require.NoError(t, err)
	wrongAudience, err := NewJWTAuthority("test-secret", "anon").Issue("user-1", "", time.Hour)
	require.NoError(t, err)
	noSubject, err := a.Issue("", "", time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  "user-1",
		Audience: jwt.ClaimStrings{"authenticated"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "user-1",
		Audience:  jwt.ClaimStrings{"authenticated"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"wrong secret":   wrongSecret,
		"expired":        expired,
		"wrong audience": wrongAudience,
		"missing sub":    noSubject,
		"missing exp":    noExpiry,
		"other alg":      hs512,
		"garbage":        "not.a.jwt",
		"empty":          "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := a.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
