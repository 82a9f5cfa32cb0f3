package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"projectgateway/internal/domain"
)

// ErrInvalidToken is returned for any bearer token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// JWTAuthority verifies (and, for tooling and tests, issues) HS256 session tokens.
type JWTAuthority struct {
	secret   []byte
	audience string
}

// NewJWTAuthority returns a JWTAuthority for the shared secret. When audience is non-empty,
// tokens must carry it in "aud".
func NewJWTAuthority(secret, audience string) *JWTAuthority {
	return &JWTAuthority{secret: []byte(secret), audience: audience}
}

// Verify implements domain.TokenVerifier.
func (a *JWTAuthority) Verify(token string) (*domain.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &domain.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// Issue signs a token for userID valid for ttl.
func (a *JWTAuthority) Issue(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	}
	if a.audience != "" {
		claims.Audience = jwt.ClaimStrings{a.audience}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}
