package domain

import "context"

// Identity is the authenticated caller resolved from a bearer token issued by the session provider.
type Identity struct {
	UserID string
	Email  string
}

// TokenVerifier verifies a bearer token and returns the caller identity.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// Profile is the public part of a user profile held by the application store.
// swagger:model Profile
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// ProfileRepository reads user profiles.
type ProfileRepository interface {
	ListByIDs(ctx context.Context, ids []string) ([]*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
}
