package domain

import (
	"context"
	"time"
)

// WebhookSecret is a project's encrypted outbound Slack webhook URL.
type WebhookSecret struct {
	ProjectID  string
	Ciphertext string
	UpdatedBy  string
	UpdatedAt  time.Time
}

// WebhookSecretRepository stores one secret per project.
type WebhookSecretRepository interface {
	Upsert(ctx context.Context, s *WebhookSecret) error
	GetByProjectID(ctx context.Context, projectID string) (*WebhookSecret, error)
}

// SecretCipher encrypts small secrets for storage at rest.
type SecretCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// WebhookSecretService reads and writes project webhook URLs.
type WebhookSecretService interface {
	Get(ctx context.Context, callerID, projectID string) (*string, error)
	Put(ctx context.Context, callerID, projectID, webhookURL string) error
	// Resolve returns the decrypted URL for internal delivery without an authorization check; "" when unset.
	Resolve(ctx context.Context, projectID string) (string, error)
}
