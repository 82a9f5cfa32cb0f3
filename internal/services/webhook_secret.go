package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"projectgateway/internal/domain"
)

// SlackWebhookPrefix is the only accepted prefix for stored webhook URLs.
const SlackWebhookPrefix = "https://hooks.slack.com/"

type webhookSecretService struct {
	projectRepo    domain.ProjectRepository
	secretRepo     domain.WebhookSecretRepository
	cipher         domain.SecretCipher
	now            func() time.Time
	contextTimeout time.Duration
}

// NewWebhookSecretService returns a WebhookSecretService. A nil cipher means the encryption key is not
// configured; every operation then fails with ErrConfiguration.
func NewWebhookSecretService(projectRepo domain.ProjectRepository, secretRepo domain.WebhookSecretRepository, cipher domain.SecretCipher, timeout time.Duration) domain.WebhookSecretService {
	return &webhookSecretService{
		projectRepo:    projectRepo,
		secretRepo:     secretRepo,
		cipher:         cipher,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func (s *webhookSecretService) authorize(ctx context.Context, callerID, projectID string) error {
	role, err := s.projectRepo.MemberRole(ctx, projectID, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrForbidden
		}
		return fmt.Errorf("resolve project role: %w", err)
	}
	if !role.CanManage() {
		return domain.ErrForbidden
	}
	return nil
}

func (s *webhookSecretService) Get(ctx context.Context, callerID, projectID string) (*string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if s.cipher == nil {
		return nil, fmt.Errorf("%w: webhook secret key is not set", domain.ErrConfiguration)
	}
	if err := s.authorize(ctx, callerID, projectID); err != nil {
		return nil, err
	}
	secret, err := s.secretRepo.GetByProjectID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get webhook secret: %w", err)
	}
	plain, err := s.cipher.Decrypt(secret.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypt webhook secret: %w", err)
	}
	return &plain, nil
}

func (s *webhookSecretService) Put(ctx context.Context, callerID, projectID, webhookURL string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if s.cipher == nil {
		return fmt.Errorf("%w: webhook secret key is not set", domain.ErrConfiguration)
	}
	webhookURL = strings.TrimSpace(webhookURL)
	if !strings.HasPrefix(webhookURL, SlackWebhookPrefix) || len(webhookURL) == len(SlackWebhookPrefix) {
		return domain.NewValidationError("webhookUrl", "must start with "+SlackWebhookPrefix)
	}
	if err := s.authorize(ctx, callerID, projectID); err != nil {
		return err
	}
	ciphertext, err := s.cipher.Encrypt(webhookURL)
	if err != nil {
		return fmt.Errorf("encrypt webhook secret: %w", err)
	}
	secret := &domain.WebhookSecret{
		ProjectID:  projectID,
		Ciphertext: ciphertext,
		UpdatedBy:  callerID,
		UpdatedAt:  s.now().UTC(),
	}
	if err := s.secretRepo.Upsert(ctx, secret); err != nil {
		return fmt.Errorf("store webhook secret: %w", err)
	}
	return nil
}

func (s *webhookSecretService) Resolve(ctx context.Context, projectID string) (string, error) {
	if s.cipher == nil {
		return "", nil
	}
	secret, err := s.secretRepo.GetByProjectID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("get webhook secret: %w", err)
	}
	plain, err := s.cipher.Decrypt(secret.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("decrypt webhook secret: %w", err)
	}
	return plain, nil
}
