package postgres

import (
	"context"
	"database/sql"
	"errors"

	"projectgateway/internal/domain"
)

type webhookSecretRepository struct {
	DB *sql.DB
}

func NewWebhookSecretRepository(db *sql.DB) domain.WebhookSecretRepository {
	return &webhookSecretRepository{DB: db}
}

func (r *webhookSecretRepository) Upsert(ctx context.Context, s *domain.WebhookSecret) error {
	query := `
		INSERT INTO project_webhook_secrets (project_id, ciphertext, updated_by, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id) DO UPDATE
		SET ciphertext = EXCLUDED.ciphertext,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query, s.ProjectID, s.Ciphertext, s.UpdatedBy, s.UpdatedAt)
	return err
}

func (r *webhookSecretRepository) GetByProjectID(ctx context.Context, projectID string) (*domain.WebhookSecret, error) {
	query := `
		SELECT project_id, ciphertext, updated_by, updated_at
		FROM project_webhook_secrets
		WHERE project_id = $1
	`
	s := &domain.WebhookSecret{}
	var updatedBy sql.NullString
	err := r.DB.QueryRowContext(ctx, query, projectID).Scan(&s.ProjectID, &s.Ciphertext, &updatedBy, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s.UpdatedBy = updatedBy.String
	return s, nil
}
