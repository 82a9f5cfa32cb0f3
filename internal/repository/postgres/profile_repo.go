package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"projectgateway/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{DB: db}
}

func (r *profileRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Profile, error) {
	profiles := make([]*domain.Profile, 0, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}
	query := `
		SELECT id, display_name, email
		FROM profiles
		WHERE id = ANY($1::uuid[])
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p := &domain.Profile{}
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.Email); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `
		SELECT id, display_name, email
		FROM profiles
		WHERE lower(email) = lower($1)
	`
	p := &domain.Profile{}
	err := r.DB.QueryRowContext(ctx, query, email).Scan(&p.ID, &p.DisplayName, &p.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
