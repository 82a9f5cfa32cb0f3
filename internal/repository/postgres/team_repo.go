package postgres

import (
	"context"
	"database/sql"
	"errors"

	"projectgateway/internal/domain"
)

type teamRepository struct {
	DB *sql.DB
}

func NewTeamRepository(db *sql.DB) domain.TeamRepository {
	return &teamRepository{DB: db}
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	query := `
		SELECT id, name, owner_id, created_at
		FROM teams
		WHERE id = $1
	`
	t := &domain.Team{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.OwnerID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *teamRepository) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM teams WHERE id = $1 AND owner_id = $2)
		    OR EXISTS (SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`
	var ok bool
	if err := r.DB.QueryRowContext(ctx, query, teamID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
