package postgres

import (
	"context"
	"database/sql"
	"errors"

	"projectgateway/internal/domain"
)

type projectRepository struct {
	DB *sql.DB
}

func NewProjectRepository(db *sql.DB) domain.ProjectRepository {
	return &projectRepository{DB: db}
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `
		SELECT id, team_id, name, slack_channel
		FROM projects
		WHERE id = $1
	`
	p := &domain.Project{}
	var channel sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.TeamID, &p.Name, &channel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.SlackChannel = channel.String
	return p, nil
}

// MemberRole resolves the team owner as "owner" and other members through team_members.
func (r *projectRepository) MemberRole(ctx context.Context, projectID, userID string) (domain.TeamRole, error) {
	query := `
		SELECT CASE WHEN t.owner_id = $2 THEN 'owner' ELSE m.role END
		FROM projects p
		JOIN teams t ON t.id = p.team_id
		LEFT JOIN team_members m ON m.team_id = t.id AND m.user_id = $2
		WHERE p.id = $1
	`
	var role sql.NullString
	err := r.DB.QueryRowContext(ctx, query, projectID, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	if !role.Valid || role.String == "" {
		return "", domain.ErrNotFound
	}
	return domain.TeamRole(role.String), nil
}
