package postgres

import (
	"context"
	"database/sql"

	"projectgateway/internal/domain"
)

type taskRepository struct {
	DB *sql.DB
}

func NewTaskRepository(db *sql.DB) domain.TaskRepository {
	return &taskRepository{DB: db}
}

func (r *taskRepository) Create(ctx context.Context, t *domain.Task) error {
	query := `
		INSERT INTO tasks (project_id, title, priority, status, due_date, created_by, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	var due sql.NullTime
	if t.DueDate != nil {
		due = sql.NullTime{Time: *t.DueDate, Valid: true}
	}
	return r.DB.QueryRowContext(ctx, query,
		t.ProjectID, t.Title, t.Priority, t.Status, due, t.CreatedBy, t.Source,
	).Scan(&t.ID, &t.CreatedAt)
}

// CanView reports whether userID owns or belongs to the team of the task's project.
func (r *taskRepository) CanView(ctx context.Context, taskID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM projects p
			JOIN teams tm ON tm.id = p.team_id
			WHERE p.id = t.project_id
			  AND (tm.owner_id = $2 OR EXISTS (
				SELECT 1 FROM team_members m WHERE m.team_id = tm.id AND m.user_id = $2
			  ))
		)
		FROM tasks t
		WHERE t.id = $1
	`
	var ok bool
	err := r.DB.QueryRowContext(ctx, query, taskID, userID).Scan(&ok)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	return ok, nil
}
