package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectgateway/internal/domain"
)

func TestProjectRepository_MemberRole(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		err     error
		want    domain.TeamRole
		wantErr error
	}{
		{name: "owner", rows: sqlmock.NewRows([]string{"role"}).AddRow("owner"), want: domain.TeamRoleOwner},
		{name: "admin member", rows: sqlmock.NewRows([]string{"role"}).AddRow("admin"), want: domain.TeamRoleAdmin},
		{name: "not a member", rows: sqlmock.NewRows([]string{"role"}).AddRow(nil), wantErr: domain.ErrNotFound},
		{name: "unknown project", err: sql.ErrNoRows, wantErr: domain.ErrNotFound},
		{name: "db error", err: sql.ErrConnDone, wantErr: sql.ErrConnDone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			q := mock.ExpectQuery(`SELECT CASE WHEN t.owner_id = \$2 THEN 'owner' ELSE m.role END`).WithArgs("p-1", "u-1")
			if tt.err != nil {
				q.WillReturnError(tt.err)
			} else {
				q.WillReturnRows(tt.rows)
			}

			role, err := NewProjectRepository(db).MemberRole(context.Background(), "p-1", "u-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

func TestProjectRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewProjectRepository(db)

	mock.ExpectQuery(`FROM projects`).WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "name", "slack_channel"}).AddRow("p-1", "t-1", "Web", nil))
	p, err := repo.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, "t-1", p.TeamID)
	assert.Empty(t, p.SlackChannel)

	mock.ExpectQuery(`FROM projects`).WithArgs("p-2").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), "p-2")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskRepository_CanView(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		err     error
		want    bool
		wantErr error
	}{
		{name: "member", rows: sqlmock.NewRows([]string{"exists"}).AddRow(true), want: true},
		{name: "outsider", rows: sqlmock.NewRows([]string{"exists"}).AddRow(false), want: false},
		{name: "unknown task", err: sql.ErrNoRows, wantErr: domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			q := mock.ExpectQuery(`FROM tasks t\s+WHERE t.id = \$1`).WithArgs("task-1", "u-1")
			if tt.err != nil {
				q.WillReturnError(tt.err)
			} else {
				q.WillReturnRows(tt.rows)
			}
			ok, err := NewTaskRepository(db).CanView(context.Background(), "task-1", "u-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestTaskRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs("p-1", "Fix login", domain.TaskPriorityHigh, domain.TaskStatusTodo, due, "bot-1", domain.TaskSourceSlackCommand).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("task-1", created))

	task := &domain.Task{ProjectID: "p-1", Title: "Fix login", Priority: domain.TaskPriorityHigh,
		Status: domain.TaskStatusTodo, DueDate: &due, CreatedBy: "bot-1", Source: domain.TaskSourceSlackCommand}
	require.NoError(t, NewTaskRepository(db).Create(context.Background(), task))
	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, created, task.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
