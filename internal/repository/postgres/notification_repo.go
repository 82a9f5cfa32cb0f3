package postgres

import (
	"context"
	"database/sql"
	"time"

	"projectgateway/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{DB: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, payload)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	payload := []byte(n.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	return r.DB.QueryRowContext(ctx, query, n.UserID, n.Type, payload).Scan(&n.ID, &n.CreatedAt)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND ($2 = false OR read_at IS NULL)
	`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, userID, unreadOnly).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, type, payload, created_at, read_at
		FROM notifications
		WHERE user_id = $1 AND ($2 = false OR read_at IS NULL)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, unreadOnly, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	list := make([]*domain.Notification, 0)
	for rows.Next() {
		n := &domain.Notification{}
		var payload []byte
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &payload, &n.CreatedAt, &readAt); err != nil {
			return nil, 0, err
		}
		n.Payload = payload
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// MarkRead keeps the first read_at; repeating it still succeeds.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	query := `
		UPDATE notifications
		SET read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.DB.ExecContext(ctx, query, id, userID, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
