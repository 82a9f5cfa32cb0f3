package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"projectgateway/internal/domain"
)

type teamInvitationRepository struct {
	DB *sql.DB
}

func NewTeamInvitationRepository(db *sql.DB) domain.TeamInvitationRepository {
	return &teamInvitationRepository{DB: db}
}

const invitationColumns = `id, team_id, email, role, token, invited_by, created_at, expires_at, accepted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row rowScanner) (*domain.TeamInvitation, error) {
	inv := &domain.TeamInvitation{}
	var acceptedAt sql.NullTime
	if err := row.Scan(&inv.ID, &inv.TeamID, &inv.Email, &inv.Role, &inv.Token, &inv.InvitedBy,
		&inv.CreatedAt, &inv.ExpiresAt, &acceptedAt); err != nil {
		return nil, err
	}
	if acceptedAt.Valid {
		t := acceptedAt.Time
		inv.AcceptedAt = &t
	}
	return inv, nil
}

func (r *teamInvitationRepository) Create(ctx context.Context, inv *domain.TeamInvitation) error {
	query := `
		INSERT INTO team_invitations (team_id, email, role, token, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		inv.TeamID, inv.Email, inv.Role, inv.Token, inv.InvitedBy, inv.ExpiresAt,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("invitation token collision: %w", err)
		}
		return err
	}
	return nil
}

func (r *teamInvitationRepository) GetByToken(ctx context.Context, token string) (*domain.TeamInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM team_invitations WHERE token = $1`
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

// Accept marks the invitation accepted and adds the member in one transaction. The conditional
// update lets exactly one of several concurrent accepts win.
func (r *teamInvitationRepository) Accept(ctx context.Context, id, userID string, at time.Time) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var teamID, role string
	err = tx.QueryRowContext(ctx, `
		UPDATE team_invitations
		SET accepted_at = $2
		WHERE id = $1 AND accepted_at IS NULL AND expires_at > $2
		RETURNING team_id, role
	`, id, at).Scan(&teamID, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInvitationNotActionable
		}
		return err
	}

	// An existing member (or the owner) keeps their current role.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role, joined_at)
		SELECT $1, $2, $3, $4
		WHERE NOT EXISTS (SELECT 1 FROM teams WHERE id = $1 AND owner_id = $2)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, teamID, userID, role, at)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *teamInvitationRepository) DeletePending(ctx context.Context, id string, now time.Time) error {
	query := `
		DELETE FROM team_invitations
		WHERE id = $1 AND accepted_at IS NULL AND expires_at > $2
	`
	res, err := r.DB.ExecContext(ctx, query, id, now)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInvitationNotActionable
	}
	return nil
}

func (r *teamInvitationRepository) ListPendingByEmail(ctx context.Context, email string, now time.Time) ([]*domain.TeamInvitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM team_invitations
		WHERE lower(email) = lower($1) AND accepted_at IS NULL AND expires_at > $2
		ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query, email, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]*domain.TeamInvitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}
