package domain

import (
	"context"
	"time"
)

// InvitationStatus is computed from accepted_at and expires_at; it is never stored.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

// TeamInvitation is an invitation of an email address to a team. Token is the single-use capability.
// swagger:model TeamInvitation
type TeamInvitation struct {
	ID         string     `json:"id"`
	TeamID     string     `json:"team_id"`
	Email      string     `json:"email"`
	Role       TeamRole   `json:"role"`
	Token      string     `json:"-"`
	InvitedBy  string     `json:"invited_by"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at"`
}

// StatusAt returns the invitation status at the given instant.
func (i *TeamInvitation) StatusAt(now time.Time) InvitationStatus {
	if i.AcceptedAt != nil {
		return InvitationAccepted
	}
	if !now.Before(i.ExpiresAt) {
		return InvitationExpired
	}
	return InvitationPending
}

// TeamInvitationRepository defines storage operations for team invitations.
type TeamInvitationRepository interface {
	Create(ctx context.Context, inv *TeamInvitation) error
	GetByToken(ctx context.Context, token string) (*TeamInvitation, error)
	// Accept sets accepted_at and adds userID to the team in one transaction.
	// Returns ErrInvitationNotActionable when the invitation is no longer pending at `at`.
	Accept(ctx context.Context, id, userID string, at time.Time) error
	// DeletePending removes a pending invitation. Returns ErrInvitationNotActionable otherwise.
	DeletePending(ctx context.Context, id string, now time.Time) error
	ListPendingByEmail(ctx context.Context, email string, now time.Time) ([]*TeamInvitation, error)
}

// InvitationService is the invitation lifecycle.
type InvitationService interface {
	Create(ctx context.Context, teamID, callerID, email string, role TeamRole) (*TeamInvitation, []SideEffect, error)
	Get(ctx context.Context, token string) (*TeamInvitation, error)
	Accept(ctx context.Context, token, userID string) (*TeamInvitation, error)
	Decline(ctx context.Context, token string) error
	SyncOnRegistration(ctx context.Context, userID, email string) (int, error)
}
