package domain

import (
	"context"
	"time"
)

// TeamRole is a member's role inside a team.
type TeamRole string

const (
	TeamRoleOwner  TeamRole = "owner"
	TeamRoleAdmin  TeamRole = "admin"
	TeamRoleMember TeamRole = "member"
	TeamRoleViewer TeamRole = "viewer"
)

// Invitable reports whether the role can be granted through an invitation.
func (r TeamRole) Invitable() bool {
	switch r {
	case TeamRoleAdmin, TeamRoleMember, TeamRoleViewer:
		return true
	}
	return false
}

// CanManage reports whether the role may manage project integrations.
func (r TeamRole) CanManage() bool {
	return r == TeamRoleOwner || r == TeamRoleAdmin
}

// Team groups users around projects.
// swagger:model Team
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamRepository defines read access to teams.
type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*Team, error)
	// IsMember reports whether userID owns or belongs to the team.
	IsMember(ctx context.Context, teamID, userID string) (bool, error)
}
