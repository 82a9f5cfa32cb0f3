package domain

import "context"

// Project is the owning entity for tasks and the per-project Slack configuration.
// swagger:model Project
type Project struct {
	ID           string `json:"id"`
	TeamID       string `json:"team_id"`
	Name         string `json:"name"`
	SlackChannel string `json:"slack_channel"`
}

// ProjectRepository defines read access to projects and the caller's role on them.
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*Project, error)
	// MemberRole returns the caller's role in the project's team, or ErrNotFound when the caller is not a member.
	MemberRole(ctx context.Context, projectID, userID string) (TeamRole, error)
}
