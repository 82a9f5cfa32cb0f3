package domain

import (
	"context"
	"encoding/json"
	"time"
)

// NotificationType identifies what an in-app notification is about.
type NotificationType string

const (
	NotificationMention    NotificationType = "mention"
	NotificationTeamInvite NotificationType = "team_invite"
)

// Notification is an in-app notification for one recipient.
// swagger:model Notification
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Payload   json.RawMessage  `json:"payload" swaggertype:"object"`
	CreatedAt time.Time        `json:"created_at"`
	ReadAt    *time.Time       `json:"read_at"`
}

// MentionPayload is the payload of a mention notification.
type MentionPayload struct {
	TaskID      string `json:"task_id"`
	CommentID   string `json:"comment_id,omitempty"`
	Text        string `json:"text"`
	TaskURL     string `json:"task_url,omitempty"`
	MentionedBy string `json:"mentioned_by"`
}

// TeamInvitePayload is the payload of a team_invite notification.
type TeamInvitePayload struct {
	InvitationID string    `json:"invitation_id"`
	TeamID       string    `json:"team_id"`
	Role         TeamRole  `json:"role"`
	InvitedBy    string    `json:"invited_by"`
	ExpiresAt    time.Time `json:"expires_at"`
	// Token and AcceptURL let the invitee act on the invite without the email.
	Token        string    `json:"token"`
	AcceptURL    string    `json:"accept_url"`
}

// NotificationRepository defines storage operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, params PaginationParams) ([]*Notification, int, error)
	// MarkRead sets read_at once. Returns ErrNotFound when the notification does not belong to userID.
	MarkRead(ctx context.Context, id, userID string, at time.Time) error
}

// MentionInput is a validated mention request.
type MentionInput struct {
	TaskID           string
	CommentID        string
	CommentText      string
	MentionedUserIDs []string
	TaskURL          string
}

// SideEffect is the outcome of one best-effort delivery action.
// swagger:model SideEffect
type SideEffect struct {
	Name   string `json:"name"`
	Target string `json:"target,omitempty"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// FanoutResult is the outcome of a fanout: the primary operation succeeded and each side effect is reported
// individually, so partial failure is observable without failing the request.
// swagger:model FanoutResult
type FanoutResult struct {
	Recipients  int          `json:"recipients"`
	Delivered   int          `json:"delivered"`
	SideEffects []SideEffect `json:"side_effects"`
}

// Record appends a side effect outcome.
func (r *FanoutResult) Record(name, target string, err error) {
	se := SideEffect{Name: name, Target: target, OK: err == nil}
	if err != nil {
		se.Error = err.Error()
	}
	r.SideEffects = append(r.SideEffects, se)
}

// Failed returns the side effects that did not succeed.
func (r *FanoutResult) Failed() []SideEffect {
	var out []SideEffect
	for _, se := range r.SideEffects {
		if !se.OK {
			out = append(out, se)
		}
	}
	return out
}

// NotificationService is the notification fanout.
type NotificationService interface {
	NotifyMention(ctx context.Context, callerID string, in MentionInput) (*FanoutResult, error)
	NotifyTaskEvent(ctx context.Context, callerID string, ev TaskEvent) (*TaskDelivery, error)
	List(ctx context.Context, userID string, unreadOnly bool, params PaginationParams) ([]*Notification, int, error)
	MarkRead(ctx context.Context, userID, id string) error
}
