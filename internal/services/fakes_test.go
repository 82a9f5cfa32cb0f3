package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"projectgateway/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProjectRepo keys roles by projectID+"/"+userID.
type fakeProjectRepo struct {
	projects map[string]*domain.Project
	roles    map[string]domain.TeamRole
	err      error
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.projects[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProjectRepo) MemberRole(_ context.Context, projectID, userID string) (domain.TeamRole, error) {
	if f.err != nil {
		return "", f.err
	}
	if r, ok := f.roles[projectID+"/"+userID]; ok {
		return r, nil
	}
	return "", domain.ErrNotFound
}

type fakeTaskRepo struct {
	mu      sync.Mutex
	viewers map[string][]string
	created []*domain.Task
	err     error
}

func (f *fakeTaskRepo) Create(_ context.Context, t *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	t.ID = fmt.Sprintf("task-%d", len(f.created)+1)
	t.CreatedAt = time.Now()
	f.created = append(f.created, t)
	return nil
}

func (f *fakeTaskRepo) CanView(_ context.Context, taskID, userID string) (bool, error) {
	users, ok := f.viewers[taskID]
	if !ok {
		return false, domain.ErrNotFound
	}
	for _, u := range users {
		if u == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeProfileRepo struct {
	profiles []*domain.Profile
	err      error
}

func (f *fakeProfileRepo) ListByIDs(_ context.Context, ids []string) ([]*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Profile
	for _, p := range f.profiles {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.profiles {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	items   []*domain.Notification
	failFor map[string]error
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[n.UserID]; err != nil {
		return err
	}
	n.ID = fmt.Sprintf("n-%d", len(f.items)+1)
	n.CreatedAt = time.Now()
	f.items = append(f.items, n)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	var matched []*domain.Notification
	for _, n := range f.items {
		if n.UserID == userID && (!unreadOnly || n.ReadAt == nil) {
			matched = append(matched, n)
		}
	}
	start := params.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.Limit()
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id, userID string, at time.Time) error {
	for _, n := range f.items {
		if n.ID == id && n.UserID == userID {
			if n.ReadAt == nil {
				n.ReadAt = &at
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeNotificationRepo) byType(t domain.NotificationType) []*domain.Notification {
	var out []*domain.Notification
	for _, n := range f.items {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

type fakeWebhookSecrets struct {
	urls map[string]string
	err  error
}

func (f *fakeWebhookSecrets) Get(context.Context, string, string) (*string, error) { return nil, nil }
func (f *fakeWebhookSecrets) Put(context.Context, string, string, string) error   { return nil }
func (f *fakeWebhookSecrets) Resolve(_ context.Context, projectID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.urls[projectID], nil
}

type mockChatPoster struct {
	mock.Mock
}

func (m *mockChatPoster) CanPostMessages() bool {
	return m.Called().Bool(0)
}

func (m *mockChatPoster) PostMessage(ctx context.Context, channel, text string) error {
	return m.Called(ctx, channel, text).Error(0)
}

func (m *mockChatPoster) PostWebhook(ctx context.Context, url string, reply domain.ChatReply) error {
	return m.Called(ctx, url, reply).Error(0)
}

type fakePreviewer struct {
	title string
	err   error
}

func (f fakePreviewer) Title(context.Context, string) (string, error) { return f.title, f.err }

// stubLabels echoes values, with a few fixed aliases.
type stubLabels struct{}

func (stubLabels) Label(locale, group, value string) string {
	if locale == "es" && group == domain.LabelGroupPriority && value == "high" {
		return "Alta"
	}
	return value
}

func (stubLabels) CanonicalKey(key string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "priority", "prioridad":
		return "priority", true
	case "due", "vence", "fecha":
		return "due", true
	}
	return "", false
}

func (stubLabels) CanonicalPriority(value string) (domain.TaskPriority, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "high", "alta":
		return domain.TaskPriorityHigh, true
	case "low", "baja":
		return domain.TaskPriorityLow, true
	}
	return "", false
}

type fakeTeamRepo struct {
	teams   map[string]*domain.Team
	members map[string]bool
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	if t, ok := f.teams[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTeamRepo) IsMember(_ context.Context, teamID, userID string) (bool, error) {
	return f.members[teamID+"/"+userID], nil
}

// fakeInvitationRepo mirrors the conditional updates of the Postgres repository.
type fakeInvitationRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.TeamInvitation
	members map[string]domain.TeamRole
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{byID: map[string]*domain.TeamInvitation{}, members: map[string]domain.TeamRole{}}
}

func (f *fakeInvitationRepo) Create(_ context.Context, inv *domain.TeamInvitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv.ID = fmt.Sprintf("inv-%d", len(f.byID)+1)
	inv.CreatedAt = time.Now()
	f.byID[inv.ID] = inv
	return nil
}

func (f *fakeInvitationRepo) GetByToken(_ context.Context, token string) (*domain.TeamInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.byID {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) Accept(_ context.Context, id, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.byID[id]
	if !ok || inv.AcceptedAt != nil || !at.Before(inv.ExpiresAt) {
		return domain.ErrInvitationNotActionable
	}
	inv.AcceptedAt = &at
	if _, exists := f.members[inv.TeamID+"/"+userID]; !exists {
		f.members[inv.TeamID+"/"+userID] = inv.Role
	}
	return nil
}

func (f *fakeInvitationRepo) DeletePending(_ context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.byID[id]
	if !ok || inv.StatusAt(now) != domain.InvitationPending {
		return domain.ErrInvitationNotActionable
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeInvitationRepo) ListPendingByEmail(_ context.Context, email string, now time.Time) ([]*domain.TeamInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.TeamInvitation
	for _, inv := range f.byID {
		if strings.EqualFold(inv.Email, email) && inv.StatusAt(now) == domain.InvitationPending {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeEmailService struct {
	sent []*domain.TeamInvitationEmailData
	err  error
}

func (f *fakeEmailService) SendTeamInvitation(_ context.Context, data *domain.TeamInvitationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

// syncRunner runs fn inline so tests can observe the acknowledgement.
func syncRunner(ctx context.Context, fn func(ctx context.Context)) {
	fn(ctx)
}
