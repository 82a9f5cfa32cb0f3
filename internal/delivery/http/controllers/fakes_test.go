package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"projectgateway/internal/delivery/http/helpers"
	"projectgateway/internal/delivery/http/middleware"
	"projectgateway/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testUserID    = "11111111-1111-1111-1111-111111111111"
	testTaskID    = "22222222-2222-2222-2222-222222222222"
	testProjectID = "33333333-3333-3333-3333-333333333333"
	testTeamID    = "44444444-4444-4444-4444-444444444444"
	otherUserID   = "55555555-5555-5555-5555-555555555555"
)

// authed returns a request carrying the test identity, as RequireAuth would.
func authed(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithIdentity(req.Context(), &domain.Identity{UserID: testUserID, Email: "ana@example.com"}))
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) (json.RawMessage, *helpers.APIError) {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	return env.Data, env.Error
}

type fakeNotificationService struct {
	mentionResult *domain.FanoutResult
	mentionErr    error
	lastCaller    string
	lastMention   domain.MentionInput

	delivery      *domain.TaskDelivery
	taskErr       error
	lastTaskEvent domain.TaskEvent

	listItems  []*domain.Notification
	listTotal  int
	listErr    error
	lastUnread bool
	lastParams domain.PaginationParams

	markErr    error
	lastMarkID string
}

func (f *fakeNotificationService) NotifyMention(_ context.Context, callerID string, in domain.MentionInput) (*domain.FanoutResult, error) {
	f.lastCaller = callerID
	f.lastMention = in
	return f.mentionResult, f.mentionErr
}

func (f *fakeNotificationService) NotifyTaskEvent(_ context.Context, callerID string, ev domain.TaskEvent) (*domain.TaskDelivery, error) {
	f.lastCaller = callerID
	f.lastTaskEvent = ev
	return f.delivery, f.taskErr
}

func (f *fakeNotificationService) List(_ context.Context, userID string, unreadOnly bool, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	f.lastCaller = userID
	f.lastUnread = unreadOnly
	f.lastParams = params
	return f.listItems, f.listTotal, f.listErr
}

func (f *fakeNotificationService) MarkRead(_ context.Context, userID, id string) error {
	f.lastCaller = userID
	f.lastMarkID = id
	return f.markErr
}

type fakeWebhookSecretService struct {
	url        *string
	getErr     error
	putErr     error
	lastPutURL string
}

func (f *fakeWebhookSecretService) Get(context.Context, string, string) (*string, error) {
	return f.url, f.getErr
}

func (f *fakeWebhookSecretService) Put(_ context.Context, _, _, webhookURL string) error {
	f.lastPutURL = webhookURL
	return f.putErr
}

func (f *fakeWebhookSecretService) Resolve(context.Context, string) (string, error) { return "", nil }

type fakeInvitationService struct {
	invitation *domain.TeamInvitation
	effects    []domain.SideEffect
	err        error
	synced     int
	lastEmail  string
	lastRole   domain.TeamRole
	lastToken  string
	lastUserID string
}

func (f *fakeInvitationService) Create(_ context.Context, _, callerID, email string, role domain.TeamRole) (*domain.TeamInvitation, []domain.SideEffect, error) {
	f.lastUserID = callerID
	f.lastEmail = email
	f.lastRole = role
	return f.invitation, f.effects, f.err
}

func (f *fakeInvitationService) Get(_ context.Context, token string) (*domain.TeamInvitation, error) {
	f.lastToken = token
	return f.invitation, f.err
}

func (f *fakeInvitationService) Accept(_ context.Context, token, userID string) (*domain.TeamInvitation, error) {
	f.lastToken = token
	f.lastUserID = userID
	return f.invitation, f.err
}

func (f *fakeInvitationService) Decline(_ context.Context, token string) error {
	f.lastToken = token
	return f.err
}

func (f *fakeInvitationService) SyncOnRegistration(_ context.Context, userID, email string) (int, error) {
	f.lastUserID = userID
	f.lastEmail = email
	return f.synced, f.err
}

type fakeSlackService struct {
	reply    domain.ChatReply
	err      error
	lastCmd  domain.SlashCommand
	lastEnv  domain.SlackEnvelope
	cmdCalls int
	evtCalls int
}

func (f *fakeSlackService) HandleSlashCommand(_ context.Context, cmd domain.SlashCommand) (domain.ChatReply, error) {
	f.cmdCalls++
	f.lastCmd = cmd
	return f.reply, f.err
}

func (f *fakeSlackService) HandleEvent(_ context.Context, env domain.SlackEnvelope) error {
	f.evtCalls++
	f.lastEnv = env
	return f.err
}

type fakeGitHubService struct {
	handled   bool
	err       error
	calls     int
	lastEvent string
}

func (f *fakeGitHubService) HandleEvent(_ context.Context, eventType string, _ []byte) (bool, error) {
	f.calls++
	f.lastEvent = eventType
	return f.handled, f.err
}

type recordedEvent struct {
	deliveryID, source, eventType string
}

type fakeEventLog struct {
	outcome domain.RecordOutcome
	records []recordedEvent
}

func (f *fakeEventLog) Record(_ context.Context, deliveryID, source, eventType string, _ []byte) domain.RecordOutcome {
	f.records = append(f.records, recordedEvent{deliveryID, source, eventType})
	return f.outcome
}
