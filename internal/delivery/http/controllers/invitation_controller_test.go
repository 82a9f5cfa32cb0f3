package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"projectgateway/internal/delivery/http/helpers"
	"projectgateway/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvitation(now time.Time) *domain.TeamInvitation {
	return &domain.TeamInvitation{
		ID:        "77777777-7777-7777-7777-777777777777",
		TeamID:    testTeamID,
		Email:     "bo@example.com",
		Role:      domain.TeamRoleMember,
		Token:     "secret-token",
		InvitedBy: testUserID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func newInvitationController(svc domain.InvitationService, now time.Time) *InvitationController {
	c := NewInvitationController(testLogger, svc)
	c.now = func() time.Time { return now }
	return c
}

func TestCreateInvitation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		teamID     string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{name: "created", teamID: testTeamID, body: `{"email":"Bo@Example.com","role":"member"}`, wantStatus: http.StatusCreated},
		{name: "bad team id", teamID: "x", body: `{"email":"bo@example.com","role":"member"}`, wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
		{name: "unknown field", teamID: testTeamID, body: `{"email":"bo@example.com","role":"member","token":"x"}`, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "invalid role", teamID: testTeamID, body: `{"email":"bo@example.com","role":"owner"}`, svcErr: domain.NewValidationError("role", "must be admin, member or viewer"), wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "not owner", teamID: testTeamID, body: `{"email":"bo@example.com","role":"member"}`, svcErr: domain.ErrForbidden, wantStatus: http.StatusForbidden, wantCode: helpers.ErrCodeForbidden},
		{name: "already member", teamID: testTeamID, body: `{"email":"bo@example.com","role":"member"}`, svcErr: domain.ErrAlreadyMember, wantStatus: http.StatusConflict, wantCode: helpers.ErrCodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeInvitationService{
				invitation: testInvitation(now),
				effects:    []domain.SideEffect{{Name: "email", Target: "bo@example.com", OK: true}},
				err:        tt.svcErr,
			}
			c := newInvitationController(svc, now)
			req := authed(http.MethodPost, "/teams/"+tt.teamID+"/invitations", tt.body)
			req.SetPathValue("teamID", tt.teamID)
			rr := httptest.NewRecorder()

			c.CreateInvitation(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			data, apiErr := decodeEnvelope(t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			assert.NotContains(t, string(data), "secret-token")
			var resp struct {
				Invitation  map[string]any      `json:"invitation"`
				SideEffects []domain.SideEffect `json:"side_effects"`
			}
			require.NoError(t, json.Unmarshal(data, &resp))
			assert.Equal(t, "pending", resp.Invitation["status"])
			assert.Equal(t, testTeamID, resp.Invitation["team_id"])
			assert.Len(t, resp.SideEffects, 1)
			assert.Equal(t, "Bo@Example.com", svc.lastEmail)
			assert.Equal(t, domain.TeamRoleMember, svc.lastRole)
		})
	}
}

func TestGetInvitation_Status(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inv := testInvitation(now.Add(-2 * time.Hour))
	c := newInvitationController(&fakeInvitationService{invitation: inv}, now)
	req := authed(http.MethodGet, "/invitations/secret-token", "")
	req.SetPathValue("token", "secret-token")
	rr := httptest.NewRecorder()

	c.GetInvitation(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	data, _ := decodeEnvelope(t, rr)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, "expired", resp["status"])
}

func TestAcceptInvitation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{"accepted", nil, http.StatusOK},
		{"no longer pending", domain.ErrInvitationNotActionable, http.StatusConflict},
		{"unknown token", domain.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := testInvitation(now)
			accepted := now
			inv.AcceptedAt = &accepted
			svc := &fakeInvitationService{invitation: inv, err: tt.svcErr}
			c := newInvitationController(svc, now)
			req := authed(http.MethodPost, "/invitations/secret-token/accept", "")
			req.SetPathValue("token", "secret-token")
			rr := httptest.NewRecorder()

			c.AcceptInvitation(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "secret-token", svc.lastToken)
			assert.Equal(t, testUserID, svc.lastUserID)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, rr.Body.String(), `"status":"accepted"`)
			}
		})
	}
}

func TestDeclineInvitation(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{"declined", nil, http.StatusOK},
		{"already accepted", domain.ErrInvitationNotActionable, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewInvitationController(testLogger, &fakeInvitationService{err: tt.svcErr})
			req := authed(http.MethodPost, "/invitations/tok/decline", "")
			req.SetPathValue("token", "tok")
			rr := httptest.NewRecorder()

			c.DeclineInvitation(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestSyncInvitations(t *testing.T) {
	svc := &fakeInvitationService{synced: 2}
	c := NewInvitationController(testLogger, svc)
	rr := httptest.NewRecorder()

	c.SyncInvitations(rr, authed(http.MethodPost, "/invitations/sync", ""))

	require.Equal(t, http.StatusOK, rr.Code)
	data, _ := decodeEnvelope(t, rr)
	var resp SyncInvitationsResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, 2, resp.Created)
	assert.Equal(t, "ana@example.com", svc.lastEmail)
	assert.Equal(t, testUserID, svc.lastUserID)
}
