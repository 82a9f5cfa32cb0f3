package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"projectgateway/internal/delivery/http/helpers"
	"projectgateway/internal/domain"
)

// CreateInvitationRequest is the request body for POST /teams/{teamID}/invitations.
// Email format and role are validated by the service.
type CreateInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// InvitationResponse is an invitation with its computed status. The token is never returned.
type InvitationResponse struct {
	*domain.TeamInvitation
	Status domain.InvitationStatus `json:"status"`
}

// CreateInvitationResponse is the data of POST /teams/{teamID}/invitations.
type CreateInvitationResponse struct {
	Invitation  InvitationResponse  `json:"invitation"`
	SideEffects []domain.SideEffect `json:"side_effects"`
}

// CreateInvitationSuccessResponse is the success response envelope for POST /teams/{teamID}/invitations (201).
type CreateInvitationSuccessResponse struct {
	Data  CreateInvitationResponse `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// InvitationSuccessResponse is the success response envelope for invitation lookups and accept (200).
type InvitationSuccessResponse struct {
	Data  InvitationResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// SyncInvitationsResponse is the data of POST /invitations/sync.
type SyncInvitationsResponse struct {
	Created int `json:"created"`
}

type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
	now     func() time.Time
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{Logger: logger, Service: svc, now: time.Now}
}

func (c *InvitationController) view(inv *domain.TeamInvitation) InvitationResponse {
	return InvitationResponse{TeamInvitation: inv, Status: inv.StatusAt(c.now())}
}

// CreateInvitation godoc
// @Summary Invite an email address to a team
// @Description Team owner only. Sends the invitation email and, when the invitee already has a profile, an in-app notification. Both are best effort and reported in side_effects.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamID path string true "Team ID (UUID)"
// @Param invitation body CreateInvitationRequest true "Email and role (admin, member, viewer)"
// @Success 201 {object} controllers.CreateInvitationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /teams/{teamID}/invitations [post]
func (c *InvitationController) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	teamID := r.PathValue("teamID")
	if !helpers.IsUUID(teamID) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
		return
	}
	var req CreateInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv, effects, err := c.Service.Create(r.Context(), teamID, id.UserID, req.Email, domain.TeamRole(req.Role))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, http.StatusInternalServerError)
		return
	}
	if effects == nil {
		effects = []domain.SideEffect{}
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, CreateInvitationResponse{Invitation: c.view(inv), SideEffects: effects})
}

// GetInvitation godoc
// @Summary Look up an invitation by token
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param token path string true "Invitation token"
// @Success 200 {object} controllers.InvitationSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /invitations/{token} [get]
func (c *InvitationController) GetInvitation(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	inv, err := c.Service.Get(r.Context(), r.PathValue("token"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, http.StatusInternalServerError)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.view(inv))
}

// AcceptInvitation godoc
// @Summary Accept an invitation
// @Description Marks the invitation accepted and adds the caller to the team with the invited role. Only pending invitations can be accepted.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param token path string true "Invitation token"
// @Success 200 {object} controllers.InvitationSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /invitations/{token}/accept [post]
func (c *InvitationController) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	inv, err := c.Service.Accept(r.Context(), r.PathValue("token"), id.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, http.StatusInternalServerError)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.view(inv))
}

// DeclineInvitation godoc
// @Summary Decline an invitation
// @Description Deletes a pending invitation.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param token path string true "Invitation token"
// @Success 200 {object} helpers.APIResponse "data.declined is true"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /invitations/{token}/decline [post]
func (c *InvitationController) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}
	if err := c.Service.Decline(r.Context(), r.PathValue("token")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, http.StatusInternalServerError)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"declined": true})
}

// SyncInvitations godoc
// @Summary Notify the caller about pending invitations
// @Description Creates one team_invite notification per pending invitation addressed to the caller's email. Called after registration.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data.created is the number of notifications"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /invitations/sync [post]
func (c *InvitationController) SyncInvitations(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	n, err := c.Service.SyncOnRegistration(r.Context(), id.UserID, id.Email)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, http.StatusInternalServerError)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SyncInvitationsResponse{Created: n})
}
