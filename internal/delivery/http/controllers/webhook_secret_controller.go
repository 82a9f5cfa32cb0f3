package controllers

import (
	"log/slog"
	"net/http"

	"projectgateway/internal/delivery/http/helpers"
	"projectgateway/internal/domain"
)

// WebhookSecretRequest is the request body for PUT /webhook-secret.
type WebhookSecretRequest struct {
	ProjectID  string `json:"projectId"`
	WebhookURL string `json:"webhookUrl"`
}

// Validate implements helpers.Validator. The URL prefix is checked by the service.
func (req WebhookSecretRequest) Validate() []domain.FieldError {
	var errs []domain.FieldError
	if !helpers.IsUUID(req.ProjectID) {
		errs = append(errs, domain.FieldError{Field: "projectId", Message: "must be a UUID"})
	}
	if req.WebhookURL == "" {
		errs = append(errs, domain.FieldError{Field: "webhookUrl", Message: "is required"})
	}
	return errs
}

// WebhookSecretResponse is the data of the webhook secret endpoints. WebhookURL is null when none is stored.
type WebhookSecretResponse struct {
	ProjectID  string  `json:"projectId"`
	WebhookURL *string `json:"webhookUrl"`
}

// WebhookSecretSuccessResponse is the success response envelope for the webhook secret endpoints (200).
type WebhookSecretSuccessResponse struct {
	Data  WebhookSecretResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type WebhookSecretController struct {
	Logger  *slog.Logger
	Service domain.WebhookSecretService
}

func NewWebhookSecretController(logger *slog.Logger, svc domain.WebhookSecretService) *WebhookSecretController {
	return &WebhookSecretController{Logger: logger, Service: svc}
}

// GetWebhookSecret godoc
// @Summary Read a project's Slack webhook URL
// @Description Decrypts and returns the stored incoming-webhook URL. Caller must be owner or admin of the project's team.
// @Tags webhook-secret
// @Produce json
// @Security BearerAuth
// @Param projectId query string true "Project ID (UUID)"
// @Success 200 {object} controllers.WebhookSecretSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: configuration_error or internal_error"
// @Router /webhook-secret [get]
func (c *WebhookSecretController) GetWebhookSecret(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	projectID := r.URL.Query().Get("projectId")
	if !helpers.IsUUID(projectID) {
		helpers.WriteValidationError(w, []domain.FieldError{{Field: "projectId", Message: "must be a UUID"}})
		return
	}
	url, err := c.Service.Get(r.Context(), id.UserID, projectID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, http.StatusInternalServerError)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, WebhookSecretResponse{ProjectID: projectID, WebhookURL: url})
}

// PutWebhookSecret godoc
// @Summary Store a project's Slack webhook URL
// @Description Encrypts and upserts the incoming-webhook URL. The URL must start with https://hooks.slack.com/.
// @Tags webhook-secret
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param secret body WebhookSecretRequest true "Project and webhook URL"
// @Success 200 {object} controllers.WebhookSecretSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: configuration_error or internal_error"
// @Router /webhook-secret [put]
func (c *WebhookSecretController) PutWebhookSecret(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req WebhookSecretRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.Put(r.Context(), id.UserID, req.ProjectID, req.WebhookURL); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, http.StatusInternalServerError)
		return
	}
	url := req.WebhookURL
	helpers.WriteJSONSuccess(w, http.StatusOK, WebhookSecretResponse{ProjectID: req.ProjectID, WebhookURL: &url})
}
