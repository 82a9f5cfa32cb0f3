package controllers

import (
	"io"
	"log/slog"
	"net/http"

	"projectgateway/internal/delivery/http/helpers"
	"projectgateway/internal/domain"
)

// GitHub delivery headers.
const (
	HeaderGitHubEvent    = "X-GitHub-Event"
	HeaderGitHubDelivery = "X-GitHub-Delivery"
)

// GitHubWebhookResponse is the data of POST /integrations/github/webhook.
type GitHubWebhookResponse struct {
	Event     string `json:"event"`
	Delivery  string `json:"delivery"`
	Handled   bool   `json:"handled"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// GitHubWebhookSuccessResponse is the success response envelope for POST /integrations/github/webhook (200).
type GitHubWebhookSuccessResponse struct {
	Data  GitHubWebhookResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type GitHubController struct {
	Logger   *slog.Logger
	Service  domain.GitHubService
	EventLog domain.InboundEventLog
}

func NewGitHubController(logger *slog.Logger, svc domain.GitHubService, eventLog domain.InboundEventLog) *GitHubController {
	return &GitHubController{Logger: logger, Service: svc, EventLog: eventLog}
}

// Webhook godoc
// @Summary Handle a GitHub webhook delivery
// @Description Verified with X-Hub-Signature-256. The delivery is recorded, then dispatched by X-GitHub-Event. Unknown events are acknowledged with handled=false.
// @Tags integrations
// @Accept json
// @Produce json
// @Param X-GitHub-Event header string true "Event name"
// @Param X-GitHub-Delivery header string false "Delivery id"
// @Param X-Hub-Signature-256 header string true "sha256= signature"
// @Success 200 {object} controllers.GitHubWebhookSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 413 {object} helpers.APIResponse "error.code: payload_too_large"
// @Router /integrations/github/webhook [post]
func (c *GitHubController) Webhook(w http.ResponseWriter, r *http.Request) {
	event := r.Header.Get(HeaderGitHubEvent)
	if event == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing "+HeaderGitHubEvent+" header")
		return
	}
	delivery := r.Header.Get(HeaderGitHubDelivery)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not read request body")
		return
	}

	resp := GitHubWebhookResponse{Event: event, Delivery: delivery}
	if c.EventLog.Record(r.Context(), delivery, domain.SourceGitHub, event, body) == domain.RecordDuplicate {
		resp.Duplicate = true
		helpers.WriteJSONSuccess(w, http.StatusOK, resp)
		return
	}

	handled, err := c.Service.HandleEvent(r.Context(), event, body)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, http.StatusInternalServerError)
		return
	}
	resp.Handled = handled
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}
