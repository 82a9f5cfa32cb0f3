package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/slack-go/slack"

	"projectgateway/internal/delivery/http/helpers"
	"projectgateway/internal/domain"
)

// URLVerificationResponse echoes the Events API challenge.
type URLVerificationResponse struct {
	Challenge string `json:"challenge"`
}

type SlackController struct {
	Logger   *slog.Logger
	Service  domain.SlackService
	EventLog domain.InboundEventLog
}

func NewSlackController(logger *slog.Logger, svc domain.SlackService, eventLog domain.InboundEventLog) *SlackController {
	return &SlackController{Logger: logger, Service: svc, EventLog: eventLog}
}

// SlashCommand godoc
// @Summary Handle a Slack slash command
// @Description Form body signed by Slack. text is "projectId | title | key:value ...". Creates a task as the automation user and answers with an ephemeral reply; the channel announcement is posted to response_url asynchronously.
// @Tags integrations
// @Accept x-www-form-urlencoded
// @Produce json
// @Param X-Slack-Request-Timestamp header string true "Request timestamp"
// @Param X-Slack-Signature header string true "v0= signature"
// @Success 200 {object} domain.ChatReply
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 413 {object} helpers.APIResponse "error.code: payload_too_large"
// @Failure 500 {object} helpers.APIResponse "error.code: configuration_error"
// @Router /integrations/slack/commands [post]
func (c *SlackController) SlashCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not read request body")
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	parsed, err := slack.SlashCommandParse(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "malformed form body")
		return
	}
	cmd := domain.SlashCommand{
		Command:     parsed.Command,
		Text:        parsed.Text,
		ResponseURL: parsed.ResponseURL,
		TriggerID:   parsed.TriggerID,
		UserID:      parsed.UserID,
		UserName:    parsed.UserName,
		TeamID:      parsed.TeamID,
		ChannelID:   parsed.ChannelID,
	}

	if c.EventLog.Record(r.Context(), cmd.TriggerID, domain.SourceSlack, "slash_command", body) == domain.RecordDuplicate {
		helpers.WriteJSON(w, http.StatusOK, domain.ChatReply{ResponseType: domain.ChatReplyEphemeral, Text: "This command was already received."})
		return
	}

	reply, err := c.Service.HandleSlashCommand(r.Context(), cmd)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, http.StatusInternalServerError)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, reply)
}

// Events godoc
// @Summary Handle a Slack Events API delivery
// @Description url_verification echoes the challenge. event_callback message events matching "[PROJECT:<uuid>] <title>" create a task. Bot and subtype messages are ignored.
// @Tags integrations
// @Accept json
// @Produce json
// @Param X-Slack-Request-Timestamp header string true "Request timestamp"
// @Param X-Slack-Signature header string true "v0= signature"
// @Success 200 {object} controllers.URLVerificationResponse "challenge for url_verification, otherwise {ok: true}"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /integrations/slack/events [post]
func (c *SlackController) Events(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "could not read request body")
		return
	}
	var env domain.SlackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "malformed JSON: "+err.Error())
		return
	}

	if env.Type == domain.SlackURLVerification {
		helpers.WriteJSON(w, http.StatusOK, URLVerificationResponse{Challenge: env.Challenge})
		return
	}

	if env.Type == domain.SlackEventCallback {
		if c.EventLog.Record(r.Context(), env.EventID, domain.SourceSlack, env.Type, body) == domain.RecordDuplicate {
			helpers.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
			return
		}
	}

	if err := c.Service.HandleEvent(r.Context(), env); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, http.StatusInternalServerError)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
