package domain

import (
	"context"
	"encoding/json"
)

// Slack envelope types for the Events API.
const (
	SlackURLVerification = "url_verification"
	SlackEventCallback   = "event_callback"
)

// SlashCommand is a parsed slash command submission.
type SlashCommand struct {
	Command     string `json:"command"`
	Text        string `json:"text"`
	ResponseURL string `json:"response_url"`
	TriggerID   string `json:"trigger_id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	TeamID      string `json:"team_id"`
	ChannelID   string `json:"channel_id"`
}

// SlackEnvelope is the outer Events API payload, discriminated by Type.
type SlackEnvelope struct {
	Type      string          `json:"type"`
	Challenge string          `json:"challenge,omitempty"`
	TeamID    string          `json:"team_id,omitempty"`
	EventID   string          `json:"event_id,omitempty"`
	EventTime int64           `json:"event_time,omitempty"`
	Event     json.RawMessage `json:"event,omitempty"`
}

// SlackMessageEvent is the inner event of an event_callback with type "message".
type SlackMessageEvent struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`
	Text    string `json:"text"`
	User    string `json:"user"`
	BotID   string `json:"bot_id,omitempty"`
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// SlackService handles verified Slack deliveries.
type SlackService interface {
	HandleSlashCommand(ctx context.Context, cmd SlashCommand) (ChatReply, error)
	HandleEvent(ctx context.Context, env SlackEnvelope) error
}
