package domain

import "context"

// Slack response types for replies to slash commands.
const (
	ChatReplyEphemeral = "ephemeral"
	ChatReplyInChannel = "in_channel"
)

// ChatReply is a message posted to a webhook or response_url.
// swagger:model ChatReply
type ChatReply struct {
	ResponseType string `json:"response_type,omitempty"`
	Text         string `json:"text"`
}

// ChatPoster is the outbound chat-platform API.
type ChatPoster interface {
	// CanPostMessages reports whether a bot token is configured for PostMessage.
	CanPostMessages() bool
	PostMessage(ctx context.Context, channel, text string) error
	PostWebhook(ctx context.Context, url string, reply ChatReply) error
}

// PagePreviewer fetches the title of a page for link previews.
type PagePreviewer interface {
	Title(ctx context.Context, url string) (string, error)
}

// Label groups in a LabelCatalog.
const (
	LabelGroupPriority = "priority"
	LabelGroupStatus   = "status"
	LabelGroupText     = "text"
)

// LabelCatalog resolves localized labels and the aliases accepted from chat input.
type LabelCatalog interface {
	Label(locale, group, value string) string
	// CanonicalKey maps a localized option key (e.g. "prioridad") to its canonical name ("priority").
	CanonicalKey(key string) (string, bool)
	CanonicalPriority(value string) (TaskPriority, bool)
}
