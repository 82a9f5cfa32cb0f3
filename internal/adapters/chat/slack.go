// Package chat posts messages to Slack through the Web API or incoming webhooks.
package chat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"projectgateway/internal/domain"
)

// DefaultTimeout bounds every outbound Slack call.
const DefaultTimeout = 10 * time.Second

// Config configures the Slack poster.
type Config struct {
	BotToken string
	// APIURL overrides the Web API base URL (tests, proxies). Must end with "/".
	APIURL     string
	HTTPClient *http.Client
}

// SlackPoster implements domain.ChatPoster.
type SlackPoster struct {
	api        *slack.Client
	httpClient *http.Client
}

// NewSlackPoster builds a poster. Without a bot token only webhook posts are available.
func NewSlackPoster(cfg Config) *SlackPoster {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	p := &SlackPoster{httpClient: httpClient}
	if cfg.BotToken != "" {
		opts := []slack.Option{slack.OptionHTTPClient(httpClient)}
		if cfg.APIURL != "" {
			apiURL := cfg.APIURL
			if !strings.HasSuffix(apiURL, "/") {
				apiURL += "/"
			}
			opts = append(opts, slack.OptionAPIURL(apiURL))
		}
		p.api = slack.New(cfg.BotToken, opts...)
	}
	return p
}

// CanPostMessages reports whether a bot token is configured.
func (p *SlackPoster) CanPostMessages() bool {
	return p.api != nil
}

// PostMessage posts text to channel with the bot token.
func (p *SlackPoster) PostMessage(ctx context.Context, channel, text string) error {
	if p.api == nil {
		return fmt.Errorf("%w: slack bot token is not set", domain.ErrConfiguration)
	}
	if _, _, err := p.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("slack chat.postMessage: %w", err)
	}
	return nil
}

// PostWebhook posts reply to an incoming-webhook or response_url.
func (p *SlackPoster) PostWebhook(ctx context.Context, url string, reply domain.ChatReply) error {
	msg := &slack.WebhookMessage{Text: reply.Text, ResponseType: reply.ResponseType}
	if err := slack.PostWebhookCustomHTTPContext(ctx, url, p.httpClient, msg); err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}
