package http

import (
	"log/slog"
	"net/http"
	"time"

	"projectgateway/internal/adapters/ratelimit"
	"projectgateway/internal/adapters/signature"
	"projectgateway/internal/delivery/http/controllers"
	"projectgateway/internal/delivery/http/middleware"
	"projectgateway/internal/domain"

	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateRule is the per-client budget of one route group.
type RateRule struct {
	Purpose string
	Limit   int
	Window  time.Duration
}

// Route group budgets.
var (
	SlackCommandRate      = RateRule{"slack-command", 120, time.Minute}
	SlackEventsRate       = RateRule{"slack-events", 600, time.Minute}
	GitHubWebhookRate     = RateRule{"github-webhook", 600, time.Minute}
	MentionRate           = RateRule{"mention", 60, time.Hour}
	TaskNotifyRate        = RateRule{"task-notify", 120, time.Minute}
	NotificationsRate     = RateRule{"notifications", 300, time.Minute}
	WebhookSecretRate     = RateRule{"webhook-secret", 30, time.Minute}
	InvitationsRate       = RateRule{"invitations", 30, time.Minute}
	InvitationActionsRate = RateRule{"invitation-actions", 60, time.Minute}
)

// RouterDeps holds everything the router wires together.
type RouterDeps struct {
	Logger              *slog.Logger
	Cors                *middleware.CorsPolicy
	Limiter             *ratelimit.Limiter
	Proxies             *ratelimit.TrustedProxies
	Signatures          *signature.Verifier
	Tokens              domain.TokenVerifier
	SlackSigningSecret  string
	GitHubWebhookSecret string

	Notifications  *controllers.NotificationController
	WebhookSecrets *controllers.WebhookSecretController
	Invitations    *controllers.InvitationController
	Slack          *controllers.SlackController
	GitHub         *controllers.GitHubController
	Health         *controllers.HealthController
}

type wrapper = func(http.HandlerFunc) http.HandlerFunc

// chain applies wrappers so that the first one runs first.
func chain(h http.HandlerFunc, wraps ...wrapper) http.HandlerFunc {
	for i := len(wraps) - 1; i >= 0; i-- {
		h = wraps[i](h)
	}
	return h
}

// NewRouter initializes the HTTP router with all application routes and the global middleware stack.
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()

	limit := func(rule RateRule) wrapper {
		return middleware.RateLimit(d.Limiter, d.Proxies, rule.Purpose, rule.Limit, rule.Window, d.Logger)
	}
	auth := middleware.RequireAuth(d.Tokens, d.Logger)
	slackSig := middleware.VerifySignature(d.Signatures, signature.SchemeSlack, d.SlackSigningSecret, d.Logger)
	githubSig := middleware.VerifySignature(d.Signatures, signature.SchemeGitHub, d.GitHubWebhookSecret, d.Logger)

	// Integrations
	mux.HandleFunc("POST /integrations/slack/commands", chain(d.Slack.SlashCommand, limit(SlackCommandRate), slackSig))
	mux.HandleFunc("POST /integrations/slack/events", chain(d.Slack.Events, limit(SlackEventsRate), slackSig))
	mux.HandleFunc("POST /integrations/github/webhook", chain(d.GitHub.Webhook, limit(GitHubWebhookRate), githubSig))

	// Notifications
	mux.HandleFunc("POST /notifications/mentions", chain(d.Notifications.NotifyMention, limit(MentionRate), auth))
	mux.HandleFunc("POST /notifications/tasks", chain(d.Notifications.NotifyTaskEvent, limit(TaskNotifyRate), auth))
	mux.HandleFunc("GET /notifications", chain(d.Notifications.ListNotifications, limit(NotificationsRate), auth))
	mux.HandleFunc("POST /notifications/{id}/read", chain(d.Notifications.MarkRead, limit(NotificationsRate), auth))

	// Webhook secret
	mux.HandleFunc("GET /webhook-secret", chain(d.WebhookSecrets.GetWebhookSecret, limit(WebhookSecretRate), auth))
	mux.HandleFunc("PUT /webhook-secret", chain(d.WebhookSecrets.PutWebhookSecret, limit(WebhookSecretRate), auth))

	// Invitations
	mux.HandleFunc("POST /teams/{teamID}/invitations", chain(d.Invitations.CreateInvitation, limit(InvitationsRate), auth))
	mux.HandleFunc("POST /invitations/sync", chain(d.Invitations.SyncInvitations, limit(InvitationActionsRate), auth))
	mux.HandleFunc("GET /invitations/{token}", chain(d.Invitations.GetInvitation, limit(InvitationActionsRate), auth))
	mux.HandleFunc("POST /invitations/{token}/accept", chain(d.Invitations.AcceptInvitation, limit(InvitationActionsRate), auth))
	mux.HandleFunc("POST /invitations/{token}/decline", chain(d.Invitations.DeclineInvitation, limit(InvitationActionsRate), auth))

	mux.HandleFunc("GET /healthz", d.Health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var h http.Handler = middleware.CORS(d.Cors, mux)
	h = chimw.Recoverer(h)
	h = middleware.LoggingMiddleware(d.Logger, h)
	return chimw.RequestID(h)
}
