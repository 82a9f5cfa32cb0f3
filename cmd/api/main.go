// Command api runs the project gateway HTTP server.
//
// @title Project Gateway API
// @version 1.0
// @description Trust and notification gateway: verified chat and source-hosting webhooks, mention and task notifications, team invitations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"projectgateway/config"
	_ "projectgateway/docs"
	"projectgateway/internal/adapters/auth"
	"projectgateway/internal/adapters/chat"
	"projectgateway/internal/adapters/email"
	"projectgateway/internal/adapters/labels"
	"projectgateway/internal/adapters/preview"
	"projectgateway/internal/adapters/ratelimit"
	"projectgateway/internal/adapters/secrets"
	"projectgateway/internal/adapters/signature"
	deliveryhttp "projectgateway/internal/delivery/http"
	"projectgateway/internal/delivery/http/controllers"
	"projectgateway/internal/delivery/http/middleware"
	"projectgateway/internal/domain"
	"projectgateway/internal/repository/memory"
	"projectgateway/internal/repository/postgres"
	"projectgateway/internal/services"
)

const (
	shutdownTimeout = 15 * time.Second
	pruneInterval   = time.Minute
)

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DBUrl == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Warn("database not reachable at startup", "err", err)
	}

	// Repositories
	profileRepo := postgres.NewProfileRepository(db)
	teamRepo := postgres.NewTeamRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	invitationRepo := postgres.NewTeamInvitationRepository(db)
	webhookSecretRepo := postgres.NewWebhookSecretRepository(db)

	var ledger domain.EventLedger
	switch cfg.InboundEventStore {
	case config.StorePostgres:
		ledger = postgres.NewInboundEventRepository(db, cfg.InboundEventRejectDuplicates)
	default:
		ledger = memory.NewInboundEventLedger(cfg.InboundEventRejectDuplicates)
	}

	// Rate limit store
	var store domain.KeyedCounterStore
	switch cfg.RateLimitStore {
	case config.StoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		client := redis.NewClient(opts)
		defer client.Close()
		store = ratelimit.NewRedisStore(client, "ratelimit:")
	default:
		mem := ratelimit.NewMemoryStore()
		go mem.RunPruner(ctx, pruneInterval)
		store = mem
	}
	limiter := ratelimit.New(store)

	// Adapters
	catalog, err := loadLabels(cfg.LabelsFile)
	if err != nil {
		return err
	}
	var cipher domain.SecretCipher
	if cfg.WebhookSecretKey != "" {
		c, err := secrets.NewCipher(cfg.WebhookSecretKey)
		if err != nil {
			return err
		}
		cipher = c
	} else {
		logger.Warn("WEBHOOK_SECRET_KEY not set; project webhook URLs are disabled")
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET not set; every bearer token will be rejected")
	}
	tokens := auth.NewJWTAuthority(cfg.JWTSecret, cfg.JWTAudience)
	poster := chat.NewSlackPoster(chat.Config{BotToken: cfg.SlackBotToken, APIURL: cfg.SlackAPIURL})
	var previewer domain.PagePreviewer
	if hosts := siteHost(cfg.SiteURL); len(hosts) > 0 {
		previewer = preview.NewFetcher(nil, hosts...)
	} else {
		logger.Warn("SITE_URL not set; chat link previews are disabled")
	}
	proxies, err := ratelimit.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return err
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}

	// Services
	emailService := services.NewEmailService(mailer, renderer, logger)
	eventLog := services.NewInboundEventLog(ledger, logger, cfg.RequestTimeout)
	webhookSecrets := services.NewWebhookSecretService(projectRepo, webhookSecretRepo, cipher, cfg.RequestTimeout)
	notifications := services.NewNotificationService(
		taskRepo, projectRepo, profileRepo, notificationRepo, webhookSecrets,
		poster, previewer, catalog, cfg.SlackDefaultChannel, logger, cfg.RequestTimeout,
	)
	invitations := services.NewInvitationService(
		teamRepo, invitationRepo, profileRepo, notificationRepo, emailService,
		cfg.SiteURL, cfg.InvitationTTL, logger, cfg.RequestTimeout,
	)
	slackService := services.NewSlackService(
		projectRepo, taskRepo, poster, catalog, cfg.AutomationUserID,
		services.DetachedRunner(chat.DefaultTimeout), logger, cfg.RequestTimeout,
	)
	githubService := services.NewGitHubService(logger)

	router := deliveryhttp.NewRouter(deliveryhttp.RouterDeps{
		Logger:              logger,
		Cors:                middleware.NewCorsPolicy(cfg.CORSAllowedOrigins, cfg.SiteURL),
		Limiter:             limiter,
		Proxies:             proxies,
		Signatures:          signature.NewVerifier(),
		Tokens:              tokens,
		SlackSigningSecret:  cfg.SlackSigningSecret,
		GitHubWebhookSecret: cfg.GitHubWebhookSecret,
		Notifications:       controllers.NewNotificationController(logger, notifications),
		WebhookSecrets:      controllers.NewWebhookSecretController(logger, webhookSecrets),
		Invitations:         controllers.NewInvitationController(logger, invitations),
		Slack:               controllers.NewSlackController(logger, slackService, eventLog),
		GitHub:              controllers.NewGitHubController(logger, githubService, eventLog),
		Health:              controllers.NewHealthController(logger, db),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment,
			"rate_limit_store", cfg.RateLimitStore, "inbound_event_store", cfg.InboundEventStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadLabels(path string) (*labels.Catalog, error) {
	if path == "" {
		return labels.Default()
	}
	return labels.Load(path)
}

// siteHost returns the host of the site URL as the only preview target, or nil when there is none.
func siteHost(siteURL string) []string {
	if siteURL == "" {
		return nil
	}
	u, err := url.Parse(siteURL)
	if err != nil || u.Hostname() == "" {
		return nil
	}
	return []string{u.Hostname()}
}
