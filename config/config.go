package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store selectors.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Environment    string
	Port           string
	DBUrl          string
	RequestTimeout time.Duration

	JWTSecret   string
	JWTAudience string

	// WebhookSecretKey is the base64 32-byte key for project webhook URLs. Empty disables the feature.
	WebhookSecretKey string

	SlackSigningSecret  string
	SlackBotToken       string
	SlackDefaultChannel string
	SlackAPIURL         string
	GitHubWebhookSecret string

	CORSAllowedOrigins []string
	SiteURL            string

	AutomationUserID string
	InvitationTTL    time.Duration

	RateLimitStore string
	RedisURL       string
	// TrustedProxies lists CIDRs or IPs whose forwarded headers name the client.
	TrustedProxies []string

	InboundEventStore            string
	InboundEventRejectDuplicates bool

	LabelsFile string

	EmailProvider         string
	EmailFromAddress      string
	EmailFromName         string
	AWSRegion             string
	AWSAccessKeyID        string
	AWSSecretAccessKey    string
	SESInsecureSkipVerify bool
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Production relies on the process environment only.
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment:         env,
		Port:                getenv("PORT", "8080"),
		DBUrl:               os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWTAudience:         getenv("JWT_AUDIENCE", "authenticated"),
		WebhookSecretKey:    os.Getenv("WEBHOOK_SECRET_KEY"),
		SlackSigningSecret:  os.Getenv("SLACK_SIGNING_SECRET"),
		SlackBotToken:       os.Getenv("SLACK_BOT_TOKEN"),
		SlackDefaultChannel: os.Getenv("SLACK_DEFAULT_CHANNEL"),
		SlackAPIURL:         os.Getenv("SLACK_API_URL"),
		GitHubWebhookSecret: os.Getenv("GITHUB_WEBHOOK_SECRET"),
		CORSAllowedOrigins:  splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		SiteURL:             strings.TrimSuffix(os.Getenv("SITE_URL"), "/"),
		AutomationUserID:    os.Getenv("AUTOMATION_USER_ID"),
		RateLimitStore:      strings.ToLower(getenv("RATE_LIMIT_STORE", StoreMemory)),
		RedisURL:            os.Getenv("REDIS_URL"),
		TrustedProxies:      splitList(os.Getenv("TRUSTED_PROXIES")),
		InboundEventStore:   strings.ToLower(os.Getenv("INBOUND_EVENT_STORE")),
		LabelsFile:          os.Getenv("LABELS_FILE"),
		EmailProvider:       strings.ToLower(getenv("EMAIL_PROVIDER", "noop")),
		EmailFromAddress:    os.Getenv("EMAIL_FROM_ADDRESS"),
		EmailFromName:       os.Getenv("EMAIL_FROM_NAME"),
		AWSRegion:           getenv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}

	var err error
	if cfg.RequestTimeout, err = durationEnv("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.InvitationTTL, err = durationEnv("INVITATION_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.InboundEventRejectDuplicates, err = boolEnv("INBOUND_EVENT_REJECT_DUPLICATES"); err != nil {
		return nil, err
	}
	if cfg.SESInsecureSkipVerify, err = boolEnv("SES_INSECURE_SKIP_VERIFY"); err != nil {
		return nil, err
	}

	// The event ledger follows the database unless chosen explicitly.
	if cfg.InboundEventStore == "" {
		cfg.InboundEventStore = StoreMemory
		if cfg.DBUrl != "" {
			cfg.InboundEventStore = StorePostgres
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.RateLimitStore {
	case StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("config: RATE_LIMIT_STORE=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("config: unknown RATE_LIMIT_STORE %q", c.RateLimitStore)
	}
	switch c.InboundEventStore {
	case StoreMemory:
	case StorePostgres:
		if c.DBUrl == "" {
			return fmt.Errorf("config: INBOUND_EVENT_STORE=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("config: unknown INBOUND_EVENT_STORE %q", c.InboundEventStore)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: REQUEST_TIMEOUT must be positive")
	}
	if c.InvitationTTL <= 0 {
		return fmt.Errorf("config: INVITATION_TTL must be positive")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
