// Package signature verifies HMAC-SHA256 signatures on inbound webhook deliveries.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"time"
)

// Scheme selects how the signed base string and signature format are built.
type Scheme int

const (
	// SchemeSlack signs "v0:<timestamp>:<body>" and enforces a replay window.
	SchemeSlack Scheme = iota
	// SchemeGitHub signs the raw body; there is no timestamp.
	SchemeGitHub
)

func (s Scheme) String() string {
	switch s {
	case SchemeSlack:
		return "slack"
	case SchemeGitHub:
		return "github"
	default:
		return "unknown"
	}
}

// DefaultReplayWindow is the maximum clock distance accepted for timestamped schemes.
const DefaultReplayWindow = 300 * time.Second

const (
	slackVersion = "v0"
	githubPrefix = "sha256="
)

// Verifier checks signatures for the supported schemes.
type Verifier struct {
	replayWindow time.Duration
	now          func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithClock overrides the time source used for the replay window.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// WithReplayWindow overrides DefaultReplayWindow.
func WithReplayWindow(d time.Duration) Option {
	return func(v *Verifier) { v.replayWindow = d }
}

// NewVerifier returns a Verifier with a 300 second replay window.
func NewVerifier(opts ...Option) *Verifier {
	v := &Verifier{replayWindow: DefaultReplayWindow, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify reports whether signature was produced over rawBody with secret under scheme.
// timestamp is required for SchemeSlack and ignored for SchemeGitHub.
func (v *Verifier) Verify(secret, timestamp, signature string, rawBody []byte, scheme Scheme) bool {
	if secret == "" || signature == "" {
		return false
	}
	var expected string
	switch scheme {
	case SchemeSlack:
		if !v.freshTimestamp(timestamp) {
			return false
		}
		expected = SlackSignature(secret, timestamp, rawBody)
	case SchemeGitHub:
		expected = GitHubSignature(secret, rawBody)
	default:
		return false
	}
	// ConstantTimeCompare returns 0 immediately on length mismatch; only the length is observable.
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

func (v *Verifier) freshTimestamp(timestamp string) bool {
	if timestamp == "" {
		return false
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	diff := v.now().Unix() - ts
	if diff < 0 {
		diff = -diff
	}
	return diff <= int64(v.replayWindow/time.Second)
}

// SlackSignature returns "v0=" + hex(HMAC-SHA256(secret, "v0:<timestamp>:<body>")).
func SlackSignature(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(slackVersion + ":" + timestamp + ":"))
	mac.Write(body)
	return slackVersion + "=" + hex.EncodeToString(mac.Sum(nil))
}

// GitHubSignature returns "sha256=" + hex(HMAC-SHA256(secret, body)), the X-Hub-Signature-256 format.
func GitHubSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return githubPrefix + hex.EncodeToString(mac.Sum(nil))
}
