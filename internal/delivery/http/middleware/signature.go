package middleware

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"projectgateway/internal/adapters/signature"
	h "projectgateway/internal/delivery/http/helpers"
)

// MaxWebhookBodyBytes bounds signed webhook bodies.
const MaxWebhookBodyBytes = 1 << 20

// Signature headers per scheme.
const (
	HeaderSlackTimestamp = "X-Slack-Request-Timestamp"
	HeaderSlackSignature = "X-Slack-Signature"
	HeaderGitHubSig256   = "X-Hub-Signature-256"
)

// VerifySignature returns a wrapper that checks the HMAC signature over the raw body before calling next.
// The body is restored for next. next is never called when verification fails.
func VerifySignature(verifier *signature.Verifier, scheme signature.Scheme, secret string, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				logger.ErrorContext(r.Context(), "signing secret not configured", "scheme", scheme.String(), "path", r.URL.Path)
				h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeConfigurationError, scheme.String()+" signing secret is not configured")
				return
			}
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxWebhookBodyBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					h.WriteJSONError(w, http.StatusRequestEntityTooLarge, h.ErrCodePayloadTooLarge, "request body too large")
					return
				}
				h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "could not read request body")
				return
			}

			var timestamp, sig string
			switch scheme {
			case signature.SchemeSlack:
				timestamp = r.Header.Get(HeaderSlackTimestamp)
				sig = r.Header.Get(HeaderSlackSignature)
			case signature.SchemeGitHub:
				sig = r.Header.Get(HeaderGitHubSig256)
			}
			if !verifier.Verify(secret, timestamp, sig, body, scheme) {
				logger.WarnContext(r.Context(), "signature verification failed", "scheme", scheme.String(), "path", r.URL.Path)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid signature")
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			r.ContentLength = int64(len(body))
			next(w, r)
		}
	}
}
