package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"projectgateway/internal/delivery/http/helpers"
	"projectgateway/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWebhookSecret(t *testing.T) {
	stored := "https://hooks.slack.com/services/T/B/X"
	tests := []struct {
		name       string
		query      string
		url        *string
		svcErr     error
		wantStatus int
		wantCode   string
		wantURL    *string
	}{
		{name: "stored url", query: "?projectId=" + testProjectID, url: &stored, wantStatus: http.StatusOK, wantURL: &stored},
		{name: "nothing stored", query: "?projectId=" + testProjectID, wantStatus: http.StatusOK},
		{name: "missing project id", query: "", wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "not an admin", query: "?projectId=" + testProjectID, svcErr: domain.ErrForbidden, wantStatus: http.StatusForbidden, wantCode: helpers.ErrCodeForbidden},
		{name: "key not configured", query: "?projectId=" + testProjectID, svcErr: fmt.Errorf("%w: no key", domain.ErrConfiguration), wantStatus: http.StatusInternalServerError, wantCode: helpers.ErrCodeConfigurationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewWebhookSecretController(testLogger, &fakeWebhookSecretService{url: tt.url, getErr: tt.svcErr})
			rr := httptest.NewRecorder()

			c.GetWebhookSecret(rr, authed(http.MethodGet, "/webhook-secret"+tt.query, ""))

			require.Equal(t, tt.wantStatus, rr.Code)
			data, apiErr := decodeEnvelope(t, rr)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				return
			}
			var resp WebhookSecretResponse
			require.NoError(t, json.Unmarshal(data, &resp))
			assert.Equal(t, testProjectID, resp.ProjectID)
			assert.Equal(t, tt.wantURL, resp.WebhookURL)
		})
	}
}

func TestPutWebhookSecret(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
	}{
		{"stored", fmt.Sprintf(`{"projectId":%q,"webhookUrl":"https://hooks.slack.com/services/T/B/X"}`, testProjectID), nil, http.StatusOK},
		{"bad project id", `{"projectId":"x","webhookUrl":"https://hooks.slack.com/services/T/B/X"}`, nil, http.StatusBadRequest},
		{"missing url", fmt.Sprintf(`{"projectId":%q}`, testProjectID), nil, http.StatusBadRequest},
		{"foreign host rejected by service", fmt.Sprintf(`{"projectId":%q,"webhookUrl":"https://evil.test/x"}`, testProjectID), domain.NewValidationError("webhookUrl", "must start with https://hooks.slack.com/"), http.StatusBadRequest},
		{"not an admin", fmt.Sprintf(`{"projectId":%q,"webhookUrl":"https://hooks.slack.com/x"}`, testProjectID), domain.ErrForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeWebhookSecretService{putErr: tt.svcErr}
			c := NewWebhookSecretController(testLogger, svc)
			rr := httptest.NewRecorder()

			c.PutWebhookSecret(rr, authed(http.MethodPut, "/webhook-secret", tt.body))

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "https://hooks.slack.com/services/T/B/X", svc.lastPutURL)
			}
		})
	}
}
