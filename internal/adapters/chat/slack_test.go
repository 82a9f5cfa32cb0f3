package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectgateway/internal/domain"
)

func TestSlackPoster_PostMessage(t *testing.T) {
	var gotPath, gotChannel, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotChannel = r.FormValue("channel")
		gotText = r.FormValue("text")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	defer srv.Close()

	p := NewSlackPoster(Config{BotToken: "xoxb-test", APIURL: srv.URL + "/api", HTTPClient: srv.Client()})
	require.True(t, p.CanPostMessages())

	err := p.PostMessage(context.Background(), "C123", "hello")
	require.NoError(t, err)
	assert.Equal(t, "/api/chat.postMessage", gotPath)
	assert.Equal(t, "C123", gotChannel)
	assert.Equal(t, "hello", gotText)
}

func TestSlackPoster_PostMessage_apiError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer srv.Close()

	p := NewSlackPoster(Config{BotToken: "xoxb-test", APIURL: srv.URL + "/", HTTPClient: srv.Client()})
	err := p.PostMessage(context.Background(), "C404", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestSlackPoster_PostMessage_noToken(t *testing.T) {
	p := NewSlackPoster(Config{})
	assert.False(t, p.CanPostMessages())

	err := p.PostMessage(context.Background(), "C123", "hello")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSlackPoster_PostWebhook(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewSlackPoster(Config{HTTPClient: srv.Client()})
	err := p.PostWebhook(context.Background(), srv.URL+"/services/T/B/X", domain.ChatReply{
		ResponseType: domain.ChatReplyEphemeral,
		Text:         "Task created",
	})
	require.NoError(t, err)
	assert.Equal(t, "Task created", got["text"])
	assert.Equal(t, "ephemeral", got["response_type"])
}

func TestSlackPoster_PostWebhook_failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewSlackPoster(Config{HTTPClient: srv.Client()})
	err := p.PostWebhook(context.Background(), srv.URL, domain.ChatReply{Text: "x"})
	assert.Error(t, err)
}
