package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectgateway/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTemplateRenderer_TeamInvitation(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	data := &domain.TeamInvitationEmailData{
		Email:     "new@example.com",
		TeamName:  "Core <Team>",
		Role:      domain.TeamRoleAdmin,
		AcceptURL: "https://app.example.com/invitations/tok123",
		ExpiresAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	subject, html, text, err := r.Render("team_invitation", data)
	require.NoError(t, err)

	assert.Equal(t, "You're invited to join Core <Team>", subject)
	assert.Contains(t, html, "Core &lt;Team&gt;")
	assert.Contains(t, html, `href="https://app.example.com/invitations/tok123"`)
	assert.Contains(t, text, "https://app.example.com/invitations/tok123")
	assert.Contains(t, text, "as admin")
	assert.Contains(t, text, "2026-03-01 12:00 UTC")
}

func TestTemplateRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	_, _, _, err = r.Render("missing", nil)
	assert.Error(t, err)
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := newSESMailer(client, MailerConfig{FromAddress: "noreply@example.com", FromName: "Gateway"}, discardLogger())

	err := m.Send(context.Background(), domain.EmailMessage{
		To: "a@example.com", Subject: "Hi", HTML: "<p>x</p>",
	})
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, "Gateway <noreply@example.com>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"a@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Hi", aws.ToString(client.input.Message.Subject.Data))
	require.NotNil(t, client.input.Message.Body.Html)
	assert.Nil(t, client.input.Message.Body.Text)
}

func TestSESMailer_SendError(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	m := newSESMailer(client, MailerConfig{FromAddress: "noreply@example.com"}, discardLogger())

	err := m.Send(context.Background(), domain.EmailMessage{To: "a@example.com", Subject: "Hi", Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
	assert.Equal(t, "noreply@example.com", aws.ToString(client.input.Source))
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, discardLogger())
	require.NoError(t, err)
	assert.NoError(t, m.Send(context.Background(), domain.EmailMessage{To: "a@example.com"}))

	_, err = NewMailer(MailerConfig{Provider: "ses"}, discardLogger())
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	m, err = NewMailer(MailerConfig{Provider: "ses", FromAddress: "x@example.com", SES: SESConfig{Region: "us-east-1"}}, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, m)
}
