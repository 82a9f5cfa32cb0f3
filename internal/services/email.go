package services

import (
	"context"
	"fmt"
	"log/slog"

	"projectgateway/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendTeamInvitation sends the "team_invitation" template to the invitee.
func (s *emailService) SendTeamInvitation(ctx context.Context, data *domain.TeamInvitationEmailData) error {
	if data == nil {
		return fmt.Errorf("team invitation data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("team_invitation", data)
	if err != nil {
		return fmt.Errorf("failed to render team_invitation template: %w", err)
	}
	msg := domain.EmailMessage{To: data.Email, Subject: subject, HTML: htmlBody, Text: textBody}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send team invitation email: %w", err)
	}
	s.logger.InfoContext(ctx, "team invitation email sent", "team", data.TeamName)
	return nil
}
