package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"projectgateway/internal/domain"
)

// DefaultInvitationTTL is how long an invitation stays pending.
const DefaultInvitationTTL = 7 * 24 * time.Hour

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type invitationService struct {
	teamRepo         domain.TeamRepository
	invitationRepo   domain.TeamInvitationRepository
	profileRepo      domain.ProfileRepository
	notificationRepo domain.NotificationRepository
	emailService     domain.EmailService
	siteURL          string
	ttl              time.Duration
	logger           *slog.Logger
	now              func() time.Time
	contextTimeout   time.Duration
}

func NewInvitationService(
	teamRepo domain.TeamRepository,
	invitationRepo domain.TeamInvitationRepository,
	profileRepo domain.ProfileRepository,
	notificationRepo domain.NotificationRepository,
	emailService domain.EmailService,
	siteURL string,
	ttl time.Duration,
	logger *slog.Logger,
	timeout time.Duration,
) domain.InvitationService {
	if ttl <= 0 {
		ttl = DefaultInvitationTTL
	}
	return &invitationService{
		teamRepo:         teamRepo,
		invitationRepo:   invitationRepo,
		profileRepo:      profileRepo,
		notificationRepo: notificationRepo,
		emailService:     emailService,
		siteURL:          strings.TrimRight(siteURL, "/"),
		ttl:              ttl,
		logger:           logger,
		now:              time.Now,
		contextTimeout:   timeout,
	}
}

func (s *invitationService) Create(ctx context.Context, teamID, callerID, email string, role domain.TeamRole) (*domain.TeamInvitation, []domain.SideEffect, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	var fields []domain.FieldError
	if !emailPattern.MatchString(email) {
		fields = append(fields, domain.FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if !role.Invitable() {
		fields = append(fields, domain.FieldError{Field: "role", Message: "must be one of admin, member, viewer"})
	}
	if len(fields) > 0 {
		return nil, nil, &domain.ValidationError{Fields: fields}
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get team: %w", err)
	}
	if team.OwnerID != callerID {
		return nil, nil, domain.ErrForbidden
	}

	profile, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, fmt.Errorf("get invitee profile: %w", err)
	}
	if profile != nil {
		member, err := s.teamRepo.IsMember(ctx, teamID, profile.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("check team membership: %w", err)
		}
		if member {
			return nil, nil, domain.ErrAlreadyMember
		}
	}

	token, err := newInvitationToken()
	if err != nil {
		return nil, nil, fmt.Errorf("generate invitation token: %w", err)
	}
	inv := &domain.TeamInvitation{
		TeamID:    teamID,
		Email:     email,
		Role:      role,
		Token:     token,
		InvitedBy: callerID,
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, nil, fmt.Errorf("create invitation: %w", err)
	}

	var effects domain.FanoutResult
	err = s.emailService.SendTeamInvitation(ctx, &domain.TeamInvitationEmailData{
		Email:     email,
		TeamName:  team.Name,
		Role:      role,
		AcceptURL: s.acceptURL(token),
		ExpiresAt: inv.ExpiresAt,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "invitation email failed", "invitation_id", inv.ID, "err", err)
	}
	effects.Record(SideEffectEmail, email, err)

	if profile != nil {
		err = s.notifyInvite(ctx, profile.ID, inv)
		if err != nil {
			s.logger.WarnContext(ctx, "invitation notification failed", "invitation_id", inv.ID, "err", err)
		}
		effects.Record(SideEffectNotification, profile.ID, err)
	}
	return inv, effects.SideEffects, nil
}

func (s *invitationService) acceptURL(token string) string {
	return s.siteURL + "/invitations/" + url.PathEscape(token)
}

func (s *invitationService) notifyInvite(ctx context.Context, userID string, inv *domain.TeamInvitation) error {
	payload, err := json.Marshal(domain.TeamInvitePayload{
		InvitationID: inv.ID,
		TeamID:       inv.TeamID,
		Role:         inv.Role,
		InvitedBy:    inv.InvitedBy,
		ExpiresAt:    inv.ExpiresAt,
		Token:        inv.Token,
		AcceptURL:    s.acceptURL(inv.Token),
	})
	if err != nil {
		return fmt.Errorf("encode invite payload: %w", err)
	}
	return s.notificationRepo.Create(ctx, &domain.Notification{UserID: userID, Type: domain.NotificationTeamInvite, Payload: payload})
}

func (s *invitationService) Get(ctx context.Context, token string) (*domain.TeamInvitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

func (s *invitationService) Accept(ctx context.Context, token, userID string) (*domain.TeamInvitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	now := s.now().UTC()
	if inv.StatusAt(now) != domain.InvitationPending {
		return nil, domain.ErrInvitationNotActionable
	}
	if err := s.invitationRepo.Accept(ctx, inv.ID, userID, now); err != nil {
		if errors.Is(err, domain.ErrInvitationNotActionable) {
			return nil, domain.ErrInvitationNotActionable
		}
		return nil, fmt.Errorf("accept invitation: %w", err)
	}
	inv.AcceptedAt = &now
	return inv, nil
}

func (s *invitationService) Decline(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get invitation: %w", err)
	}
	if err := s.invitationRepo.DeletePending(ctx, inv.ID, s.now().UTC()); err != nil {
		if errors.Is(err, domain.ErrInvitationNotActionable) {
			return domain.ErrInvitationNotActionable
		}
		return fmt.Errorf("decline invitation: %w", err)
	}
	return nil
}

// SyncOnRegistration creates one team_invite notification per pending invitation for email.
// It does not check for earlier notifications, so repeated calls can duplicate them.
func (s *invitationService) SyncOnRegistration(ctx context.Context, userID, email string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return 0, domain.NewValidationError("email", "token has no email claim")
	}
	pending, err := s.invitationRepo.ListPendingByEmail(ctx, email, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("list pending invitations: %w", err)
	}
	inserted := 0
	for _, inv := range pending {
		if err := s.notifyInvite(ctx, userID, inv); err != nil {
			s.logger.WarnContext(ctx, "sync invitation notification failed", "invitation_id", inv.ID, "err", err)
			continue
		}
		inserted++
	}
	return inserted, nil
}

func newInvitationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
