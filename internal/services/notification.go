package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"projectgateway/internal/domain"
)

// Side effect names reported in FanoutResult.
const (
	SideEffectNotification = "notification"
	SideEffectSlackMessage = "slack_message"
	SideEffectLinkPreview  = "link_preview"
	SideEffectEmail        = "email"
)

const maxExcerptRunes = 280

type notificationService struct {
	taskRepo         domain.TaskRepository
	projectRepo      domain.ProjectRepository
	profileRepo      domain.ProfileRepository
	notificationRepo domain.NotificationRepository
	webhookSecrets   domain.WebhookSecretService
	chat             domain.ChatPoster
	previewer        domain.PagePreviewer
	labels           domain.LabelCatalog
	defaultChannel   string
	logger           *slog.Logger
	now              func() time.Time
	contextTimeout   time.Duration
}

// NewNotificationService returns the notification fanout. previewer may be nil to disable link previews.
func NewNotificationService(
	taskRepo domain.TaskRepository,
	projectRepo domain.ProjectRepository,
	profileRepo domain.ProfileRepository,
	notificationRepo domain.NotificationRepository,
	webhookSecrets domain.WebhookSecretService,
	chat domain.ChatPoster,
	previewer domain.PagePreviewer,
	labels domain.LabelCatalog,
	defaultChannel string,
	logger *slog.Logger,
	timeout time.Duration,
) domain.NotificationService {
	return &notificationService{
		taskRepo:         taskRepo,
		projectRepo:      projectRepo,
		profileRepo:      profileRepo,
		notificationRepo: notificationRepo,
		webhookSecrets:   webhookSecrets,
		chat:             chat,
		previewer:        previewer,
		labels:           labels,
		defaultChannel:   defaultChannel,
		logger:           logger,
		now:              time.Now,
		contextTimeout:   timeout,
	}
}

func (s *notificationService) NotifyMention(ctx context.Context, callerID string, in domain.MentionInput) (*domain.FanoutResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ok, err := s.taskRepo.CanView(ctx, in.TaskID, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("check task access: %w", err)
	}
	if !ok {
		return nil, domain.ErrForbidden
	}

	recipients := dedupe(in.MentionedUserIDs)
	result := &domain.FanoutResult{Recipients: len(recipients), SideEffects: []domain.SideEffect{}}

	payload, err := json.Marshal(domain.MentionPayload{
		TaskID:      in.TaskID,
		CommentID:   in.CommentID,
		Text:        in.CommentText,
		TaskURL:     in.TaskURL,
		MentionedBy: callerID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode mention payload: %w", err)
	}
	for _, userID := range recipients {
		n := &domain.Notification{UserID: userID, Type: domain.NotificationMention, Payload: payload}
		err := s.notificationRepo.Create(ctx, n)
		if err != nil {
			s.logger.WarnContext(ctx, "mention notification not stored", "task_id", in.TaskID, "user_id", userID, "err", err)
		} else {
			result.Delivered++
		}
		result.Record(SideEffectNotification, userID, err)
	}

	if s.defaultChannel != "" && s.chat.CanPostMessages() {
		text := s.mentionMessage(ctx, callerID, recipients, in, result)
		err := s.chat.PostMessage(ctx, s.defaultChannel, text)
		if err != nil {
			s.logger.WarnContext(ctx, "mention slack message failed", "channel", s.defaultChannel, "err", err)
		}
		result.Record(SideEffectSlackMessage, s.defaultChannel, err)
	}
	return result, nil
}

func (s *notificationService) mentionMessage(ctx context.Context, callerID string, recipients []string, in domain.MentionInput, result *domain.FanoutResult) string {
	names := s.displayNames(ctx, append([]string{callerID}, recipients...))
	named := make([]string, 0, len(recipients))
	for _, id := range recipients {
		named = append(named, names[id])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s: %q", names[callerID], s.labels.Label("en", domain.LabelGroupText, "mention"),
		strings.Join(named, ", "), excerpt(in.CommentText))
	if in.TaskURL != "" {
		link := in.TaskURL
		if s.previewer != nil {
			title, err := s.previewer.Title(ctx, in.TaskURL)
			if err != nil {
				s.logger.InfoContext(ctx, "link preview unavailable", "url", in.TaskURL, "err", err)
			} else {
				link = fmt.Sprintf("<%s|%s>", in.TaskURL, title)
			}
			result.Record(SideEffectLinkPreview, in.TaskURL, err)
		}
		fmt.Fprintf(&b, "\n%s", link)
	}
	return b.String()
}

// displayNames maps ids to display names, falling back to the id itself.
func (s *notificationService) displayNames(ctx context.Context, ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		names[id] = id
	}
	profiles, err := s.profileRepo.ListByIDs(ctx, dedupe(ids))
	if err != nil {
		s.logger.WarnContext(ctx, "profile lookup failed", "err", err)
		return names
	}
	for _, p := range profiles {
		if p.DisplayName != "" {
			names[p.ID] = p.DisplayName
		}
	}
	return names
}

func (s *notificationService) NotifyTaskEvent(ctx context.Context, callerID string, ev domain.TaskEvent) (*domain.TaskDelivery, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ev.Kind != domain.TaskEventCreated && ev.Kind != domain.TaskEventUpdated {
		return nil, domain.NewValidationError("event", "must be task.created or task.updated")
	}
	project, err := s.projectRepo.GetByID(ctx, ev.Task.ProjectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	if _, err := s.projectRepo.MemberRole(ctx, project.ID, callerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, fmt.Errorf("resolve project role: %w", err)
	}

	channel := project.SlackChannel
	if channel == "" {
		channel = s.defaultChannel
	}
	webhookURL, err := s.webhookSecrets.Resolve(ctx, project.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "project webhook unavailable", "project_id", project.ID, "err", err)
		webhookURL = ""
	}

	text := s.taskEventMessage(ev)
	var delivery *domain.TaskDelivery
	switch {
	case channel != "" && s.chat.CanPostMessages():
		delivery = &domain.TaskDelivery{Via: "bot", Channel: channel}
		err = s.chat.PostMessage(ctx, channel, text)
	case webhookURL != "":
		delivery = &domain.TaskDelivery{Via: "webhook"}
		err = s.chat.PostWebhook(ctx, webhookURL, domain.ChatReply{Text: text})
	default:
		return nil, fmt.Errorf("%w: no slack channel or webhook configured for project %s", domain.ErrConfiguration, project.ID)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "task event delivery failed", "project_id", project.ID, "via", delivery.Via, "err", err)
		delivery.Error = err.Error()
		return delivery, nil
	}
	delivery.Delivered = true
	return delivery, nil
}

func (s *notificationService) taskEventMessage(ev domain.TaskEvent) string {
	loc := ev.Locale
	label := func(group, value string) string { return s.labels.Label(loc, group, value) }

	heading := label(domain.LabelGroupText, "task_created")
	if ev.Kind == domain.TaskEventUpdated {
		heading = label(domain.LabelGroupText, "task_updated")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*: %s", heading, ev.Task.Title)

	fields := make([]string, 0, 4)
	if ev.Task.Priority != "" {
		fields = append(fields, label(domain.LabelGroupText, "priority")+": "+label(domain.LabelGroupPriority, ev.Task.Priority))
	}
	if ev.Task.Status != "" {
		fields = append(fields, label(domain.LabelGroupText, "status")+": "+label(domain.LabelGroupStatus, ev.Task.Status))
	}
	if ev.Task.DueDate != nil {
		fields = append(fields, label(domain.LabelGroupText, "due")+": "+ev.Task.DueDate.Format("2006-01-02"))
	}
	if ev.Task.AssigneeName != "" {
		fields = append(fields, label(domain.LabelGroupText, "assignee")+": "+ev.Task.AssigneeName)
	}
	if len(fields) > 0 {
		b.WriteString("\n" + strings.Join(fields, " | "))
	}
	if ev.Task.URL != "" {
		b.WriteString("\n" + ev.Task.URL)
	}
	if ev.ActorName != "" {
		fmt.Fprintf(&b, "\n_%s %s_", label(domain.LabelGroupText, "by"), ev.ActorName)
	}
	return b.String()
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, total, err := s.notificationRepo.ListByUser(ctx, userID, unreadOnly, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	if list == nil {
		list = []*domain.Notification{}
	}
	return list, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.notificationRepo.MarkRead(ctx, id, userID, s.now().UTC()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// dedupe drops repeated and empty ids, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxExcerptRunes {
		return string(r[:maxExcerptRunes]) + "…"
	}
	return s
}
