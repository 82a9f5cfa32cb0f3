package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"projectgateway/internal/domain"
)

const (
	maxTaskTitleRunes = 200
	dueDateLayout     = "2006-01-02"
)

// SlashCommandUsage is the ephemeral reply for malformed commands.
const SlashCommandUsage = "Usage: /task <projectId> | <title> | priority:<low|medium|high|urgent> | due:<YYYY-MM-DD>"

var projectMessagePattern = regexp.MustCompile(`^\[PROJECT:([0-9a-fA-F-]{36})\]\s+(.{3,200})$`)

// Runner runs fn after the request has been answered.
type Runner func(ctx context.Context, fn func(ctx context.Context))

// DetachedRunner runs fn in a goroutine with the request values but not its cancellation, bounded by timeout.
func DetachedRunner(timeout time.Duration) Runner {
	return func(ctx context.Context, fn func(ctx context.Context)) {
		detached := context.WithoutCancel(ctx)
		go func() {
			ctx, cancel := context.WithTimeout(detached, timeout)
			defer cancel()
			fn(ctx)
		}()
	}
}

type slackService struct {
	projectRepo      domain.ProjectRepository
	taskRepo         domain.TaskRepository
	chat             domain.ChatPoster
	labels           domain.LabelCatalog
	automationUserID string
	runAfter         Runner
	logger           *slog.Logger
	contextTimeout   time.Duration
}

func NewSlackService(
	projectRepo domain.ProjectRepository,
	taskRepo domain.TaskRepository,
	chat domain.ChatPoster,
	labels domain.LabelCatalog,
	automationUserID string,
	runAfter Runner,
	logger *slog.Logger,
	timeout time.Duration,
) domain.SlackService {
	return &slackService{
		projectRepo:      projectRepo,
		taskRepo:         taskRepo,
		chat:             chat,
		labels:           labels,
		automationUserID: automationUserID,
		runAfter:         runAfter,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

// slashTask is a parsed /task command.
type slashTask struct {
	projectID string
	title     string
	priority  domain.TaskPriority
	due       *time.Time
}

// parseSlashTask parses "projectId | title | key:value | …". Option keys are matched through the label
// catalog aliases; unknown keys are ignored. A non-empty problem is the reply for invalid input.
func parseSlashTask(text string, labels domain.LabelCatalog) (task slashTask, problem string) {
	parts := strings.Split(text, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return slashTask{}, SlashCommandUsage
	}
	if _, err := uuid.Parse(parts[0]); err != nil {
		return slashTask{}, "Project id must be a UUID.\n" + SlashCommandUsage
	}
	if utf8.RuneCountInString(parts[1]) > maxTaskTitleRunes {
		return slashTask{}, fmt.Sprintf("Title must be at most %d characters.", maxTaskTitleRunes)
	}
	task = slashTask{projectID: parts[0], title: parts[1], priority: domain.TaskPriorityMedium}

	for _, opt := range parts[2:] {
		key, value, ok := strings.Cut(opt, ":")
		if !ok {
			continue
		}
		canonical, ok := labels.CanonicalKey(key)
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch canonical {
		case "priority":
			p, ok := labels.CanonicalPriority(value)
			if !ok {
				return slashTask{}, fmt.Sprintf("Unknown priority %q. Use low, medium, high or urgent.", value)
			}
			task.priority = p
		case "due":
			d, err := time.Parse(dueDateLayout, value)
			if err != nil {
				return slashTask{}, fmt.Sprintf("Due date %q must look like 2026-01-31.", value)
			}
			task.due = &d
		}
	}
	return task, ""
}

func (s *slackService) HandleSlashCommand(ctx context.Context, cmd domain.SlashCommand) (domain.ChatReply, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	parsed, problem := parseSlashTask(cmd.Text, s.labels)
	if problem != "" {
		return domain.ChatReply{ResponseType: domain.ChatReplyEphemeral, Text: problem}, nil
	}
	if s.automationUserID == "" {
		return domain.ChatReply{}, fmt.Errorf("%w: automation user is not set", domain.ErrConfiguration)
	}
	project, err := s.projectRepo.GetByID(ctx, parsed.projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ChatReply{ResponseType: domain.ChatReplyEphemeral, Text: "Project not found."}, nil
		}
		return domain.ChatReply{}, fmt.Errorf("get project: %w", err)
	}

	task := &domain.Task{
		ProjectID: project.ID,
		Title:     parsed.title,
		Priority:  parsed.priority,
		Status:    domain.TaskStatusTodo,
		DueDate:   parsed.due,
		CreatedBy: s.automationUserID,
		Source:    domain.TaskSourceSlackCommand,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return domain.ChatReply{}, fmt.Errorf("create task: %w", err)
	}
	s.logger.InfoContext(ctx, "task created from slash command", "task_id", task.ID, "project_id", project.ID, "slack_user", cmd.UserID)

	if cmd.ResponseURL != "" {
		announcement := domain.ChatReply{
			ResponseType: domain.ChatReplyInChannel,
			Text:         s.taskAnnouncement(task, project, cmd.UserName),
		}
		responseURL := cmd.ResponseURL
		s.runAfter(ctx, func(ctx context.Context) {
			if err := s.chat.PostWebhook(ctx, responseURL, announcement); err != nil {
				s.logger.WarnContext(ctx, "slash command acknowledgement failed", "task_id", task.ID, "err", err)
			}
		})
	}
	return domain.ChatReply{
		ResponseType: domain.ChatReplyEphemeral,
		Text:         fmt.Sprintf("Task created in %s: %s", project.Name, task.Title),
	}, nil
}

func (s *slackService) taskAnnouncement(task *domain.Task, project *domain.Project, by string) string {
	text := fmt.Sprintf("*%s* (%s): %s\n%s: %s",
		s.labels.Label("en", domain.LabelGroupText, "task_created"),
		project.Name, task.Title,
		s.labels.Label("en", domain.LabelGroupText, "priority"),
		s.labels.Label("en", domain.LabelGroupPriority, string(task.Priority)))
	if task.DueDate != nil {
		text += fmt.Sprintf(" | %s: %s", s.labels.Label("en", domain.LabelGroupText, "due"), task.DueDate.Format(dueDateLayout))
	}
	if by != "" {
		text += fmt.Sprintf("\n_%s @%s_", s.labels.Label("en", domain.LabelGroupText, "by"), by)
	}
	return text
}

func (s *slackService) HandleEvent(ctx context.Context, env domain.SlackEnvelope) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if env.Type != domain.SlackEventCallback {
		s.logger.DebugContext(ctx, "slack envelope ignored", "type", env.Type)
		return nil
	}
	var msg domain.SlackMessageEvent
	if err := json.Unmarshal(env.Event, &msg); err != nil {
		return domain.NewValidationError("event", "malformed event payload")
	}
	if msg.Type != "message" || msg.BotID != "" || msg.Subtype != "" {
		return nil
	}
	m := projectMessagePattern.FindStringSubmatch(strings.TrimSpace(msg.Text))
	if m == nil {
		return nil
	}
	projectID, title := m[1], strings.TrimSpace(m[2])
	if _, err := uuid.Parse(projectID); err != nil {
		return nil
	}
	if s.automationUserID == "" {
		return fmt.Errorf("%w: automation user is not set", domain.ErrConfiguration)
	}
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.InfoContext(ctx, "slack message names unknown project", "project_id", projectID, "event_id", env.EventID)
			return nil
		}
		return fmt.Errorf("get project: %w", err)
	}
	task := &domain.Task{
		ProjectID: project.ID,
		Title:     title,
		Priority:  domain.TaskPriorityMedium,
		Status:    domain.TaskStatusTodo,
		CreatedBy: s.automationUserID,
		Source:    domain.TaskSourceSlackMessage,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	s.logger.InfoContext(ctx, "task created from slack message", "task_id", task.ID, "project_id", project.ID, "event_id", env.EventID)

	if msg.Channel != "" && s.chat.CanPostMessages() {
		text := fmt.Sprintf("%s: %s", s.labels.Label("en", domain.LabelGroupText, "task_created"), task.Title)
		if err := s.chat.PostMessage(ctx, msg.Channel, text); err != nil {
			s.logger.WarnContext(ctx, "slack confirmation failed", "task_id", task.ID, "err", err)
		}
	}
	return nil
}
