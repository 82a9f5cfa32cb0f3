package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"projectgateway/internal/domain"
)

type gitHubService struct {
	logger *slog.Logger
}

// NewGitHubService returns a dispatcher whose handlers only log the decoded event.
func NewGitHubService(logger *slog.Logger) domain.GitHubService {
	return &gitHubService{logger: logger}
}

func decodeEvent[T any](body []byte) (T, error) {
	var ev T
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("%w: malformed payload: %v", domain.ErrInvalidInput, err)
	}
	return ev, nil
}

func (s *gitHubService) HandleEvent(ctx context.Context, eventType string, body []byte) (bool, error) {
	switch eventType {
	case domain.GitHubEventPing:
		ev, err := decodeEvent[domain.GitHubPingEvent](body)
		if err != nil {
			return false, err
		}
		s.logger.InfoContext(ctx, "github ping", "hook_id", ev.HookID, "zen", ev.Zen)
	case domain.GitHubEventIssues:
		ev, err := decodeEvent[domain.GitHubIssuesEvent](body)
		if err != nil {
			return false, err
		}
		s.logger.InfoContext(ctx, "github issue event",
			"action", ev.Action, "repo", ev.Repository.FullName, "number", ev.Issue.Number, "sender", ev.Sender.Login)
	case domain.GitHubEventIssueComment:
		ev, err := decodeEvent[domain.GitHubIssueCommentEvent](body)
		if err != nil {
			return false, err
		}
		s.logger.InfoContext(ctx, "github issue comment event",
			"action", ev.Action, "repo", ev.Repository.FullName, "number", ev.Issue.Number, "comment_id", ev.Comment.ID)
	case domain.GitHubEventPullRequest:
		ev, err := decodeEvent[domain.GitHubPullRequestEvent](body)
		if err != nil {
			return false, err
		}
		s.logger.InfoContext(ctx, "github pull request event",
			"action", ev.Action, "repo", ev.Repository.FullName, "number", ev.Number, "merged", ev.PullRequest.Merged)
	default:
		s.logger.DebugContext(ctx, "github event ignored", "event", eventType)
		return false, nil
	}
	return true, nil
}
