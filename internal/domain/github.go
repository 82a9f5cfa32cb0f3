package domain

import "context"

// GitHub event names from the X-GitHub-Event header.
const (
	GitHubEventPing         = "ping"
	GitHubEventIssues       = "issues"
	GitHubEventIssueComment = "issue_comment"
	GitHubEventPullRequest  = "pull_request"
)

type GitHubRepository struct {
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
}

type GitHubUser struct {
	Login string `json:"login"`
}

type GitHubIssue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	State   string `json:"state"`
	HTMLURL string `json:"html_url"`
}

type GitHubComment struct {
	ID      int64  `json:"id"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

type GitHubPullRequest struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	State   string `json:"state"`
	Merged  bool   `json:"merged"`
	HTMLURL string `json:"html_url"`
}

type GitHubPingEvent struct {
	Zen    string `json:"zen"`
	HookID int64  `json:"hook_id"`
}

type GitHubIssuesEvent struct {
	Action     string           `json:"action"`
	Issue      GitHubIssue      `json:"issue"`
	Repository GitHubRepository `json:"repository"`
	Sender     GitHubUser       `json:"sender"`
}

type GitHubIssueCommentEvent struct {
	Action     string           `json:"action"`
	Issue      GitHubIssue      `json:"issue"`
	Comment    GitHubComment    `json:"comment"`
	Repository GitHubRepository `json:"repository"`
	Sender     GitHubUser       `json:"sender"`
}

type GitHubPullRequestEvent struct {
	Action      string            `json:"action"`
	Number      int               `json:"number"`
	PullRequest GitHubPullRequest `json:"pull_request"`
	Repository  GitHubRepository  `json:"repository"`
	Sender      GitHubUser        `json:"sender"`
}

// GitHubService dispatches verified GitHub deliveries by event type.
// It returns ErrInvalidInput when the payload does not match the event schema.
type GitHubService interface {
	HandleEvent(ctx context.Context, eventType string, body []byte) (handled bool, err error)
}
