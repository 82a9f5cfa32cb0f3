package domain

import (
	"context"
	"time"
)

// TaskPriority is the canonical priority code of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// TaskStatus is the canonical status code of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusInReview   TaskStatus = "in_review"
	TaskStatusDone       TaskStatus = "done"
)

// Task sources recorded when a task is created outside the UI.
const (
	TaskSourceSlackCommand = "slack_command"
	TaskSourceSlackMessage = "slack_message"
)

// Task is a unit of work inside a project.
// swagger:model Task
type Task struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"project_id"`
	Title     string       `json:"title"`
	Priority  TaskPriority `json:"priority"`
	Status    TaskStatus   `json:"status"`
	DueDate   *time.Time   `json:"due_date,omitempty"`
	CreatedBy string       `json:"created_by"`
	Source    string       `json:"source"`
	CreatedAt time.Time    `json:"created_at"`
}

// TaskRepository defines the task operations the gateway needs.
type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	// CanView reports whether userID can see the task. Returns ErrNotFound for unknown tasks.
	CanView(ctx context.Context, taskID, userID string) (bool, error)
}

// TaskEventKind identifies a task lifecycle change.
type TaskEventKind string

const (
	TaskEventCreated TaskEventKind = "task.created"
	TaskEventUpdated TaskEventKind = "task.updated"
)

// TaskSnapshot is the task state carried by a lifecycle event.
type TaskSnapshot struct {
	ID           string     `json:"id"`
	ProjectID    string     `json:"project_id"`
	Title        string     `json:"title"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	AssigneeName string     `json:"assignee_name,omitempty"`
	URL          string     `json:"url,omitempty"`
}

// TaskEvent is a task lifecycle change to announce in chat.
type TaskEvent struct {
	Kind      TaskEventKind
	Task      TaskSnapshot
	Locale    string
	ActorName string
}

// TaskDelivery reports how a task event was delivered. Delivery failure does not fail the request.
// swagger:model TaskDelivery
type TaskDelivery struct {
	Via       string `json:"via"`
	Channel   string `json:"channel,omitempty"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}
