package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"unicode/utf8"

	"projectgateway/internal/delivery/http/helpers"
	"projectgateway/internal/domain"
)

const maxCommentRunes = 5000

// MentionRequest is the request body for POST /notifications/mentions.
type MentionRequest struct {
	TaskID           string   `json:"task_id"`
	CommentID        string   `json:"comment_id,omitempty"`
	CommentText      string   `json:"comment_text"`
	MentionedUserIDs []string `json:"mentioned_user_ids"`
	TaskURL          string   `json:"task_url,omitempty"`
}

// Validate implements helpers.Validator.
func (m MentionRequest) Validate() []domain.FieldError {
	var errs []domain.FieldError
	if !helpers.IsUUID(m.TaskID) {
		errs = append(errs, domain.FieldError{Field: "task_id", Message: "must be a UUID"})
	}
	if m.CommentID != "" && !helpers.IsUUID(m.CommentID) {
		errs = append(errs, domain.FieldError{Field: "comment_id", Message: "must be a UUID"})
	}
	if n := utf8.RuneCountInString(m.CommentText); n < 1 || n > maxCommentRunes {
		errs = append(errs, domain.FieldError{Field: "comment_text", Message: "must be 1-" + strconv.Itoa(maxCommentRunes) + " characters"})
	}
	if len(m.MentionedUserIDs) == 0 {
		errs = append(errs, domain.FieldError{Field: "mentioned_user_ids", Message: "at least one user id is required"})
	}
	for i, id := range m.MentionedUserIDs {
		if !helpers.IsUUID(id) {
			errs = append(errs, domain.FieldError{Field: "mentioned_user_ids[" + strconv.Itoa(i) + "]", Message: "must be a UUID"})
		}
	}
	if m.TaskURL != "" && !helpers.IsAbsoluteHTTPURL(m.TaskURL) {
		errs = append(errs, domain.FieldError{Field: "task_url", Message: "must be an absolute http(s) URL"})
	}
	return errs
}

// MentionSuccessResponse is the success response envelope for POST /notifications/mentions (200).
type MentionSuccessResponse struct {
	Data  *domain.FanoutResult `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// TaskEventRequest is the request body for POST /notifications/tasks.
type TaskEventRequest struct {
	Event     string              `json:"event"`
	Task      domain.TaskSnapshot `json:"task"`
	Locale    string              `json:"locale,omitempty"`
	ActorName string              `json:"actor_name,omitempty"`
}

// Validate implements helpers.Validator.
func (t TaskEventRequest) Validate() []domain.FieldError {
	var errs []domain.FieldError
	switch domain.TaskEventKind(t.Event) {
	case domain.TaskEventCreated, domain.TaskEventUpdated:
	default:
		errs = append(errs, domain.FieldError{Field: "event", Message: "must be task.created or task.updated"})
	}
	if !helpers.IsUUID(t.Task.ID) {
		errs = append(errs, domain.FieldError{Field: "task.id", Message: "must be a UUID"})
	}
	if !helpers.IsUUID(t.Task.ProjectID) {
		errs = append(errs, domain.FieldError{Field: "task.project_id", Message: "must be a UUID"})
	}
	if t.Task.Title == "" {
		errs = append(errs, domain.FieldError{Field: "task.title", Message: "is required"})
	}
	if t.Task.URL != "" && !helpers.IsAbsoluteHTTPURL(t.Task.URL) {
		errs = append(errs, domain.FieldError{Field: "task.url", Message: "must be an absolute http(s) URL"})
	}
	return errs
}

// TaskEventSuccessResponse is the success response envelope for POST /notifications/tasks (200).
type TaskEventSuccessResponse struct {
	Data  *domain.TaskDelivery `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListNotificationsResponse is the data of GET /notifications.
type ListNotificationsResponse struct {
	Items      []*domain.Notification `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListNotificationsSuccessResponse is the success response envelope for GET /notifications (200).
type ListNotificationsSuccessResponse struct {
	Data  ListNotificationsResponse `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// MarkReadResponse is the data of POST /notifications/{id}/read.
type MarkReadResponse struct {
	ID   string `json:"id"`
	Read bool   `json:"read"`
}

type NotificationController struct {
	Logger  *slog.Logger
	Service domain.NotificationService
}

func NewNotificationController(logger *slog.Logger, svc domain.NotificationService) *NotificationController {
	return &NotificationController{Logger: logger, Service: svc}
}

// NotifyMention godoc
// @Summary Notify mentioned users
// @Description Creates one mention notification per distinct mentioned user and posts one aggregated chat message when a default channel is configured. Side effect failures are reported in the body and never fail the request.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param mention body MentionRequest true "Mention"
// @Success 200 {object} controllers.MentionSuccessResponse "data contains the fanout result"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications/mentions [post]
func (c *NotificationController) NotifyMention(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req MentionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.NotifyMention(r.Context(), id.UserID, domain.MentionInput{
		TaskID:           req.TaskID,
		CommentID:        req.CommentID,
		CommentText:      req.CommentText,
		MentionedUserIDs: req.MentionedUserIDs,
		TaskURL:          req.TaskURL,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, http.StatusInternalServerError)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// NotifyTaskEvent godoc
// @Summary Announce a task lifecycle event in chat
// @Description Posts a localized task.created or task.updated message to the project channel via the bot API, or to the project webhook URL when no channel or bot token is available. Delivery failure is reported in the body.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body TaskEventRequest true "Task event"
// @Success 200 {object} controllers.TaskEventSuccessResponse "data contains the delivery result"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or configuration_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Router /notifications/tasks [post]
func (c *NotificationController) NotifyTaskEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req TaskEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	delivery, err := c.Service.NotifyTaskEvent(r.Context(), id.UserID, domain.TaskEvent{
		Kind:      domain.TaskEventKind(req.Event),
		Task:      req.Task,
		Locale:    req.Locale,
		ActorName: req.ActorName,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, http.StatusBadRequest)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, delivery)
}

// ListNotifications godoc
// @Summary List the caller's notifications
// @Description Newest first. unread=true restricts to notifications without read_at.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 50)"
// @Success 200 {object} controllers.ListNotificationsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications [get]
func (c *NotificationController) ListNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	unread, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	params := helpers.NotificationPage.Parse(r)
	items, total, err := c.Service.List(r.Context(), id.UserID, unread, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []*domain.Notification{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListNotificationsResponse{
		Items:      items,
		Pagination: helpers.NewPaginationMeta(params, total),
	})
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Description Sets read_at once; repeating the call is a no-op. Unknown or foreign ids answer 404.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains id and read"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /notifications/{id}/read [post]
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	notificationID := r.PathValue("id")
	if !helpers.IsUUID(notificationID) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
		return
	}
	if err := c.Service.MarkRead(r.Context(), id.UserID, notificationID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err, http.StatusInternalServerError)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MarkReadResponse{ID: notificationID, Read: true})
}
