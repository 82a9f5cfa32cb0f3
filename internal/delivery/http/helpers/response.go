package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"projectgateway/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeForbidden          = "forbidden"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeRateLimited        = "rate_limited"
	ErrCodePayloadTooLarge    = "payload_too_large"
	ErrCodeConfigurationError = "configuration_error"
	ErrCodeInternalError      = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code              string              `json:"code"`
	Message           string              `json:"message"`
	Fields            []domain.FieldError `json:"fields,omitempty"`
	RetryAfterSeconds int                 `json:"retry_after_seconds,omitempty"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeEnvelope(w, statusCode, APIResponse{Data: data})
}

// WriteJSONError writes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeEnvelope(w, statusCode, APIResponse{Error: &APIError{Code: code, Message: message}})
}

// WriteValidationError writes a 400 bad_request carrying the field errors.
func WriteValidationError(w http.ResponseWriter, fields []domain.FieldError) {
	writeEnvelope(w, http.StatusBadRequest, APIResponse{Error: &APIError{
		Code:    ErrCodeBadRequest,
		Message: "request validation failed",
		Fields:  fields,
	}})
}

// WriteRateLimited writes a 429 with a Retry-After header.
func WriteRateLimited(w http.ResponseWriter, retryAfterSeconds int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
	writeEnvelope(w, http.StatusTooManyRequests, APIResponse{Error: &APIError{
		Code:              ErrCodeRateLimited,
		Message:           "too many requests",
		RetryAfterSeconds: retryAfterSeconds,
	}})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteServiceError maps a service error to its status and code. Unmapped errors are logged and
// answered with 500 without exposing the cause. configStatus is the status used for ErrConfiguration.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, configStatus int) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrInvitationNotActionable), errors.Is(err, domain.ErrAlreadyMember):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrConfiguration):
		logger.ErrorContext(r.Context(), "configuration error", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, configStatus, ErrCodeConfigurationError, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}

// WriteJSON encodes v as the whole body without the envelope. Used for replies whose shape is fixed by a
// third party (Slack slash-command replies and url_verification).
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
