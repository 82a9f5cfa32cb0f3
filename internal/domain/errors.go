package domain

import (
	"errors"
	"strings"
)

// Sentinel errors shared by services and repositories.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrAlreadyMember = errors.New("already a team member")

	// ErrConfiguration is returned when a secret, key, or destination needed by an operation is not configured.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvitationNotActionable is returned when an invitation is no longer pending (accepted or expired).
	ErrInvitationNotActionable = errors.New("invitation is not pending")

	// ErrDuplicateDelivery is returned by an EventLedger that rejects duplicates when (source, delivery_id) was already stored.
	ErrDuplicateDelivery = errors.New("duplicate delivery")
)

// FieldError describes a single invalid request field.
// swagger:model FieldError
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries structured field errors. Controllers render it as 400 bad_request.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError returns a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match validation failures.
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
