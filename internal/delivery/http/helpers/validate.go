package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"projectgateway/internal/domain"
)

// MaxJSONBodyBytes bounds JSON request bodies.
const MaxJSONBodyBytes = 64 << 10

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// Validator is implemented by request DTOs that support validation.
// Validate returns the invalid fields; nil or empty means valid.
type Validator interface {
	Validate() []domain.FieldError
}

// DecodeAndValidate decodes the request body into dest (with DisallowUnknownFields)
// and, if dest implements Validator, runs Validate(). On decode or validation failure
// it writes a 400 JSON error and returns false; otherwise returns true.
// Callers should return immediately when DecodeAndValidate returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			WriteJSONError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "request body is empty")
		default:
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "malformed JSON: "+err.Error())
		}
		return false
	}
	if dec.More() {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "request body must hold a single JSON object")
		return false
	}
	if v, ok := dest.(Validator); ok {
		if fields := v.Validate(); len(fields) > 0 {
			WriteValidationError(w, fields)
			return false
		}
	}
	return true
}

// IsUUID reports whether s is a canonical UUID.
func IsUUID(s string) bool {
	return uuidRegex.MatchString(s)
}

// IsAbsoluteHTTPURL reports whether s is an absolute http or https URL.
func IsAbsoluteHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
