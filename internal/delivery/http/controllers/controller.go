package controllers

import (
	"net/http"

	"projectgateway/internal/delivery/http/helpers"
	"projectgateway/internal/delivery/http/middleware"
	"projectgateway/internal/domain"
)

// requireIdentity returns the caller identity set by RequireAuth, writing 401 when it is absent.
func requireIdentity(w http.ResponseWriter, r *http.Request) (*domain.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return nil, false
	}
	return id, true
}
