package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowMethods = "GET,POST,OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
)

// CorsPolicy resolves the Access-Control-Allow-Origin value from a static allow-list plus the site origin.
type CorsPolicy struct {
	origins []string
}

// NewCorsPolicy builds the allow-list from the configured origins followed by siteURL. Blank entries are skipped.
func NewCorsPolicy(allowedOrigins []string, siteURL string) *CorsPolicy {
	p := &CorsPolicy{}
	seen := make(map[string]struct{}, len(allowedOrigins)+1)
	for _, o := range append(append([]string{}, allowedOrigins...), siteURL) {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if _, dup := seen[o]; dup {
			continue
		}
		seen[o] = struct{}{}
		p.origins = append(p.origins, o)
	}
	return p
}

// AllowedOrigin reflects origin when it starts with an allow-listed entry. Otherwise it returns the first
// configured origin, or "*" when nothing is configured. The request origin is never echoed unmatched.
func (p *CorsPolicy) AllowedOrigin(origin string) string {
	if origin != "" {
		for _, o := range p.origins {
			if strings.HasPrefix(origin, o) {
				return origin
			}
		}
	}
	if len(p.origins) == 0 {
		return "*"
	}
	return p.origins[0]
}

// Headers returns the CORS headers for a substantive response to r.
func (p *CorsPolicy) Headers(r *http.Request) http.Header {
	hdr := http.Header{}
	hdr.Set("Access-Control-Allow-Origin", p.AllowedOrigin(r.Header.Get("Origin")))
	hdr.Set("Access-Control-Allow-Credentials", "true")
	hdr.Set("Vary", "Origin")
	return hdr
}

// Preflight answers an OPTIONS request with 204 and no body.
func (p *CorsPolicy) Preflight(w http.ResponseWriter, r *http.Request) {
	p.apply(w, r)
	w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
	w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
	w.WriteHeader(http.StatusNoContent)
}

func (p *CorsPolicy) apply(w http.ResponseWriter, r *http.Request) {
	for k, v := range p.Headers(r) {
		w.Header()[k] = v
	}
}

// CORS returns a handler that adds the policy headers to every response and
// responds to OPTIONS preflight requests with 204.
func CORS(policy *CorsPolicy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			policy.Preflight(w, r)
			return
		}
		policy.apply(w, r)
		next.ServeHTTP(w, r)
	})
}
