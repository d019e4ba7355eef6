// Package session provides conversation session id primitives.
package session

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// URLParam is the chi route parameter holding a session id.
const URLParam = "id"

type contextKey int

const sessionIDKey contextKey = iota

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// NewID returns a fresh random session id. Ids are never reused across page
// loads or API conversations.
func NewID() string {
	return uuid.NewString()
}

// Valid reports whether id is an acceptable session id.
func Valid(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// Sanitize trims id and returns "" when it is not a valid session id.
func Sanitize(id string) string {
	id = strings.TrimSpace(id)
	if !Valid(id) {
		return ""
	}
	return id
}

// WithID returns a copy of ctx carrying the session id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// IDFromContext extracts the session id from the request context.
func IDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// Middleware validates the session id route parameter and stores it in the
// request context. Requests with a malformed id get a 400 with a JSON error
// body.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Sanitize(chi.URLParam(r, URLParam))
		if id == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid session id"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

// IPFromRequest returns a normalized remote IP for request tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
