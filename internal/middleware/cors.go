// Package middleware provides HTTP middleware for the chat API.
package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

var (
	allowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	allowHeaders = []string{"Content-Type", "X-Request-Id"}
)

// CORS returns middleware that handles CORS headers for allowedOrigins. An
// entry of "*" allows any origin but never with credentials. An empty list
// allows no cross-origin requests.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	wildcard := slices.Contains(allowedOrigins, "*")

	opts := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowMethods,
		AllowedHeaders:   allowHeaders,
		AllowCredentials: !wildcard,
		MaxAge:           300,
	}
	if len(allowedOrigins) == 0 {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}
	return cors.Handler(opts)
}
