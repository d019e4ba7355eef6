package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ashureev/agentchat/internal/chat"
	"github.com/ashureev/agentchat/internal/widget"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// statusFor maps a controller error to an HTTP status: guard violations
// conflict, input problems are the client's fault, everything else is a
// failed exchange with the agent.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case chat.IsGuardError(err):
		return http.StatusConflict
	case widget.IsValidation(err):
		return http.StatusBadRequest
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadGateway
	}
}
