package utils

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/andrewpaige1/recallforge-api/models"
)

type contextKey string

// UserContextKey is where the authenticated user lives in the request
// context once the middleware has resolved it.
const UserContextKey contextKey = "user"

// WithUser attaches the authenticated user to a context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// GetUser returns the authenticated user resolved by the middleware.
func GetUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("Failed to encode response:", err)
	}
}

// ErrorBody is the envelope every failure response uses.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteError writes the structured error envelope {error:{code,message,details}}.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	WriteJSON(w, status, map[string]ErrorBody{
		"error": {Code: code, Message: message, Details: details},
	})
}
