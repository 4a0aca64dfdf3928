// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// Envelope wraps every API response.
type Envelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Message   string    `json:"message,omitempty"`
	Details   any       `json:"details,omitempty"`
	Count     *int      `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LoginEnvelope is the login response. The session token and user summary
// are repeated at top level, where browser clients read them.
type LoginEnvelope struct {
	Envelope
	Token string `json:"token"`
	User  any    `json:"user"`
}

// Write stamps env and writes it with the given status code.
func Write(w http.ResponseWriter, status int, env Envelope) {
	env.Timestamp = time.Now().UTC()
	encode(w, status, env)
}

// WriteLogin writes a successful login carrying data plus the top-level
// token and user.
func WriteLogin(w http.ResponseWriter, token string, user, data any) {
	encode(w, http.StatusOK, LoginEnvelope{
		Envelope: Envelope{
			Success:   true,
			Data:      data,
			Message:   "login successful",
			Timestamp: time.Now().UTC(),
		},
		Token: token,
		User:  user,
	})
}

func encode(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding failure can only truncate the body.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a successful response carrying data.
func WriteData(w http.ResponseWriter, status int, data any) {
	Write(w, status, Envelope{Success: true, Data: data})
}

// WriteList writes a successful list response with its item count.
func WriteList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	count := len(items)
	Write(w, http.StatusOK, Envelope{Success: true, Data: items, Count: &count})
}

// WriteMessage writes a successful response carrying only a message.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{Success: true, Message: message})
}

// WriteError writes a failed response. message and details are optional.
func WriteError(w http.ResponseWriter, status int, errMsg, message string, details any) {
	Write(w, status, Envelope{
		Success: false,
		Error:   errMsg,
		Message: message,
		Details: details,
	})
}
