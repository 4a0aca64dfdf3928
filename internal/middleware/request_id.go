// Package middleware holds the HTTP middleware chain of the API.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"
	// TraceIDHeader carries an upstream trace id, echoed when well formed.
	TraceIDHeader = "X-Trace-ID"

	maxRequestIDLength = 128
)

type correlation struct {
	requestID string
	traceID   string
}

type correlationKey struct{}

// RequestID tags each request with a correlation id. A well formed
// X-Request-ID is reused, anything else is replaced by a fresh UUID.
// X-Trace-ID is kept only when it passes the same check.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := correlation{
			requestID: r.Header.Get(RequestIDHeader),
			traceID:   r.Header.Get(TraceIDHeader),
		}
		if !validRequestID(ids.requestID) {
			ids.requestID = uuid.NewString()
		}
		if !validRequestID(ids.traceID) {
			ids.traceID = ""
		}

		w.Header().Set(RequestIDHeader, ids.requestID)
		if ids.traceID != "" {
			w.Header().Set(TraceIDHeader, ids.traceID)
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), correlationKey{}, ids)))
	})
}

// GetRequestID returns the request id, or "" outside RequestID.
func GetRequestID(ctx context.Context) string {
	ids, _ := ctx.Value(correlationKey{}).(correlation)
	return ids.requestID
}

// GetTraceID returns the propagated trace id, if any.
func GetTraceID(ctx context.Context) string {
	ids, _ := ctx.Value(correlationKey{}).(correlation)
	return ids.traceID
}

// validRequestID accepts short printable ASCII so client values cannot
// inject control characters into logs.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '!' || id[i] > '~' {
			return false
		}
	}
	return true
}
