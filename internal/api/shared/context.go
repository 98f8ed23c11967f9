// Package shared holds the request context keys and the JSON request and
// response helpers used by both the handlers and the middleware.
package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is the type of the values this package stores in a context.
type ContextKey string

const (
	// UserIDContextKey holds the authenticated user's uuid.UUID.
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey holds the request's trace ID.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a generated trace ID.
	TraceIDLength = 16

	// TraceIDHeader carries the trace ID in and out of the API.
	TraceIDHeader = "X-Trace-ID"
)

var traceIDPattern = regexp.MustCompile(`^[A-Za-z0-9\-_.:/]{8,128}$`)

// SetTraceID stores a freshly generated trace ID in ctx.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, NewTraceID())
}

// WithTraceID stores id in ctx. An empty or malformed id is replaced with a
// generated one so that client supplied values never reach the logs raw.
func WithTraceID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if !traceIDPattern.MatchString(id) {
		id = NewTraceID()
	}
	return context.WithValue(ctx, TraceIDKey, id)
}

// GetTraceID returns the trace ID stored in ctx, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// NewTraceID returns 32 random hex characters. It falls back to a UUID when
// the system random source fails.
func NewTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		return strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return hex.EncodeToString(b)
}

// WithUserID stores the authenticated user's ID in ctx.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user's ID. The second result
// is false when the request is unauthenticated.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
