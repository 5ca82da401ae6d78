package auth

import (
	"context"
)

// Caller identifies who issued an authenticated request
type Caller struct {
	// Name is the label used in logs and rate limiting keys
	Name string
	// Method is how the caller authenticated, e.g. "api_key"
	Method string
}

type contextKey string

const callerContextKey contextKey = "caller"

// WithCaller adds the caller to the context
func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, callerContextKey, caller)
}

// FromContext extracts the caller from the context
func FromContext(ctx context.Context) (*Caller, bool) {
	caller, ok := ctx.Value(callerContextKey).(*Caller)
	return caller, ok && caller != nil
}
