// Package security carries the caller identity asserted by the auth layer.
package security

import "context"

type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID stores the caller identity on ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the caller identity, or "" when none was asserted.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(userIDKey).(string)
	return id
}
