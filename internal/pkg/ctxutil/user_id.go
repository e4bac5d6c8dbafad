package ctxutil

import "context"

type userIDKeyType struct{}

var userIDKey = userIDKeyType{}

// WithUserID attaches userID to ctx. Call this from the identity
// middleware once the caller's identity has been verified.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID retrieves the userID attached by WithUserID.
func GetUserID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(userIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
