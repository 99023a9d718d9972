package session

import "context"

type contextKey int

const userKey contextKey = iota

// WithUser returns a new context with the given user attached.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext retrieves the user from the context.
// Returns nil if no user is present.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userKey).(*User)
	return u
}
