package board

import "context"

// AuthContext yields the id of the user behind a request.
type AuthContext interface {
	UserID(ctx context.Context) (string, bool)
}

type userIDKey struct{}

// WithUserID returns a copy of ctx carrying id as the current user.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// ContextAuth reads the user id stored by WithUserID.
type ContextAuth struct{}

func (ContextAuth) UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}

// StaticAuth always reports the same user. An empty value means nobody is
// signed in.
type StaticAuth string

func (a StaticAuth) UserID(context.Context) (string, bool) {
	return string(a), a != ""
}
