package auth

import "context"

// Identity is the authenticated caller for the lifetime of one request:
// a user id plus the action set captured at token issuance. Immutable once
// constructed and never persisted.
type Identity struct {
	UserID  int64
	Actions []string
}

// Can reports whether the identity holds the given permitted action.
func (id *Identity) Can(action string) bool {
	if id == nil {
		return false
	}
	for _, a := range id.Actions {
		if a == action {
			return true
		}
	}
	return false
}

type identityContextKey struct{}

// ContextWithIdentity binds the identity to the request context. Because the
// derived context dies with the request, the binding can never outlive it or
// leak into a concurrent request.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the current identity, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*Identity)
	return id, ok && id != nil
}

// ActorUserID returns the current identity's user id for audit attribution,
// or nil when the request is unauthenticated.
func ActorUserID(ctx context.Context) *int64 {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return nil
	}
	actor := id.UserID
	return &actor
}
