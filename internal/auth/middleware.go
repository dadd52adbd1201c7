package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/chirper/chirper/internal/platform/httpx"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// Hooks receives notifications from the auth core, used to feed metrics.
type Hooks interface {
	TokenIssued()
	TokenRejected()
}

// Middleware returns the request identity filter. It runs once per request
// before any business handler: it extracts and verifies the bearer token and
// binds an Identity into the request context. It never rejects a request
// itself; requests without a usable token simply proceed unauthenticated and
// downstream authorization fails closed.
func Middleware(codec *TokenCodec, logger *slog.Logger, hooks ...Hooks) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := codec.Decode(token)
			if err != nil {
				if logger != nil {
					logger.Debug("invalid bearer token", slog.Any("error", err))
				}
				for _, h := range hooks {
					h.TokenRejected()
				}
				next.ServeHTTP(w, r)
				return
			}
			userID, ok := claims.UserID()
			if !ok {
				if logger != nil && claims.Subject() != "" {
					logger.Debug("token carries no numeric user id", slog.String("subject", claims.Subject()))
				}
				next.ServeHTTP(w, r)
				return
			}
			identity := &Identity{UserID: userID, Actions: claims.Actions()}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// extractBearerToken pulls the token out of the Authorization header. The
// "Bearer " prefix is case-sensitive and the remainder must be non-empty.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(authorizationHeader)
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

// RequireActions guards a route group: 401 when the request carries no
// identity, 403 when the identity lacks any of the required actions.
func RequireActions(actions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			for _, action := range actions {
				if !identity.Can(action) {
					httpx.RespondError(w, httpx.ErrForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyAction is the or-variant: the identity needs at least one of the
// listed actions. Read endpoints use it so writers are not locked out of
// reads.
func RequireAnyAction(actions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			for _, action := range actions {
				if identity.Can(action) {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.RespondError(w, httpx.ErrForbidden)
		})
	}
}
