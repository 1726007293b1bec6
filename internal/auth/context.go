// Package auth carries the caller identity supplied by the trusted
// boundary. The service does not authenticate; it trusts the headers
// the deployment's gateway sets.
package auth

import (
	"context"
	"net/http"

	"github.com/rpattn/assettrack/internal/domain"
)

const (
	userIDHeader   = "X-User-ID"
	userRoleHeader = "X-User-Role"
)

// Actor identifies who is performing a request.
type Actor struct {
	UserID string
	Role   domain.UserRole
}

type contextKey string

const actorKey contextKey = "actor"

// ContextWithActor returns a new context carrying the actor.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext retrieves the actor from the context, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey).(Actor)
	if !ok || actor.UserID == "" {
		return Actor{}, false
	}
	return actor, true
}

// ActorFromRequest extracts the actor from the identity headers. The
// role defaults to User when absent or unknown.
func ActorFromRequest(r *http.Request) (Actor, bool) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		return Actor{}, false
	}
	role := domain.UserRole(r.Header.Get(userRoleHeader))
	if !role.Valid() {
		role = domain.UserRoleUser
	}
	return Actor{UserID: userID, Role: role}, true
}

// Middleware attaches the request actor to the context when the
// identity headers are present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor, ok := ActorFromRequest(r); ok {
			r = r.WithContext(ContextWithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}
