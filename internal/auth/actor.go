package auth

import (
	"context"

	"github.com/goliatone/go-manual/internal/permissions"
	"github.com/goliatone/go-manual/internal/users"
	"github.com/google/uuid"
)

// Actor is the signed in user of a request.
type Actor struct {
	UserID uuid.UUID  `json:"id"`
	OpenID string     `json:"openId"`
	Role   users.Role `json:"role"`
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == users.RoleAdmin
}

type actorKey struct{}

// WithActor attaches actor and its permissions to ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	ctx = context.WithValue(ctx, actorKey{}, actor)
	return permissions.WithPermissions(ctx, PermissionsFor(actor.Role)...)
}

// Anonymous marks ctx as a request without a signed in user.
func Anonymous(ctx context.Context) context.Context {
	return permissions.WithPermissions(ctx)
}

// ActorFromContext returns the actor attached by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok && actor.UserID != uuid.Nil
}

// ActorID returns the id of the signed in user.
func ActorID(ctx context.Context) (uuid.UUID, bool) {
	actor, ok := ActorFromContext(ctx)
	return actor.UserID, ok
}

// PermissionsFor lists the permissions granted to role.
func PermissionsFor(role users.Role) []string {
	files := permissions.Wildcard(permissions.ResourceFiles)
	if role == users.RoleAdmin {
		return []string{permissions.Wildcard(permissions.ResourceManual), files}
	}
	return []string{files}
}
