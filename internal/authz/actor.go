// Package authz carries the resolved actor identity and its capability flags
// through a request. Authentication itself happens upstream; the fronting
// gateway hands this service a user id and role set which are resolved into
// an Actor exactly once, at request entry.
package authz

import (
	"context"
	"strings"
)

// Role is one of the closed set of roles known to the order core.
type Role string

const (
	RoleClient    Role = "client"
	RoleStaff     Role = "staff"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole normalizes a raw role string. Unknown roles map to "".
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleClient:
		return RoleClient
	case RoleStaff:
		return RoleStaff
	case RoleModerator:
		return RoleModerator
	case RoleAdmin:
		return RoleAdmin
	default:
		return ""
	}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    int64
	roles map[Role]struct{}
}

// NewActor builds an Actor from an id and role set. Unknown roles are dropped.
func NewActor(id int64, roles ...Role) Actor {
	set := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		if r != "" {
			set[r] = struct{}{}
		}
	}
	return Actor{ID: id, roles: set}
}

// Has reports whether the actor holds the given role.
func (a Actor) Has(role Role) bool {
	_, ok := a.roles[role]
	return ok
}

// IsZero reports whether no actor was resolved for the request.
func (a Actor) IsZero() bool {
	return a.ID == 0
}

// CanManageOrders reports whether the actor may change order statuses and
// adjust stock. Resolved once here, never re-derived mid-operation.
func (a Actor) CanManageOrders() bool {
	return a.Has(RoleAdmin) || a.Has(RoleModerator) || a.Has(RoleStaff)
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context.
func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorContextKey{}).(Actor)
	return actor
}
