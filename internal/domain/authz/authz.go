// Package authz centralizes ownership checks for user-owned resources.
package authz

import (
	"context"

	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/utils/platformerrors"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID    uint
	Sovereign bool
}

// Resource is anything owned by a single user.
type Resource interface {
	OwnerID() uint
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// ActorFor builds an Actor from a resolved user.
func ActorFor(u *user.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{UserID: u.ID, Sovereign: u.Sovereign}
}

// Authorize compares the resource owner with the actor. Sovereign access
// lifts plan limits only and never grants access to another user's data.
func Authorize(actor Actor, resource Resource) Decision {
	if actor.UserID == 0 {
		return Decision{Reason: "anonymous actor"}
	}
	if resource == nil {
		return Decision{Reason: "missing resource"}
	}
	if resource.OwnerID() != actor.UserID {
		return Decision{Reason: "resource belongs to another user"}
	}
	return Decision{Allowed: true}
}

// Require converts a denied decision into a FORBIDDEN platform error.
func Require(ctx context.Context, actor Actor, resource Resource) error {
	decision := Authorize(actor, resource)
	if decision.Allowed {
		return nil
	}
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
		"access denied", nil, "5f8e2a61-3c4b-4d7e-9a10-2b6c8d4e1f37",
		map[string]any{"reason": decision.Reason, "actor_id": actor.UserID})
}
