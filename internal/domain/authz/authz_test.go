package authz

import (
	"context"
	"testing"

	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/utils/platformerrors"
)

type ownedThing uint

func (o ownedThing) OwnerID() uint { return uint(o) }

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		actor    Actor
		resource Resource
		allowed  bool
	}{
		{name: "owner", actor: Actor{UserID: 7}, resource: ownedThing(7), allowed: true},
		{name: "other user", actor: Actor{UserID: 7}, resource: ownedThing(8)},
		{name: "sovereign is not an owner override", actor: Actor{UserID: 1, Sovereign: true}, resource: ownedThing(2)},
		{name: "anonymous", actor: Actor{}, resource: ownedThing(0)},
		{name: "nil resource", actor: Actor{UserID: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authorize(tt.actor, tt.resource); got.Allowed != tt.allowed {
				t.Fatalf("Authorize() allowed = %v, want %v (reason %q)", got.Allowed, tt.allowed, got.Reason)
			}
		})
	}
}

func TestRequireReturnsForbidden(t *testing.T) {
	err := Require(context.Background(), Actor{UserID: 1}, ownedThing(2))
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
	if err := Require(context.Background(), Actor{UserID: 2}, ownedThing(2)); err != nil {
		t.Fatalf("expected nil error for owner, got %v", err)
	}
}

func TestActorFor(t *testing.T) {
	actor := ActorFor(&user.User{ID: 9, Sovereign: true})
	if actor.UserID != 9 || !actor.Sovereign {
		t.Fatalf("unexpected actor %+v", actor)
	}
	if ActorFor(nil).UserID != 0 {
		t.Fatal("nil user should produce anonymous actor")
	}
}
