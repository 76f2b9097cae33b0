package workflow

import "github.com/kendall-kelly/prepress-orders-api/models"

// Actor is the already-authenticated caller of an operation
type Actor struct {
	ID   uint
	Role models.Role
}

// Scope restricts listings to what an actor may see. Nil fields mean unrestricted.
type Scope struct {
	ClientID   *uint
	AssigneeID *uint
}

// scopeFor derives the listing scope from the actor's role
func scopeFor(actor Actor) Scope {
	id := actor.ID
	switch actor.Role {
	case models.RoleClient:
		return Scope{ClientID: &id}
	case models.RoleEmployee:
		return Scope{AssigneeID: &id}
	}
	return Scope{}
}
