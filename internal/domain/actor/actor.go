// Package actor models the already-verified identity presented by the
// request layer. Credential verification happens outside this core.
package actor

type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

// Actor is an authenticated caller: an opaque identity plus a role flag.
type Actor struct {
	ID   string
	Role Role
}

// Elevated reports whether the actor may operate on orders it does not own.
func (a Actor) Elevated() bool { return a.Role == RoleAdmin }

// CanAccess reports whether the actor may read or mutate an order owned
// by ownerID.
func (a Actor) CanAccess(ownerID string) bool {
	return a.Elevated() || a.ID == ownerID
}
