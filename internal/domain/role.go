package domain

// Role is the closed set of account roles. A user's role is assigned at
// registration and never changes afterwards.
type Role string

const (
	RoleDom      Role = "DOM"
	RoleSub      Role = "SUB"
	RoleObserver Role = "OBSERVER"
	RoleAdmin    Role = "ADMIN"
)

// AllRoles contains all valid roles
var AllRoles = []Role{RoleDom, RoleSub, RoleObserver, RoleAdmin}

// IsValid checks if a role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleDom, RoleSub, RoleObserver, RoleAdmin:
		return true
	}
	return false
}

// CanHoldConnection reports whether the role participates in connections.
// Only DOM and SUB accounts can be party to a connection.
func (r Role) CanHoldConnection() bool {
	return r == RoleDom || r == RoleSub
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}
