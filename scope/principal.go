package scope

import "errors"

// Role is the platform role carried by an access token. The four values
// below are the only roles the scoping engine understands.
type Role string

const (
	// RoleAdmin manages a single organization and everything in it.
	RoleAdmin Role = "admin"
	// RoleResearcher owns studies they created or are assigned to.
	RoleResearcher Role = "researcher"
	// RoleStaff only sees records they are explicitly assigned to.
	RoleStaff Role = "staff"
	// RoleSuperadmin operates platform-wide across all organizations.
	RoleSuperadmin Role = "superadmin"
)

// ErrUnknownRole is returned when a token carries a role outside the
// fixed role set.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole validates a raw role string from a token claim.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleResearcher, RoleStaff, RoleSuperadmin:
		return Role(raw), nil
	default:
		return "", ErrUnknownRole
	}
}

// Valid reports whether r is one of the four platform roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// In reports whether r is a member of the given role set.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// Principal is the identity resolved from a verified access token.
// It is immutable for the life of a request.
type Principal struct {
	SubjectID string
	Role      Role
	// OrgID is empty for superadmins, who are not bound to a tenant.
	OrgID string
}
