// internal/domain/roles.go
package domain

import "fmt"

// Role is the access level a member holds on a budget. "owner" is not a
// role: ownership derives from Budget.OwnerID and always satisfies
// admin-level checks.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// DefaultRole is assigned when a member or invitation is created
// without an explicit role.
const DefaultRole = RoleEditor

// Permission sets. Authorization is a set-membership test, not an
// ordered hierarchy; every check names the exact roles it accepts.
var (
	// ManageRoles may add/remove members, issue and cancel
	// invitations, and rename the budget.
	ManageRoles = []Role{RoleAdmin}

	// MemberRoles is any stored role; used for read access.
	MemberRoles = []Role{RoleViewer, RoleEditor, RoleAdmin}
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleViewer, RoleEditor, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
}

// In reports whether r is one of the given roles.
func (r Role) In(roles []Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
