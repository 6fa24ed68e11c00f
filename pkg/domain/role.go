package domain

import dErrors "mandate/pkg/domain-errors"

// Role is the capability a staff account holds in the approval chain.
// Invariant: only the listed values exist; construct via ParseRole at trust
// boundaries.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var validRoles = map[Role]bool{
	RoleAdmin:      true,
	RoleSuperAdmin: true,
}

// ParseRole constructs a Role from external input.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

func (r Role) IsValid() bool { return validRoles[r] }

func (r Role) String() string { return string(r) }

// CanReview reports whether the role may perform first-stage review actions
// (admin approval, rejection). Super-admins inherit admin capabilities.
func (r Role) CanReview() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanFinalize reports whether the role may grant final approval.
func (r Role) CanFinalize() bool {
	return r == RoleSuperAdmin
}
