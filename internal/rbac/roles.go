package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleCitizen    = "citizen"
	RoleOfficer    = "officer"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }

// IsOfficerSide reports whether a role belongs to authority staff.
func IsOfficerSide(role string) bool {
	return role == RoleOfficer || role == RoleSupervisor || role == RoleAdmin
}
