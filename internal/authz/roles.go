package authz

const (
	RoleUser  = 10
	RoleAdmin = 50
)

type Permission string

// PermAdministerUsers exempts its holders from phone verification and allows
// the admin override.
const PermAdministerUsers Permission = "administer users"

var rolePermissions = map[int][]Permission{
	RoleAdmin: {PermAdministerUsers},
}

func HasPermission(roleID int, perm Permission) bool {
	for _, p := range rolePermissions[roleID] {
		if p == perm {
			return true
		}
	}
	return false
}

// IsExempt reports whether the role skips the phone gate.
func IsExempt(roleID int) bool {
	return HasPermission(roleID, PermAdministerUsers)
}
