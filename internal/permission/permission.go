package permission

import "fmt"

// Role is a team member's permission tier.
type Role string

// Permission is a capability gating a team action.
type Permission string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
	RoleGuest   Role = "guest"
)

const (
	ViewTeam          Permission = "view_team"
	EditTeam          Permission = "edit_team"
	DeleteTeam        Permission = "delete_team"
	AddMember         Permission = "add_member"
	RemoveMember      Permission = "remove_member"
	ChangeRole        Permission = "change_role"
	ViewSchedule      Permission = "view_schedule"
	EditSchedule      Permission = "edit_schedule"
	ViewMemberDetails Permission = "view_member_details"
	ViewAnalytics     Permission = "view_analytics"
)

var roles = [...]Role{RoleOwner, RoleAdmin, RoleManager, RoleMember, RoleGuest}

var permissions = [...]Permission{
	ViewTeam,
	EditTeam,
	DeleteTeam,
	AddMember,
	RemoveMember,
	ChangeRole,
	ViewSchedule,
	EditSchedule,
	ViewMemberDetails,
	ViewAnalytics,
}

// matrix[role][permission], indexed in the order of roles and permissions above.
// The nesting owner ⊇ admin ⊇ manager ⊇ member ⊇ guest is maintained by hand.
var matrix = [len(roles)][len(permissions)]bool{
	//          view   edit   del    add    rm     role   vsch   esch   vdet   anly
	/* owner */ {true, true, true, true, true, true, true, true, true, true},
	/* admin */ {true, true, false, true, true, true, true, true, true, true},
	/* mgr   */ {true, false, false, false, false, false, true, true, true, true},
	/* member*/ {true, false, false, false, false, false, true, false, true, false},
	/* guest */ {true, false, false, false, false, false, true, false, false, false},
}

// Roles returns every role, highest tier first.
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles[:])
	return out
}

// Permissions returns every permission in matrix order.
func Permissions() []Permission {
	out := make([]Permission, len(permissions))
	copy(out, permissions[:])
	return out
}

// HasPermission reports whether role is granted permission. Unknown roles and
// unknown permissions are never granted anything.
func HasPermission(role Role, p Permission) bool {
	ri := roleIndex(role)
	pi := permissionIndex(p)
	if ri < 0 || pi < 0 {
		return false
	}
	return matrix[ri][pi]
}

// Granted returns the permissions held by role, in matrix order.
func Granted(role Role) []Permission {
	ri := roleIndex(role)
	if ri < 0 {
		return []Permission{}
	}
	out := make([]Permission, 0, len(permissions))
	for pi, ok := range matrix[ri] {
		if ok {
			out = append(out, permissions[pi])
		}
	}
	return out
}

// Valid reports whether r is one of the five known roles.
func (r Role) Valid() bool {
	return roleIndex(r) >= 0
}

// Valid reports whether p is one of the ten known permissions.
func (p Permission) Valid() bool {
	return permissionIndex(p) >= 0
}

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// ParsePermission converts a string into a Permission.
func ParsePermission(s string) (Permission, error) {
	p := Permission(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown permission %q", s)
	}
	return p, nil
}

func roleIndex(r Role) int {
	for i, candidate := range roles {
		if candidate == r {
			return i
		}
	}
	return -1
}

func permissionIndex(p Permission) int {
	for i, candidate := range permissions {
		if candidate == p {
			return i
		}
	}
	return -1
}
