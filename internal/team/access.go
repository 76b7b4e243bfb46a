package team

import (
	"github.com/google/uuid"

	"github.com/workflex/workflex/internal/permission"
)

// GetUserRole returns the role userID holds in t. The boolean is false when
// the user is not a member.
func GetUserRole(userID uuid.UUID, t *Team) (permission.Role, bool) {
	if t == nil {
		return "", false
	}
	m, ok := t.MemberByUser(userID)
	if !ok {
		return "", false
	}
	return m.Role, true
}

// IsTeamMember reports whether userID belongs to t.
func IsTeamMember(userID uuid.UUID, t *Team) bool {
	_, ok := GetUserRole(userID, t)
	return ok
}

// CanUserPerformAction reports whether userID's role in t grants p.
// Non-members are denied every permission.
func CanUserPerformAction(userID uuid.UUID, t *Team, p permission.Permission) bool {
	role, ok := GetUserRole(userID, t)
	if !ok {
		return false
	}
	return permission.HasPermission(role, p)
}

// UserTeams returns the teams userID belongs to, in input order.
func UserTeams(userID uuid.UUID, teams []Team) []Team {
	out := make([]Team, 0, len(teams))
	for i := range teams {
		if IsTeamMember(userID, &teams[i]) {
			out = append(out, teams[i])
		}
	}
	return out
}

// TeamsWithPermission returns the teams in which userID holds p, in input order.
func TeamsWithPermission(userID uuid.UUID, teams []Team, p permission.Permission) []Team {
	out := make([]Team, 0, len(teams))
	for i := range teams {
		if CanUserPerformAction(userID, &teams[i], p) {
			out = append(out, teams[i])
		}
	}
	return out
}
