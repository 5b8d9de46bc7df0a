package models

// Site-wide user roles.
const (
	SiteRoleUser  = "user"
	SiteRoleAdmin = "admin"
)

// Team roles. Leader is assigned only at team creation or through
// leadership transfer; AddMember and UpdateMemberRole accept only
// admin and member.
const (
	TeamRoleLeader = "leader"
	TeamRoleAdmin  = "admin"
	TeamRoleMember = "member"
)

// ValidSiteRoles contains all valid site-wide role values.
var ValidSiteRoles = []string{SiteRoleUser, SiteRoleAdmin}

// AssignableTeamRoles contains the roles that can be granted through
// member management. The leader role is excluded on purpose.
var AssignableTeamRoles = []string{TeamRoleAdmin, TeamRoleMember}

// IsValidSiteRole checks if the given site role is valid.
func IsValidSiteRole(role string) bool {
	for _, r := range ValidSiteRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAssignableTeamRole checks if the given role can be granted via
// AddMember or UpdateMemberRole.
func IsAssignableTeamRole(role string) bool {
	for _, r := range AssignableTeamRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsValidTeamRole checks if the given role is any known team role,
// including leader.
func IsValidTeamRole(role string) bool {
	return role == TeamRoleLeader || IsAssignableTeamRole(role)
}
