// Package authz contains the pure authorization decision functions for
// team and project mutation. Every write to a Team, TeamMember or
// Project row funnels through exactly one function here; none of them
// performs I/O, so they are unit-testable in isolation from storage.
//
// Membership arguments are the actor's membership in the relevant team,
// loaded fresh at the start of the mutating call. A nil membership
// means the actor is not a member.
package authz

import (
	"github.com/google/uuid"

	"github.com/makerfolio/makerfolio-api/pkg/models"
)

// Decision is an allow/deny outcome with a human-readable reason for
// denials. The reason never contains internal identifiers.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// CanCreateProject decides whether the actor may create a project on
// behalf of a team. Any membership role suffices to create; personal
// projects never reach this check.
func CanCreateProject(membership *models.TeamMember) Decision {
	if membership == nil {
		return deny("must be a team member to create a team project")
	}
	return allow()
}

// CanUpdateProject decides whether the actor may update the project.
// Team-owned projects are editable by the leader and team admins;
// personal projects only by their creator.
func CanUpdateProject(project *models.Project, membership *models.TeamMember, actorID uuid.UUID) Decision {
	if project.IsTeamProject {
		if membership == nil {
			return deny("not a member of the owning team")
		}
		switch membership.Role {
		case models.TeamRoleLeader, models.TeamRoleAdmin:
			return allow()
		default:
			return deny("team members cannot edit team projects")
		}
	}
	if project.UserID != actorID {
		return deny("not the project owner")
	}
	return allow()
}

// CanDeleteProject decides whether the actor may delete the project.
// Delete is destructive, so for team projects the permission narrows
// to the single accountable party: the team leader. Personal projects
// can only be deleted by their creator.
func CanDeleteProject(project *models.Project, team *models.Team, actorID uuid.UUID) Decision {
	if project.IsTeamProject {
		if team == nil || team.LeaderID != actorID {
			return deny("only the team leader can delete team projects")
		}
		return allow()
	}
	if project.UserID != actorID {
		return deny("not the project owner")
	}
	return allow()
}

// CanUpdateTeam decides whether the actor may update team details.
func CanUpdateTeam(team *models.Team, actorID uuid.UUID) Decision {
	if team.LeaderID != actorID {
		return deny("only the team leader can update team details")
	}
	return allow()
}

// CanDeleteTeam decides whether the actor may delete the team.
func CanDeleteTeam(team *models.Team, actorID uuid.UUID) Decision {
	if team.LeaderID != actorID {
		return deny("only the team leader can delete the team")
	}
	return allow()
}

// CanManageMembers decides whether the actor may add members, remove
// members or change member roles. Member management is leader-only.
func CanManageMembers(team *models.Team, actorID uuid.UUID) Decision {
	if team.LeaderID != actorID {
		return deny("only the team leader can manage members")
	}
	return allow()
}
