package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/makerfolio/makerfolio-api/pkg/models"
)

func teamProject(teamID uuid.UUID, creatorID uuid.UUID) *models.Project {
	return &models.Project{
		ID:            uuid.New(),
		UserID:        creatorID,
		TeamID:        &teamID,
		IsTeamProject: true,
	}
}

func personalProject(creatorID uuid.UUID) *models.Project {
	return &models.Project{
		ID:     uuid.New(),
		UserID: creatorID,
	}
}

func membershipWithRole(teamID, userID uuid.UUID, role string) *models.TeamMember {
	return &models.TeamMember{
		ID:     uuid.New(),
		TeamID: teamID,
		UserID: userID,
		Role:   role,
	}
}

func TestCanCreateProject(t *testing.T) {
	teamID := uuid.New()
	userID := uuid.New()

	tests := []struct {
		name       string
		membership *models.TeamMember
		allowed    bool
	}{
		{"non-member denied", nil, false},
		{"member allowed", membershipWithRole(teamID, userID, models.TeamRoleMember), true},
		{"admin allowed", membershipWithRole(teamID, userID, models.TeamRoleAdmin), true},
		{"leader allowed", membershipWithRole(teamID, userID, models.TeamRoleLeader), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanCreateProject(tt.membership)
			assert.Equal(t, tt.allowed, d.Allowed)
			if !tt.allowed {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestCanUpdateProject_TeamOwned(t *testing.T) {
	teamID := uuid.New()
	creator := uuid.New()
	actor := uuid.New()
	project := teamProject(teamID, creator)

	tests := []struct {
		name       string
		membership *models.TeamMember
		allowed    bool
	}{
		{"leader allowed", membershipWithRole(teamID, actor, models.TeamRoleLeader), true},
		{"admin allowed", membershipWithRole(teamID, actor, models.TeamRoleAdmin), true},
		{"member denied", membershipWithRole(teamID, actor, models.TeamRoleMember), false},
		{"non-member denied", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanUpdateProject(project, tt.membership, actor)
			assert.Equal(t, tt.allowed, d.Allowed)
		})
	}
}

func TestCanUpdateProject_TeamOwned_CreatorIdentityIrrelevant(t *testing.T) {
	// The creator of a team project has no standing once team-owned;
	// mutation rights follow team role, not creator identity.
	teamID := uuid.New()
	creator := uuid.New()
	project := teamProject(teamID, creator)

	d := CanUpdateProject(project, nil, creator)
	assert.False(t, d.Allowed)
}

func TestCanUpdateProject_Personal(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	project := personalProject(owner)

	assert.True(t, CanUpdateProject(project, nil, owner).Allowed)

	d := CanUpdateProject(project, nil, stranger)
	assert.False(t, d.Allowed)
	assert.Equal(t, "not the project owner", d.Reason)
}

func TestCanDeleteProject_TeamOwned(t *testing.T) {
	teamID := uuid.New()
	leader := uuid.New()
	admin := uuid.New()
	team := &models.Team{ID: teamID, LeaderID: leader}
	project := teamProject(teamID, admin)

	// Only the leader may delete, admins and members may not.
	assert.True(t, CanDeleteProject(project, team, leader).Allowed)
	assert.False(t, CanDeleteProject(project, team, admin).Allowed)
	assert.False(t, CanDeleteProject(project, team, uuid.New()).Allowed)
	assert.False(t, CanDeleteProject(project, nil, leader).Allowed)
}

func TestCanDeleteProject_Personal(t *testing.T) {
	owner := uuid.New()
	project := personalProject(owner)

	assert.True(t, CanDeleteProject(project, nil, owner).Allowed)
	assert.False(t, CanDeleteProject(project, nil, uuid.New()).Allowed)
}

func TestTeamDecisions_LeaderOnly(t *testing.T) {
	leader := uuid.New()
	other := uuid.New()
	team := &models.Team{ID: uuid.New(), LeaderID: leader}

	for name, fn := range map[string]func(*models.Team, uuid.UUID) Decision{
		"CanUpdateTeam":    CanUpdateTeam,
		"CanDeleteTeam":    CanDeleteTeam,
		"CanManageMembers": CanManageMembers,
	} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, fn(team, leader).Allowed)
			d := fn(team, other)
			assert.False(t, d.Allowed)
			assert.NotEmpty(t, d.Reason)
		})
	}
}
