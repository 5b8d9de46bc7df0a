package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/makerfolio/makerfolio-api/pkg/apperrors"
	"github.com/makerfolio/makerfolio-api/pkg/authz"
	"github.com/makerfolio/makerfolio-api/pkg/models"
	"github.com/makerfolio/makerfolio-api/pkg/repositories"
)

// TeamUpdate carries the mutable team fields for Update. Nil pointers
// leave the current value untouched.
type TeamUpdate struct {
	Name         *string
	Description  *string
	Avatar       *string
	Achievements *models.StringList
	Stats        *models.JSONBMap
}

// TeamService defines the interface for team operations. All role
// checks read the membership graph fresh at call time; nothing is
// cached from session or creation time.
type TeamService interface {
	Create(ctx context.Context, name, description string, leaderID uuid.UUID) (*models.Team, error)
	GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Team, error)
	Update(ctx context.Context, teamID uuid.UUID, patch TeamUpdate, actorID uuid.UUID) (*models.Team, error)
	Delete(ctx context.Context, teamID, actorID uuid.UUID) error
	GetMembers(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error)
	AddMember(ctx context.Context, teamID, userID uuid.UUID, role string, actorID uuid.UUID) (*models.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, memberID, actorID uuid.UUID) error
	UpdateMemberRole(ctx context.Context, teamID, memberID uuid.UUID, newRole string, actorID uuid.UUID) (*models.TeamMember, error)
	TransferLeadership(ctx context.Context, teamID, newLeaderID, actorID uuid.UUID) error
}

// teamService implements TeamService.
type teamService struct {
	teamRepo    repositories.TeamRepository
	memberRepo  repositories.TeamMemberRepository
	projectRepo repositories.ProjectRepository
	txRunner    TxRunner
	notifier    Notifier
	logger      *zap.Logger
}

// NewTeamService creates a new team service with dependencies.
func NewTeamService(
	teamRepo repositories.TeamRepository,
	memberRepo repositories.TeamMemberRepository,
	projectRepo repositories.ProjectRepository,
	txRunner TxRunner,
	notifier Notifier,
	logger *zap.Logger,
) TeamService {
	return &teamService{
		teamRepo:    teamRepo,
		memberRepo:  memberRepo,
		projectRepo: projectRepo,
		txRunner:    txRunner,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create allocates the team and its leader membership as one unit.
// Either both rows become visible or neither does: a team row without
// its leader membership would violate the leader-singleton invariant.
func (s *teamService) Create(ctx context.Context, name, description string, leaderID uuid.UUID) (*models.Team, error) {
	if name == "" {
		return nil, apperrors.Invalid("team name is required")
	}

	team := &models.Team{
		Name:        name,
		Description: description,
		LeaderID:    leaderID,
	}

	err := s.txRunner.WithTx(ctx, func(ctx context.Context) error {
		if err := s.teamRepo.Create(ctx, team); err != nil {
			return err
		}
		return s.memberRepo.Add(ctx, &models.TeamMember{
			TeamID: team.ID,
			UserID: leaderID,
			Role:   models.TeamRoleLeader,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("team created",
		zap.String("team_id", team.ID.String()),
		zap.String("leader_id", leaderID.String()))
	return team, nil
}

// GetByID retrieves a team.
func (s *teamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	return s.teamRepo.GetByID(ctx, teamID)
}

// ListByUser retrieves all teams the user belongs to.
func (s *teamService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Team, error) {
	return s.teamRepo.ListByUser(ctx, userID)
}

// Update applies a patch to team details. Leader only.
func (s *teamService) Update(ctx context.Context, teamID uuid.UUID, patch TeamUpdate, actorID uuid.UUID) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if d := authz.CanUpdateTeam(team, actorID); !d.Allowed {
		return nil, apperrors.Forbidden(d.Reason)
	}

	if patch.Name != nil {
		team.Name = *patch.Name
	}
	if patch.Description != nil {
		team.Description = *patch.Description
	}
	if patch.Avatar != nil {
		team.Avatar = *patch.Avatar
	}
	if patch.Achievements != nil {
		team.Achievements = *patch.Achievements
	}
	if patch.Stats != nil {
		team.Stats = *patch.Stats
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// Delete removes a team. Leader only. The cascade runs as one unit:
// team projects are detached back to their creators, memberships are
// deleted, then the team row itself. A mid-sequence failure rolls
// back everything already applied.
func (s *teamService) Delete(ctx context.Context, teamID, actorID uuid.UUID) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	if d := authz.CanDeleteTeam(team, actorID); !d.Allowed {
		return apperrors.Forbidden(d.Reason)
	}

	members, err := s.memberRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return err
	}

	err = s.txRunner.WithTx(ctx, func(ctx context.Context) error {
		if err := s.projectRepo.DetachTeamProjects(ctx, teamID); err != nil {
			return err
		}
		return s.teamRepo.Delete(ctx, teamID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("team deleted",
		zap.String("team_id", teamID.String()),
		zap.Int("members", len(members)))
	for _, m := range members {
		s.notifier.NotifyUser(m.UserID, "team.deleted", map[string]string{"team_id": teamID.String()})
	}
	return nil
}

// GetMembers returns the roster for display. Not an authorization
// primitive; decisions always go through authz with a fresh Find.
func (s *teamService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.memberRepo.ListByTeam(ctx, teamID)
}

// AddMember adds a user to the team. Leader only; the leader role is
// not grantable here. The unique constraint on (team_id, user_id)
// decides races: of two concurrent adds for the same pair exactly one
// succeeds, the other gets ErrConflict.
func (s *teamService) AddMember(ctx context.Context, teamID, userID uuid.UUID, role string, actorID uuid.UUID) (*models.TeamMember, error) {
	if role == "" {
		role = models.TeamRoleMember
	}
	if !models.IsAssignableTeamRole(role) {
		return nil, apperrors.Invalid(fmt.Sprintf("role must be one of: admin, member; got %q", role))
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if d := authz.CanManageMembers(team, actorID); !d.Allowed {
		return nil, apperrors.Forbidden(d.Reason)
	}

	member := &models.TeamMember{
		TeamID: teamID,
		UserID: userID,
		Role:   role,
	}
	if err := s.memberRepo.Add(ctx, member); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: user is already a member of this team", apperrors.ErrConflict)
		}
		return nil, err
	}

	s.notifier.NotifyUser(userID, "team.member_added", member)
	return member, nil
}

// RemoveMember removes a member from the team. Leader only. The
// leader's own membership can never be removed while they remain
// leader, regardless of who asks.
func (s *teamService) RemoveMember(ctx context.Context, teamID, memberID, actorID uuid.UUID) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	if d := authz.CanManageMembers(team, actorID); !d.Allowed {
		return apperrors.Forbidden(d.Reason)
	}

	if memberID == team.LeaderID {
		return apperrors.Invalid("cannot remove the team leader")
	}

	if err := s.memberRepo.Remove(ctx, teamID, memberID); err != nil {
		return err
	}

	s.notifier.NotifyUser(memberID, "team.member_removed", map[string]string{"team_id": teamID.String()})
	return nil
}

// UpdateMemberRole changes a member's role between admin and member.
// Leader only. The leader row cannot be demoted here; leadership
// changes only through TransferLeadership.
func (s *teamService) UpdateMemberRole(ctx context.Context, teamID, memberID uuid.UUID, newRole string, actorID uuid.UUID) (*models.TeamMember, error) {
	if !models.IsAssignableTeamRole(newRole) {
		return nil, apperrors.Invalid(fmt.Sprintf("role must be one of: admin, member; got %q", newRole))
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if d := authz.CanManageMembers(team, actorID); !d.Allowed {
		return nil, apperrors.Forbidden(d.Reason)
	}

	if memberID == team.LeaderID {
		return nil, apperrors.Invalid("cannot change the leader's role; transfer leadership instead")
	}

	member, err := s.memberRepo.Find(ctx, teamID, memberID)
	if err != nil {
		return nil, err
	}

	if err := s.memberRepo.UpdateRole(ctx, teamID, memberID, newRole); err != nil {
		return nil, err
	}
	member.Role = newRole

	s.notifier.NotifyUser(memberID, "team.role_changed", member)
	return member, nil
}

// TransferLeadership atomically moves the leader role. The old
// leader's membership is demoted to admin, the new leader's promoted,
// and the team's leader column updated, all in one transaction so the
// leader-singleton invariant holds at every commit point.
func (s *teamService) TransferLeadership(ctx context.Context, teamID, newLeaderID, actorID uuid.UUID) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}

	if d := authz.CanManageMembers(team, actorID); !d.Allowed {
		return apperrors.Forbidden(d.Reason)
	}

	if newLeaderID == team.LeaderID {
		return apperrors.Invalid("user is already the team leader")
	}

	if _, err := s.memberRepo.Find(ctx, teamID, newLeaderID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Invalid("new leader must already be a team member")
		}
		return err
	}

	err = s.txRunner.WithTx(ctx, func(ctx context.Context) error {
		if err := s.memberRepo.UpdateRole(ctx, teamID, team.LeaderID, models.TeamRoleAdmin); err != nil {
			return err
		}
		if err := s.memberRepo.UpdateRole(ctx, teamID, newLeaderID, models.TeamRoleLeader); err != nil {
			return err
		}
		// Assert the leader singleton before commit; any other count
		// rolls the whole transfer back.
		count, err := s.memberRepo.CountLeaders(ctx, teamID)
		if err != nil {
			return err
		}
		if count != 1 {
			return fmt.Errorf("leader count is %d after transfer, want 1", count)
		}
		return s.teamRepo.SetLeader(ctx, teamID, newLeaderID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("leadership transferred",
		zap.String("team_id", teamID.String()),
		zap.String("old_leader", team.LeaderID.String()),
		zap.String("new_leader", newLeaderID.String()))
	s.notifier.NotifyUser(newLeaderID, "team.leadership_received", map[string]string{"team_id": teamID.String()})
	s.notifier.NotifyUser(team.LeaderID, "team.leadership_transferred", map[string]string{"team_id": teamID.String()})
	return nil
}

// Ensure teamService implements TeamService at compile time.
var _ TeamService = (*teamService)(nil)
