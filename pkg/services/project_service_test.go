package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/makerfolio/makerfolio-api/pkg/apperrors"
	"github.com/makerfolio/makerfolio-api/pkg/models"
)

func newTestProjectService(projectRepo *mockProjectRepository, teamRepo *mockTeamRepository, memberRepo *mockMemberRepository) ProjectService {
	if teamRepo == nil {
		teamRepo = &mockTeamRepository{}
	}
	if memberRepo == nil {
		memberRepo = &mockMemberRepository{}
	}
	return NewProjectService(projectRepo, teamRepo, memberRepo, NopNotifier{}, zap.NewNop())
}

func teamProject(teamID, creatorID uuid.UUID) *models.Project {
	return &models.Project{
		ID:            uuid.New(),
		Title:         "drone telemetry",
		UserID:        creatorID,
		TeamID:        &teamID,
		IsTeamProject: true,
	}
}

func TestProjectService_Create_Personal(t *testing.T) {
	projectRepo := &mockProjectRepository{}
	service := newTestProjectService(projectRepo, nil, nil)

	actorID := uuid.New()
	project, err := service.Create(context.Background(), ProjectInput{Title: "portfolio site"}, actorID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if project.UserID != actorID {
		t.Errorf("expected creator %v, got %v", actorID, project.UserID)
	}
	if project.IsTeamProject {
		t.Error("expected personal project")
	}
}

func TestProjectService_Create_EmptyTitle(t *testing.T) {
	projectRepo := &mockProjectRepository{}
	service := newTestProjectService(projectRepo, nil, nil)

	_, err := service.Create(context.Background(), ProjectInput{}, uuid.New())
	if !errors.Is(err, apperrors.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestProjectService_Create_TeamProjectRequiresTeamID(t *testing.T) {
	service := newTestProjectService(&mockProjectRepository{}, nil, nil)

	_, err := service.Create(context.Background(), ProjectInput{Title: "t", IsTeamProject: true}, uuid.New())
	if !errors.Is(err, apperrors.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestProjectService_Create_TeamProjectAnyMemberRole(t *testing.T) {
	teamID := uuid.New()
	actorID := uuid.New()
	teamRepo := &mockTeamRepository{team: &models.Team{ID: teamID, LeaderID: uuid.New()}}
	memberRepo := &mockMemberRepository{member: &models.TeamMember{TeamID: teamID, UserID: actorID, Role: models.TeamRoleMember}}
	projectRepo := &mockProjectRepository{}
	service := newTestProjectService(projectRepo, teamRepo, memberRepo)

	project, err := service.Create(context.Background(), ProjectInput{
		Title:         "drone telemetry",
		IsTeamProject: true,
		TeamID:        &teamID,
	}, actorID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if project.TeamID == nil || *project.TeamID != teamID {
		t.Error("expected project attributed to the team")
	}
	if project.UserID != actorID {
		t.Errorf("expected creator recorded as %v, got %v", actorID, project.UserID)
	}
}

func TestProjectService_Create_TeamProjectNonMemberForbidden(t *testing.T) {
	teamID := uuid.New()
	teamRepo := &mockTeamRepository{team: &models.Team{ID: teamID, LeaderID: uuid.New()}}
	memberRepo := &mockMemberRepository{findErr: apperrors.ErrNotFound}
	projectRepo := &mockProjectRepository{}
	service := newTestProjectService(projectRepo, teamRepo, memberRepo)

	_, err := service.Create(context.Background(), ProjectInput{
		Title:         "drone telemetry",
		IsTeamProject: true,
		TeamID:        &teamID,
	}, uuid.New())
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if projectRepo.project != nil {
		t.Error("should not have created the project")
	}
}

func TestProjectService_Create_TeamMustExist(t *testing.T) {
	teamID := uuid.New()
	teamRepo := &mockTeamRepository{getErr: apperrors.ErrNotFound}
	service := newTestProjectService(&mockProjectRepository{}, teamRepo, nil)

	_, err := service.Create(context.Background(), ProjectInput{
		Title:         "t",
		IsTeamProject: true,
		TeamID:        &teamID,
	}, uuid.New())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectService_Update_TeamRoles(t *testing.T) {
	teamID := uuid.New()
	creatorID := uuid.New()

	tests := []struct {
		name    string
		role    string // empty means not a member
		allowed bool
	}{
		{"leader can edit", models.TeamRoleLeader, true},
		{"admin can edit", models.TeamRoleAdmin, true},
		{"member cannot edit", models.TeamRoleMember, false},
		{"non-member cannot edit", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actorID := uuid.New()
			projectRepo := &mockProjectRepository{project: teamProject(teamID, creatorID)}
			memberRepo := &mockMemberRepository{}
			if tt.role != "" {
				memberRepo.member = &models.TeamMember{TeamID: teamID, UserID: actorID, Role: tt.role}
			} else {
				memberRepo.findErr = apperrors.ErrNotFound
			}
			service := newTestProjectService(projectRepo, nil, memberRepo)

			title := "renamed"
			_, err := service.Update(context.Background(), projectRepo.project.ID, ProjectUpdate{Title: &title}, actorID)
			if tt.allowed && err != nil {
				t.Fatalf("expected update to succeed, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, apperrors.ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestProjectService_Update_CreatorIdentityIrrelevantForTeamProjects(t *testing.T) {
	teamID := uuid.New()
	creatorID := uuid.New()

	// The creator left the team; their authorship no longer grants access
	projectRepo := &mockProjectRepository{project: teamProject(teamID, creatorID)}
	memberRepo := &mockMemberRepository{findErr: apperrors.ErrNotFound}
	service := newTestProjectService(projectRepo, nil, memberRepo)

	title := "renamed"
	_, err := service.Update(context.Background(), projectRepo.project.ID, ProjectUpdate{Title: &title}, creatorID)
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestProjectService_Update_PersonalCreatorOnly(t *testing.T) {
	creatorID := uuid.New()
	projectRepo := &mockProjectRepository{project: &models.Project{ID: uuid.New(), Title: "p", UserID: creatorID}}
	service := newTestProjectService(projectRepo, nil, nil)

	title := "renamed"
	if _, err := service.Update(context.Background(), projectRepo.project.ID, ProjectUpdate{Title: &title}, creatorID); err != nil {
		t.Fatalf("expected creator update to succeed, got %v", err)
	}

	_, err := service.Update(context.Background(), projectRepo.project.ID, ProjectUpdate{Title: &title}, uuid.New())
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
}

func TestProjectService_Delete_TeamLeaderOnly(t *testing.T) {
	teamID := uuid.New()
	leaderID := uuid.New()
	creatorID := uuid.New()

	tests := []struct {
		name    string
		actorID uuid.UUID
		allowed bool
	}{
		{"leader can delete", leaderID, true},
		{"creator cannot delete", creatorID, false},
		{"stranger cannot delete", uuid.New(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projectRepo := &mockProjectRepository{project: teamProject(teamID, creatorID)}
			teamRepo := &mockTeamRepository{team: &models.Team{ID: teamID, LeaderID: leaderID}}
			service := newTestProjectService(projectRepo, teamRepo, nil)

			err := service.Delete(context.Background(), projectRepo.project.ID, tt.actorID)
			if tt.allowed && err != nil {
				t.Fatalf("expected delete to succeed, got %v", err)
			}
			if !tt.allowed && !errors.Is(err, apperrors.ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
}

func TestProjectService_Delete_PersonalCreatorOnly(t *testing.T) {
	creatorID := uuid.New()
	projectRepo := &mockProjectRepository{project: &models.Project{ID: uuid.New(), Title: "p", UserID: creatorID}}
	service := newTestProjectService(projectRepo, nil, nil)

	err := service.Delete(context.Background(), projectRepo.project.ID, uuid.New())
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
	if err := service.Delete(context.Background(), projectRepo.project.ID, creatorID); err != nil {
		t.Fatalf("expected creator delete to succeed, got %v", err)
	}
}

func TestProjectService_Delete_NotFound(t *testing.T) {
	projectRepo := &mockProjectRepository{getErr: apperrors.ErrNotFound}
	service := newTestProjectService(projectRepo, nil, nil)

	err := service.Delete(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectService_List_Defaults(t *testing.T) {
	projectRepo := &mockProjectRepository{
		projects: []*models.Project{{ID: uuid.New(), Title: "a"}},
		total:    25,
	}
	service := newTestProjectService(projectRepo, nil, nil)

	result, err := service.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if result.Page != 1 {
		t.Errorf("expected page 1, got %d", result.Page)
	}
	if result.TotalPages != 3 {
		t.Errorf("expected 3 total pages for 25 rows at limit 10, got %d", result.TotalPages)
	}
	if result.Total != 25 {
		t.Errorf("expected total 25, got %d", result.Total)
	}
}
