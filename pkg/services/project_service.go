package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/makerfolio/makerfolio-api/pkg/apperrors"
	"github.com/makerfolio/makerfolio-api/pkg/authz"
	"github.com/makerfolio/makerfolio-api/pkg/models"
	"github.com/makerfolio/makerfolio-api/pkg/repositories"
)

// ProjectInput carries the fields a caller supplies when creating a
// project.
type ProjectInput struct {
	Title         string
	Description   string
	Category      string
	Technologies  models.StringList
	Tags          models.StringList
	Thumbnail     string
	RepoURL       string
	DemoURL       string
	Status        string
	IsTeamProject bool
	TeamID        *uuid.UUID
}

// ProjectUpdate carries the mutable project fields for Update. Nil
// pointers leave the current value untouched.
type ProjectUpdate struct {
	Title        *string
	Description  *string
	Category     *string
	Technologies *models.StringList
	Tags         *models.StringList
	Thumbnail    *string
	RepoURL      *string
	DemoURL      *string
	Status       *string
}

// ProjectList is the pagination envelope for List.
type ProjectList struct {
	Projects   []*models.Project `json:"projects"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
}

// ProjectService defines the interface for project operations.
// Authorization is decided fresh on every mutating call: team roles
// change over time, and a decision cached from creation time would be
// a privilege escalation or downgrade bug.
type ProjectService interface {
	Create(ctx context.Context, input ProjectInput, actorID uuid.UUID) (*models.Project, error)
	GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	List(ctx context.Context, page, limit int) (*ProjectList, error)
	Update(ctx context.Context, projectID uuid.UUID, patch ProjectUpdate, actorID uuid.UUID) (*models.Project, error)
	Delete(ctx context.Context, projectID, actorID uuid.UUID) error
}

// projectService implements ProjectService.
type projectService struct {
	projectRepo repositories.ProjectRepository
	teamRepo    repositories.TeamRepository
	memberRepo  repositories.TeamMemberRepository
	notifier    Notifier
	logger      *zap.Logger
}

// NewProjectService creates a new project service with dependencies.
func NewProjectService(
	projectRepo repositories.ProjectRepository,
	teamRepo repositories.TeamRepository,
	memberRepo repositories.TeamMemberRepository,
	notifier Notifier,
	logger *zap.Logger,
) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		teamRepo:    teamRepo,
		memberRepo:  memberRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create records a new project. Team projects require the actor to be
// a member of the referenced team at creation time; any role
// suffices. The creator is recorded as UserID even for team projects.
func (s *projectService) Create(ctx context.Context, input ProjectInput, actorID uuid.UUID) (*models.Project, error) {
	if input.Title == "" {
		return nil, apperrors.Invalid("title is required")
	}

	project := &models.Project{
		Title:         input.Title,
		Description:   input.Description,
		Category:      input.Category,
		Technologies:  input.Technologies,
		Tags:          input.Tags,
		Thumbnail:     input.Thumbnail,
		RepoURL:       input.RepoURL,
		DemoURL:       input.DemoURL,
		Status:        input.Status,
		UserID:        actorID,
		IsTeamProject: input.IsTeamProject,
	}

	if input.IsTeamProject {
		if input.TeamID == nil {
			return nil, apperrors.Invalid("team_id is required for team projects")
		}
		if _, err := s.teamRepo.GetByID(ctx, *input.TeamID); err != nil {
			return nil, err
		}

		membership, err := s.memberRepo.Find(ctx, *input.TeamID, actorID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		if d := authz.CanCreateProject(membership); !d.Allowed {
			return nil, apperrors.Forbidden(d.Reason)
		}
		project.TeamID = input.TeamID
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		zap.String("project_id", project.ID.String()),
		zap.Bool("team_project", project.IsTeamProject))
	return project, nil
}

// GetByID retrieves a project.
func (s *projectService) GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	return s.projectRepo.GetByID(ctx, projectID)
}

// List returns published projects with pagination.
func (s *projectService) List(ctx context.Context, page, limit int) (*ProjectList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	projects, total, err := s.projectRepo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	return &ProjectList{
		Projects:   projects,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// Update applies a patch. Team-owned projects are editable by the
// team leader and admins; a plain member or non-member is denied.
// Personal projects are editable only by their creator.
func (s *projectService) Update(ctx context.Context, projectID uuid.UUID, patch ProjectUpdate, actorID uuid.UUID) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	membership, err := s.loadMembership(ctx, project, actorID)
	if err != nil {
		return nil, err
	}

	if d := authz.CanUpdateProject(project, membership, actorID); !d.Allowed {
		return nil, apperrors.Forbidden(d.Reason)
	}

	if patch.Title != nil {
		project.Title = *patch.Title
	}
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.Category != nil {
		project.Category = *patch.Category
	}
	if patch.Technologies != nil {
		project.Technologies = *patch.Technologies
	}
	if patch.Tags != nil {
		project.Tags = *patch.Tags
	}
	if patch.Thumbnail != nil {
		project.Thumbnail = *patch.Thumbnail
	}
	if patch.RepoURL != nil {
		project.RepoURL = *patch.RepoURL
	}
	if patch.DemoURL != nil {
		project.DemoURL = *patch.DemoURL
	}
	if patch.Status != nil {
		project.Status = *patch.Status
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.notifier.NotifyProject(project.ID, "project.updated", project)
	return project, nil
}

// Delete removes a project. Team-owned projects can be deleted only
// by the team leader; admins may edit but not delete. Personal
// projects only by their creator.
func (s *projectService) Delete(ctx context.Context, projectID, actorID uuid.UUID) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}

	var team *models.Team
	if project.IsTeamProject && project.TeamID != nil {
		team, err = s.teamRepo.GetByID(ctx, *project.TeamID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
	}

	if d := authz.CanDeleteProject(project, team, actorID); !d.Allowed {
		return apperrors.Forbidden(d.Reason)
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return err
	}

	s.logger.Info("project deleted", zap.String("project_id", projectID.String()))
	s.notifier.NotifyProject(projectID, "project.deleted", map[string]string{"project_id": projectID.String()})
	return nil
}

// loadMembership fetches the actor's membership in the project's
// owning team. Returns nil for personal projects and non-members.
func (s *projectService) loadMembership(ctx context.Context, project *models.Project, actorID uuid.UUID) (*models.TeamMember, error) {
	if !project.IsTeamProject || project.TeamID == nil {
		return nil, nil
	}

	membership, err := s.memberRepo.Find(ctx, *project.TeamID, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return membership, nil
}

// Ensure projectService implements ProjectService at compile time.
var _ ProjectService = (*projectService)(nil)
