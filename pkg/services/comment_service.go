package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/makerfolio/makerfolio-api/pkg/apperrors"
	"github.com/makerfolio/makerfolio-api/pkg/models"
	"github.com/makerfolio/makerfolio-api/pkg/repositories"
)

// CommentService handles comments on projects.
type CommentService interface {
	Create(ctx context.Context, projectID uuid.UUID, content string, actorID uuid.UUID) (*models.Comment, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Comment, error)
	Delete(ctx context.Context, commentID, actorID uuid.UUID, actorRole string) error
}

// commentService implements CommentService.
type commentService struct {
	commentRepo repositories.CommentRepository
	projectRepo repositories.ProjectRepository
	notifier    Notifier
	logger      *zap.Logger
}

// NewCommentService creates a new comment service with dependencies.
func NewCommentService(
	commentRepo repositories.CommentRepository,
	projectRepo repositories.ProjectRepository,
	notifier Notifier,
	logger *zap.Logger,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		projectRepo: projectRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create attaches a comment to a project. The project owner gets a
// realtime notification; the project room gets the comment itself.
func (s *commentService) Create(ctx context.Context, projectID uuid.UUID, content string, actorID uuid.UUID) (*models.Comment, error) {
	if content == "" {
		return nil, apperrors.Invalid("comment content is required")
	}

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ProjectID: projectID,
		UserID:    actorID,
		Content:   content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.notifier.NotifyProject(projectID, "comment.created", comment)
	if project.UserID != actorID {
		s.notifier.NotifyUser(project.UserID, "comment.created", comment)
	}
	return comment, nil
}

// ListByProject retrieves a project's comments.
func (s *commentService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Comment, error) {
	return s.commentRepo.ListByProject(ctx, projectID)
}

// Delete removes a comment. Allowed for the comment's author and for
// site admins.
func (s *commentService) Delete(ctx context.Context, commentID, actorID uuid.UUID, actorRole string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.UserID != actorID && actorRole != models.SiteRoleAdmin {
		return apperrors.Forbidden("not the comment author")
	}

	return s.commentRepo.Delete(ctx, commentID)
}

// Ensure commentService implements CommentService at compile time.
var _ CommentService = (*commentService)(nil)
