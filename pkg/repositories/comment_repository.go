package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/makerfolio/makerfolio-api/pkg/apperrors"
	"github.com/makerfolio/makerfolio-api/pkg/database"
	"github.com/makerfolio/makerfolio-api/pkg/models"
)

// CommentRepository defines the interface for comment data access.
// Comment rows cascade on project and user deletion.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// commentRepository implements CommentRepository using PostgreSQL.
type commentRepository struct {
	db *database.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *database.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a comment and bumps the project's comment counter in
// one statement pair; both run on the same querier so a surrounding
// transaction keeps them consistent.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	q := r.db.QuerierFrom(ctx)

	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	comment.CreatedAt = time.Now()

	query := `
		INSERT INTO comments (id, project_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := q.Exec(ctx, query,
		comment.ID,
		comment.ProjectID,
		comment.UserID,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		if translated := translateError(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}

	_, err = q.Exec(ctx,
		`UPDATE projects SET comments_count = comments_count + 1 WHERE id = $1`,
		comment.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to bump comment count: %w", err)
	}

	return nil
}

// GetByID retrieves a comment by ID.
func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	q := r.db.QuerierFrom(ctx)

	query := `SELECT id, project_id, user_id, content, created_at FROM comments WHERE id = $1`

	var comment models.Comment
	err := q.QueryRow(ctx, query, id).Scan(
		&comment.ID,
		&comment.ProjectID,
		&comment.UserID,
		&comment.Content,
		&comment.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return &comment, nil
}

// ListByProject retrieves all comments on a project, oldest first.
func (r *commentRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Comment, error) {
	q := r.db.QuerierFrom(ctx)

	query := `
		SELECT id, project_id, user_id, content, created_at
		FROM comments
		WHERE project_id = $1
		ORDER BY created_at`

	rows, err := q.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var comment models.Comment
		err := rows.Scan(
			&comment.ID,
			&comment.ProjectID,
			&comment.UserID,
			&comment.Content,
			&comment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// Delete removes a comment and decrements the project counter.
func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q := r.db.QuerierFrom(ctx)

	var projectID uuid.UUID
	err := q.QueryRow(ctx,
		`DELETE FROM comments WHERE id = $1 RETURNING project_id`, id).Scan(&projectID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	_, err = q.Exec(ctx,
		`UPDATE projects SET comments_count = GREATEST(comments_count - 1, 0) WHERE id = $1`,
		projectID)
	if err != nil {
		return fmt.Errorf("failed to decrement comment count: %w", err)
	}

	return nil
}

// Ensure commentRepository implements CommentRepository at compile time.
var _ CommentRepository = (*commentRepository)(nil)
