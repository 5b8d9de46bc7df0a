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

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, limit int) ([]*models.Project, int, error)
	// DetachTeamProjects converts a team's projects back to personal
	// projects of their creators. Part of the team deletion transaction.
	DetachTeamProjects(ctx context.Context, teamID uuid.UUID) error
}

// projectRepository implements ProjectRepository using PostgreSQL.
type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, title, description, category, technologies, tags,
	COALESCE(thumbnail, ''), COALESCE(repo_url, ''), COALESCE(demo_url, ''),
	status, views, likes, comments_count, user_id, team_id, is_team_project, created_at, updated_at`

// Create inserts a new project.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	q := r.db.QuerierFrom(ctx)

	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Status == "" {
		project.Status = models.ProjectStatusPublished
	}

	query := `
		INSERT INTO projects (id, title, description, category, technologies, tags,
			thumbnail, repo_url, demo_url, status, user_id, team_id, is_team_project,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := q.Exec(ctx, query,
		project.ID,
		project.Title,
		project.Description,
		project.Category,
		project.Technologies,
		project.Tags,
		project.Thumbnail,
		project.RepoURL,
		project.DemoURL,
		project.Status,
		project.UserID,
		project.TeamID,
		project.IsTeamProject,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		if translated := translateError(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID.
func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	q := r.db.QuerierFrom(ctx)

	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	var project models.Project
	err := q.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&project.Category,
		&project.Technologies,
		&project.Tags,
		&project.Thumbnail,
		&project.RepoURL,
		&project.DemoURL,
		&project.Status,
		&project.Views,
		&project.Likes,
		&project.CommentsCount,
		&project.UserID,
		&project.TeamID,
		&project.IsTeamProject,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

// Update persists a project's mutable fields.
func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	q := r.db.QuerierFrom(ctx)

	project.UpdatedAt = time.Now()

	query := `
		UPDATE projects
		SET title = $2, description = $3, category = $4, technologies = $5, tags = $6,
			thumbnail = $7, repo_url = $8, demo_url = $9, status = $10, updated_at = $11
		WHERE id = $1`

	result, err := q.Exec(ctx, query,
		project.ID,
		project.Title,
		project.Description,
		project.Category,
		project.Technologies,
		project.Tags,
		project.Thumbnail,
		project.RepoURL,
		project.DemoURL,
		project.Status,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a project by ID. Comments cascade at the store level.
func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q := r.db.QuerierFrom(ctx)

	result, err := q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// List retrieves published projects newest-first with offset
// pagination, returning the total count for the pagination envelope.
func (r *projectRepository) List(ctx context.Context, page, limit int) ([]*models.Project, int, error) {
	q := r.db.QuerierFrom(ctx)

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	query := `SELECT ` + projectColumns + `
		FROM projects
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var project models.Project
		err := rows.Scan(
			&project.ID,
			&project.Title,
			&project.Description,
			&project.Category,
			&project.Technologies,
			&project.Tags,
			&project.Thumbnail,
			&project.RepoURL,
			&project.DemoURL,
			&project.Status,
			&project.Views,
			&project.Likes,
			&project.CommentsCount,
			&project.UserID,
			&project.TeamID,
			&project.IsTeamProject,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &project)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, total, nil
}

// DetachTeamProjects clears the team reference on all of a team's
// projects, leaving them as personal projects of their creators.
func (r *projectRepository) DetachTeamProjects(ctx context.Context, teamID uuid.UUID) error {
	q := r.db.QuerierFrom(ctx)

	_, err := q.Exec(ctx,
		`UPDATE projects SET team_id = NULL, is_team_project = false, updated_at = $2 WHERE team_id = $1`,
		teamID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to detach team projects: %w", err)
	}

	return nil
}

// Ensure projectRepository implements ProjectRepository at compile time.
var _ ProjectRepository = (*projectRepository)(nil)
