// Package repositories contains pgx-backed data access for
// makerfolio-api. Repositories translate constraint violations into
// the apperrors taxonomy and never make authorization decisions.
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

// TeamRepository defines the interface for team data access.
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetLeader(ctx context.Context, teamID, leaderID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Team, error)
}

// teamRepository implements TeamRepository using PostgreSQL.
type teamRepository struct {
	db *database.DB
}

// NewTeamRepository creates a new team repository.
func NewTeamRepository(db *database.DB) TeamRepository {
	return &teamRepository{db: db}
}

// Create inserts a new team. A duplicate name surfaces as ErrConflict
// through the unique constraint on teams.name.
func (r *teamRepository) Create(ctx context.Context, team *models.Team) error {
	q := r.db.QuerierFrom(ctx)

	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	now := time.Now()
	team.CreatedAt = now
	team.UpdatedAt = now

	query := `
		INSERT INTO teams (id, name, description, leader_id, avatar, achievements, stats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := q.Exec(ctx, query,
		team.ID,
		team.Name,
		team.Description,
		team.LeaderID,
		team.Avatar,
		team.Achievements,
		team.Stats,
		team.CreatedAt,
		team.UpdatedAt,
	)
	if err != nil {
		if translated := translateError(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to create team: %w", err)
	}

	return nil
}

// GetByID retrieves a team by ID.
func (r *teamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	q := r.db.QuerierFrom(ctx)

	query := `
		SELECT id, name, description, leader_id, COALESCE(avatar, ''), achievements, stats, created_at, updated_at
		FROM teams
		WHERE id = $1`

	var team models.Team
	err := q.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.LeaderID,
		&team.Avatar,
		&team.Achievements,
		&team.Stats,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// Update updates a team's mutable details. LeaderID changes go through
// SetLeader so that leadership transfer stays a single explicit path.
func (r *teamRepository) Update(ctx context.Context, team *models.Team) error {
	q := r.db.QuerierFrom(ctx)

	team.UpdatedAt = time.Now()

	query := `
		UPDATE teams
		SET name = $2, description = $3, avatar = $4, achievements = $5, stats = $6, updated_at = $7
		WHERE id = $1`

	result, err := q.Exec(ctx, query,
		team.ID,
		team.Name,
		team.Description,
		team.Avatar,
		team.Achievements,
		team.Stats,
		team.UpdatedAt,
	)
	if err != nil {
		if translated := translateError(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to update team: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a team by ID. Memberships cascade at the store level;
// dependent projects are detached by the service inside the same
// transaction before this runs.
func (r *teamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q := r.db.QuerierFrom(ctx)

	result, err := q.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// SetLeader updates the team's leader column. Only the leadership
// transfer transaction calls this.
func (r *teamRepository) SetLeader(ctx context.Context, teamID, leaderID uuid.UUID) error {
	q := r.db.QuerierFrom(ctx)

	result, err := q.Exec(ctx,
		`UPDATE teams SET leader_id = $2, updated_at = $3 WHERE id = $1`,
		teamID, leaderID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set team leader: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// ListByUser retrieves all teams the user is a member of, ordered by
// join time.
func (r *teamRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Team, error) {
	q := r.db.QuerierFrom(ctx)

	query := `
		SELECT t.id, t.name, t.description, t.leader_id, COALESCE(t.avatar, ''), t.achievements, t.stats, t.created_at, t.updated_at
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = $1
		ORDER BY m.joined_at`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		err := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Description,
			&team.LeaderID,
			&team.Avatar,
			&team.Achievements,
			&team.Stats,
			&team.CreatedAt,
			&team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}

// Ensure teamRepository implements TeamRepository at compile time.
var _ TeamRepository = (*teamRepository)(nil)
