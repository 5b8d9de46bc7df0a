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

// TeamMemberRepository defines the interface for membership data
// access. The unique constraint on (team_id, user_id) guarantees a
// user holds at most one role per team, even under concurrent adds.
type TeamMemberRepository interface {
	Add(ctx context.Context, member *models.TeamMember) error
	Remove(ctx context.Context, teamID, userID uuid.UUID) error
	UpdateRole(ctx context.Context, teamID, userID uuid.UUID, newRole string) error
	Find(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error)
	CountLeaders(ctx context.Context, teamID uuid.UUID) (int, error)
}

// teamMemberRepository implements TeamMemberRepository using PostgreSQL.
type teamMemberRepository struct {
	db *database.DB
}

// NewTeamMemberRepository creates a new team member repository.
func NewTeamMemberRepository(db *database.DB) TeamMemberRepository {
	return &teamMemberRepository{db: db}
}

// Add inserts a membership row. A duplicate (team_id, user_id) pair
// returns ErrConflict; a missing team or user returns ErrNotFound via
// the foreign key constraints. No upsert: two racing adds for the
// same pair must never silently overwrite each other.
func (r *teamMemberRepository) Add(ctx context.Context, member *models.TeamMember) error {
	q := r.db.QuerierFrom(ctx)

	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}

	query := `
		INSERT INTO team_members (id, team_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := q.Exec(ctx, query,
		member.ID,
		member.TeamID,
		member.UserID,
		member.Role,
		member.JoinedAt,
	)
	if err != nil {
		if translated := translateError(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to add team member: %w", err)
	}

	return nil
}

// Remove deletes a membership row.
func (r *teamMemberRepository) Remove(ctx context.Context, teamID, userID uuid.UUID) error {
	q := r.db.QuerierFrom(ctx)

	result, err := q.Exec(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`,
		teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// UpdateRole changes a member's role.
func (r *teamMemberRepository) UpdateRole(ctx context.Context, teamID, userID uuid.UUID, newRole string) error {
	q := r.db.QuerierFrom(ctx)

	result, err := q.Exec(ctx,
		`UPDATE team_members SET role = $3 WHERE team_id = $1 AND user_id = $2`,
		teamID, userID, newRole)
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Find retrieves a membership by team and user, or ErrNotFound.
func (r *teamMemberRepository) Find(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	q := r.db.QuerierFrom(ctx)

	query := `
		SELECT id, team_id, user_id, role, joined_at
		FROM team_members
		WHERE team_id = $1 AND user_id = $2`

	var member models.TeamMember
	err := q.QueryRow(ctx, query, teamID, userID).Scan(
		&member.ID,
		&member.TeamID,
		&member.UserID,
		&member.Role,
		&member.JoinedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find team member: %w", err)
	}

	return &member, nil
}

// ListByTeam retrieves the full roster for a team ordered by join time.
func (r *teamMemberRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error) {
	q := r.db.QuerierFrom(ctx)

	query := `
		SELECT id, team_id, user_id, role, joined_at
		FROM team_members
		WHERE team_id = $1
		ORDER BY joined_at`

	rows, err := q.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	var members []*models.TeamMember
	for rows.Next() {
		var member models.TeamMember
		err := rows.Scan(
			&member.ID,
			&member.TeamID,
			&member.UserID,
			&member.Role,
			&member.JoinedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, &member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team members: %w", err)
	}

	return members, nil
}

// CountLeaders returns the number of leader-role rows for a team.
// Exactly one is an invariant; the count exists so transfer and tests
// can assert it.
func (r *teamMemberRepository) CountLeaders(ctx context.Context, teamID uuid.UUID) (int, error) {
	q := r.db.QuerierFrom(ctx)

	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM team_members WHERE team_id = $1 AND role = 'leader'`,
		teamID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count leaders: %w", err)
	}

	return count, nil
}

// Ensure teamMemberRepository implements TeamMemberRepository at compile time.
var _ TeamMemberRepository = (*teamMemberRepository)(nil)
