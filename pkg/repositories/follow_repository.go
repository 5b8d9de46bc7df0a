package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/makerfolio/makerfolio-api/pkg/apperrors"
	"github.com/makerfolio/makerfolio-api/pkg/database"
	"github.com/makerfolio/makerfolio-api/pkg/models"
)

// FollowRepository defines the interface for follow edge data access.
// Edges are unique per (follower_id, following_id) pair.
type FollowRepository interface {
	Add(ctx context.Context, followerID, followingID uuid.UUID) error
	Remove(ctx context.Context, followerID, followingID uuid.UUID) error
	ListFollowers(ctx context.Context, userID uuid.UUID) ([]*models.Follow, error)
	ListFollowing(ctx context.Context, userID uuid.UUID) ([]*models.Follow, error)
}

// followRepository implements FollowRepository using PostgreSQL.
type followRepository struct {
	db *database.DB
}

// NewFollowRepository creates a new follow repository.
func NewFollowRepository(db *database.DB) FollowRepository {
	return &followRepository{db: db}
}

// Add inserts a follow edge. Duplicate pairs return ErrConflict;
// a missing user returns ErrNotFound via the foreign keys.
func (r *followRepository) Add(ctx context.Context, followerID, followingID uuid.UUID) error {
	q := r.db.QuerierFrom(ctx)

	_, err := q.Exec(ctx,
		`INSERT INTO user_follows (follower_id, following_id, created_at) VALUES ($1, $2, $3)`,
		followerID, followingID, time.Now())
	if err != nil {
		if translated := translateError(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to add follow: %w", err)
	}

	return nil
}

// Remove deletes a follow edge.
func (r *followRepository) Remove(ctx context.Context, followerID, followingID uuid.UUID) error {
	q := r.db.QuerierFrom(ctx)

	result, err := q.Exec(ctx,
		`DELETE FROM user_follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID)
	if err != nil {
		return fmt.Errorf("failed to remove follow: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// ListFollowers retrieves edges pointing at the user.
func (r *followRepository) ListFollowers(ctx context.Context, userID uuid.UUID) ([]*models.Follow, error) {
	return r.list(ctx,
		`SELECT follower_id, following_id, created_at FROM user_follows WHERE following_id = $1 ORDER BY created_at DESC`,
		userID)
}

// ListFollowing retrieves edges originating from the user.
func (r *followRepository) ListFollowing(ctx context.Context, userID uuid.UUID) ([]*models.Follow, error) {
	return r.list(ctx,
		`SELECT follower_id, following_id, created_at FROM user_follows WHERE follower_id = $1 ORDER BY created_at DESC`,
		userID)
}

func (r *followRepository) list(ctx context.Context, query string, userID uuid.UUID) ([]*models.Follow, error) {
	q := r.db.QuerierFrom(ctx)

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	defer rows.Close()

	var follows []*models.Follow
	for rows.Next() {
		var follow models.Follow
		if err := rows.Scan(&follow.FollowerID, &follow.FollowingID, &follow.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan follow: %w", err)
		}
		follows = append(follows, &follow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating follows: %w", err)
	}

	return follows, nil
}

// Ensure followRepository implements FollowRepository at compile time.
var _ FollowRepository = (*followRepository)(nil)
