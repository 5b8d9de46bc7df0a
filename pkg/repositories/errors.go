package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/makerfolio/makerfolio-api/pkg/apperrors"
)

// Postgres error codes the business layer anticipates.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateError maps constraint violations onto the apperrors
// taxonomy. The unique constraint on (team_id, user_id) is the sole
// serialization point for concurrent member additions: exactly one of
// two racing inserts wins, the other surfaces as ErrConflict here.
// Unanticipated store errors pass through untranslated.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperrors.ErrConflict
		case pgForeignKeyViolation:
			return apperrors.ErrNotFound
		}
	}
	return err
}
