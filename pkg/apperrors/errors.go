// Package apperrors defines the error taxonomy shared by services and
// handlers. Handlers map these to HTTP statuses with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced team, project, membership, user
	// or comment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation: duplicate team name,
	// duplicate membership pair, duplicate follow edge.
	ErrConflict = errors.New("conflict")

	// ErrForbidden indicates the actor lacks the required role or
	// ownership. Always wrapped with a reason via Forbidden.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalid indicates a semantically malformed request, such as
	// removing the team leader or an unknown role value.
	ErrInvalid = errors.New("invalid")
)

// Forbidden returns an ErrForbidden wrapped with a human-readable
// reason. The reason must not leak internal identifiers.
func Forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

// Invalid returns an ErrInvalid wrapped with a human-readable reason.
func Invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalid, reason)
}
