// Package services contains the business orchestration layer. Every
// mutation of a team, membership or project consults pkg/authz before
// touching storage, and multi-row writes run inside a single
// transaction via TxRunner.
package services

import (
	"context"

	"github.com/google/uuid"
)

// TxRunner runs a function inside a storage transaction. Repository
// calls made with the context passed to fn join the transaction.
// *database.DB satisfies this; tests substitute a pass-through.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier publishes realtime events to per-user and per-project
// rooms. Publishing is best-effort and happens only after the
// mutation committed; a lost notification never affects stored state.
type Notifier interface {
	NotifyUser(userID uuid.UUID, event string, payload interface{})
	NotifyProject(projectID uuid.UUID, event string, payload interface{})
}

// NopNotifier discards all events. Used in tests and when the
// realtime layer is disabled.
type NopNotifier struct{}

// NotifyUser implements Notifier.
func (NopNotifier) NotifyUser(uuid.UUID, string, interface{}) {}

// NotifyProject implements Notifier.
func (NopNotifier) NotifyProject(uuid.UUID, string, interface{}) {}
