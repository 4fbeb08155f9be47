package storage

import (
	"context"

	"dialoguebot/internal/models"
)

// Journal is an append-only audit log of dialogue activity.
// It is never read back to restore dialogue state.
type Journal interface {
	RecordTransition(ctx context.Context, t models.Transition) error
	RecordProviderCall(ctx context.Context, c models.ProviderCall) error

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
