package realtime

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/1o0n1/structure/internal/pkg/logx"
)

// Coordinator is the narrow entry point movement logic uses to keep presence in sync
// with persistence. Callers must have validated the move and durably written the new
// location BEFORE invoking NotifyMove, so a concurrent reconnect reads the new room.
type Coordinator struct {
	registry *Registry

	logger zerolog.Logger
}

// NewCoordinator constructs a Coordinator over the given registry.
func NewCoordinator(registry *Registry) *Coordinator {
	coordinatorLogger := logx.Logger().With().Str("component", "Coordinator").Logger()

	return &Coordinator{
		registry: registry,
		logger:   coordinatorLogger,
	}
}

// NotifyMove relocates the user's live presence from oldRoomID (nil when the user
// had no prior location) to newRoomID. It completes all best-effort broadcasts
// before returning but never blocks on slow recipients.
//
// A user without an active connection is not an error: they were moved while
// offline, there is nobody to notify, and their next connection will join the new
// room from persistence.
func (c *Coordinator) NotifyMove(userID uuid.UUID, username string, oldRoomID *uuid.UUID, newRoomID uuid.UUID) {
	if c.registry.Move(userID, username, oldRoomID, newRoomID) {
		return
	}

	c.logger.Info().
		Str("user_id", userID.String()).
		Str("username", username).
		Str("new_room_id", newRoomID.String()).
		Msg("Moved player has no live connection. Presence will sync on next connect.")
}
