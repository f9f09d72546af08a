package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/1o0n1/structure/internal/pkg/logx"
)

// NoLocation is the sentinel room id for players whose current location could not be
// resolved at connection time. They still get presence among themselves.
var NoLocation = uuid.Nil

// Registry is the process-wide map of location id to the set of players currently
// connected there. A single mutex guards all rooms, so a move spanning two rooms is
// one critical section and every operation observes one global serialization.
//
// Critical sections only mutate the in-memory maps and perform non-blocking
// enqueues; they never touch the network, so a stalled client cannot hold up
// joins, leaves, or moves for anyone else.
type Registry struct {
	mu sync.Mutex

	// rooms maps location id -> (user id -> occupant). Rooms are created lazily on
	// first join and intentionally kept when they empty out.
	rooms map[uuid.UUID]map[uuid.UUID]*Occupant

	// byUser maps each connected user to the single room holding them. It is the
	// authoritative answer to "where is this player", so a disconnect after a move
	// cleans up the right room.
	byUser map[uuid.UUID]uuid.UUID

	logger zerolog.Logger
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	registryLogger := logx.Logger().With().Str("component", "Registry").Logger()

	return &Registry{
		rooms:  make(map[uuid.UUID]map[uuid.UUID]*Occupant),
		byUser: make(map[uuid.UUID]uuid.UUID),
		logger: registryLogger,
	}
}

// Join inserts occ into roomID, creating the room if absent.
//
// The joiner receives a room_state snapshot taken immediately BEFORE insertion, so
// the snapshot never includes the joiner themselves. Everyone already in the room
// receives a user_joined event. If the same user is already connected anywhere in
// the registry, that older session is removed first (its queue is closed, which
// terminates its write loop), keeping each user in at most one room.
func (r *Registry) Join(roomID uuid.UUID, occ *Occupant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if oldRoomID, ok := r.byUser[occ.UserID]; ok {
		old := r.rooms[oldRoomID][occ.UserID]
		r.removeLocked(oldRoomID, occ.UserID)
		old.closeSend()
		r.broadcastLocked(r.rooms[oldRoomID], marshalUserEvent(TypeUserLeft, old.Username), occ.UserID)

		r.logger.Warn().
			Str("user_id", occ.UserID.String()).
			Str("old_room_id", oldRoomID.String()).
			Msg("User already connected. Replacing previous session.")
	}

	room := r.roomLocked(roomID)

	occ.TrySend(marshalRoomState(r.occupantNamesLocked(room)))
	r.broadcastLocked(room, marshalUserEvent(TypeUserJoined, occ.Username), occ.UserID)

	room[occ.UserID] = occ
	r.byUser[occ.UserID] = roomID

	r.logger.Info().
		Str("user_id", occ.UserID.String()).
		Str("room_id", roomID.String()).
		Int("occupants", len(room)).
		Msg("User joined room.")
}

// Leave removes occ from whichever room currently holds it and notifies the
// remaining occupants with a user_left event. The occupant's queue is closed so the
// owning write loop terminates.
//
// A stale occ (one already replaced by a newer session for the same user, or never
// registered) is a benign race: nothing is removed and Leave returns false.
func (r *Registry) Leave(occ *Occupant) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.byUser[occ.UserID]
	if !ok {
		return false
	}

	if current := r.rooms[roomID][occ.UserID]; current != occ {
		r.logger.Info().
			Str("user_id", occ.UserID.String()).
			Msg("Ignoring leave for stale session.")
		return false
	}

	r.removeLocked(roomID, occ.UserID)
	occ.closeSend()

	r.broadcastLocked(r.rooms[roomID], marshalUserEvent(TypeUserLeft, occ.Username), occ.UserID)

	r.logger.Info().
		Str("user_id", occ.UserID.String()).
		Str("room_id", roomID.String()).
		Msg("User left room.")

	return true
}

// Move relocates a connected user into newRoomID as one atomic step: the old room's
// remaining occupants see user_left, the mover receives a room_state snapshot of the
// destination (taken before insertion, so it excludes them), and the destination's
// occupants see user_joined. No other registry operation can interleave.
//
// oldRoomID is the caller's hint of where the user was; the registry's own index is
// authoritative and a disagreement is only logged. A user with no live connection is
// not an error: there is nothing to notify, so Move logs and returns false.
func (r *Registry) Move(userID uuid.UUID, username string, oldRoomID *uuid.UUID, newRoomID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	currentRoomID, ok := r.byUser[userID]
	if !ok {
		r.logger.Info().
			Str("user_id", userID.String()).
			Str("username", username).
			Msg("Move for user without a live connection. Nothing to notify.")
		return false
	}

	if oldRoomID != nil && *oldRoomID != currentRoomID {
		r.logger.Warn().
			Str("user_id", userID.String()).
			Str("hinted_room_id", oldRoomID.String()).
			Str("actual_room_id", currentRoomID.String()).
			Msg("Move hint disagrees with registry. Using registry state.")
	}

	occ := r.rooms[currentRoomID][userID]
	r.removeLocked(currentRoomID, userID)
	r.broadcastLocked(r.rooms[currentRoomID], marshalUserEvent(TypeUserLeft, occ.Username), userID)

	newRoom := r.roomLocked(newRoomID)

	occ.TrySend(marshalRoomState(r.occupantNamesLocked(newRoom)))
	r.broadcastLocked(newRoom, marshalUserEvent(TypeUserJoined, occ.Username), userID)

	newRoom[userID] = occ
	r.byUser[userID] = newRoomID

	r.logger.Info().
		Str("user_id", userID.String()).
		Str("from_room_id", currentRoomID.String()).
		Str("to_room_id", newRoomID.String()).
		Msg("User moved between rooms.")

	return true
}

// Occupants returns the display names of the users currently in roomID. A room that
// is empty or was never created yields an empty slice.
func (r *Registry) Occupants(roomID uuid.UUID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.occupantNamesLocked(r.rooms[roomID])
}

// RoomOf reports which room currently holds the given user, if any.
func (r *Registry) RoomOf(userID uuid.UUID) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.byUser[userID]
	return roomID, ok
}

// Shutdown closes every connected occupant's queue, terminating all write loops. The
// registry is left empty; it is not reusable afterwards.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, room := range r.rooms {
		for _, occ := range room {
			occ.closeSend()
		}
	}

	r.rooms = make(map[uuid.UUID]map[uuid.UUID]*Occupant)
	r.byUser = make(map[uuid.UUID]uuid.UUID)

	r.logger.Info().Msg("Registry shut down. All occupant queues closed.")
}

// roomLocked returns the occupant map for roomID, creating it lazily.
func (r *Registry) roomLocked(roomID uuid.UUID) map[uuid.UUID]*Occupant {
	room, ok := r.rooms[roomID]
	if !ok {
		room = make(map[uuid.UUID]*Occupant)
		r.rooms[roomID] = room
	}
	return room
}

// removeLocked deletes the user from the room and from the user index. Empty rooms
// stay in the map; membership state is process-lifetime only, so the growth is
// bounded by the number of distinct locations.
func (r *Registry) removeLocked(roomID, userID uuid.UUID) {
	delete(r.rooms[roomID], userID)
	delete(r.byUser, userID)
}

// broadcastLocked delivers payload to every occupant of room except skipUser.
// Delivery is a non-blocking enqueue per recipient; a full or closed queue drops
// that recipient's copy without affecting the others.
func (r *Registry) broadcastLocked(room map[uuid.UUID]*Occupant, payload []byte, skipUser uuid.UUID) {
	for userID, occ := range room {
		if userID == skipUser {
			continue
		}

		if !occ.TrySend(payload) {
			r.logger.Warn().
				Str("user_id", userID.String()).
				Msg("Occupant queue full or closed. Dropping event.")
		}
	}
}

// occupantNamesLocked snapshots the display names in room.
func (r *Registry) occupantNamesLocked(room map[uuid.UUID]*Occupant) []string {
	names := make([]string, 0, len(room))
	for _, occ := range room {
		names = append(names, occ.Username)
	}
	return names
}
