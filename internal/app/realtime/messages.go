/*
Package realtime contains the core logic for live location presence: the registry of
connected players per location, the per-connection read/write loops, and the
notifications exchanged when players join, leave, or move between locations.
*/
package realtime

import "encoding/json"

// Event type values emitted to clients. room_state goes only to the connection that
// just joined or moved; user_joined and user_left are broadcast to everyone else in
// the affected location.
const (
	TypeRoomState  = "room_state"
	TypeUserJoined = "user_joined"
	TypeUserLeft   = "user_left"
)

// Heartbeat probe/reply literals. These are raw text frames, deliberately distinct
// from the JSON events so clients can match them without parsing.
const (
	HeartbeatProbe = "__ping__"
	HeartbeatReply = "__pong__"
)

// Event is the JSON shape of every presence notification pushed to clients.
type Event struct {
	// Type is one of TypeRoomState, TypeUserJoined, TypeUserLeft.
	Type string `json:"type"`

	// Username identifies the player a user_joined/user_left event is about.
	Username string `json:"username,omitempty"`

	// Users lists the display names already present, for room_state events.
	Users []string `json:"users,omitempty"`
}

// marshalRoomState builds the room_state frame for a joining or moving connection.
// An empty occupant list is encoded as [] rather than null.
func marshalRoomState(users []string) []byte {
	if users == nil {
		users = []string{}
	}

	payload, err := json.Marshal(struct {
		Type  string   `json:"type"`
		Users []string `json:"users"`
	}{Type: TypeRoomState, Users: users})
	if err != nil {
		return nil
	}
	return payload
}

// marshalUserEvent builds a user_joined or user_left frame.
func marshalUserEvent(eventType, username string) []byte {
	payload, err := json.Marshal(Event{Type: eventType, Username: username})
	if err != nil {
		return nil
	}
	return payload
}
