package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// sendQueueSize is the outbound queue capacity per connection. Frames beyond this
// are dropped rather than blocking the sender (best-effort delivery).
const sendQueueSize = 256

// Occupant is the registry's record of one connected player: their identity plus the
// outbound queue used to push presence events to them. The owning connection's write
// loop is the sole consumer of the queue; the registry and the connection's own read
// loop are the producers.
type Occupant struct {
	// UserID is the player's unique identifier.
	UserID uuid.UUID

	// Username is the player's display name, used in presence events.
	Username string

	// mu guards closed so enqueue and close never race.
	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// NewOccupant constructs an Occupant with a fresh outbound queue.
func NewOccupant(userID uuid.UUID, username string) *Occupant {
	return &Occupant{
		UserID:   userID,
		Username: username,
		send:     make(chan []byte, sendQueueSize),
	}
}

// TrySend attempts a non-blocking enqueue of payload onto the occupant's outbound
// queue. It returns false if the queue is full or already closed; the frame is
// dropped in either case.
func (o *Occupant) TrySend(payload []byte) bool {
	if payload == nil {
		return false
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return false
	}

	select {
	case o.send <- payload:
		return true
	default:
		return false
	}
}

// Outbound exposes the receive side of the queue for the connection's write loop.
// The channel is closed when the occupant is removed from the registry.
func (o *Occupant) Outbound() <-chan []byte {
	return o.send
}

// closeSend closes the outbound queue exactly once. Called by the registry after the
// occupant has been removed from all rooms, so no further enqueues can target it.
func (o *Occupant) closeSend() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.closed {
		o.closed = true
		close(o.send)
	}
}
