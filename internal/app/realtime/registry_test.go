package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestOccupant(name string) *Occupant {
	return NewOccupant(uuid.New(), name)
}

// recvEvent reads the next frame from the occupant's outbound queue and decodes it.
func recvEvent(t *testing.T, occ *Occupant) Event {
	t.Helper()

	select {
	case payload, ok := <-occ.Outbound():
		if !ok {
			t.Fatalf("outbound queue closed while waiting for event")
		}
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			t.Fatalf("failed to decode event %q: %v", payload, err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return Event{}
}

func expectNoEvent(t *testing.T, occ *Occupant) {
	t.Helper()

	select {
	case payload, ok := <-occ.Outbound():
		if ok {
			t.Fatalf("unexpected event delivered: %s", payload)
		}
		t.Fatalf("outbound queue unexpectedly closed")
	default:
	}
}

func TestJoinSequenceAndDisconnect(t *testing.T) {
	reg := NewRegistry()
	room := uuid.New()

	u1 := newTestOccupant("alice")
	reg.Join(room, u1)

	state := recvEvent(t, u1)
	if state.Type != TypeRoomState {
		t.Fatalf("expected room_state, got %q", state.Type)
	}
	if len(state.Users) != 0 {
		t.Fatalf("first joiner should see an empty room, got %v", state.Users)
	}

	u2 := newTestOccupant("bob")
	reg.Join(room, u2)

	state = recvEvent(t, u2)
	if state.Type != TypeRoomState {
		t.Fatalf("expected room_state, got %q", state.Type)
	}
	if len(state.Users) != 1 || state.Users[0] != "alice" {
		t.Fatalf("second joiner should see [alice], got %v", state.Users)
	}

	joined := recvEvent(t, u1)
	if joined.Type != TypeUserJoined || joined.Username != "bob" {
		t.Fatalf("expected user_joined bob, got %+v", joined)
	}

	if !reg.Leave(u1) {
		t.Fatalf("expected Leave to remove alice")
	}

	left := recvEvent(t, u2)
	if left.Type != TypeUserLeft || left.Username != "alice" {
		t.Fatalf("expected user_left alice, got %+v", left)
	}
}

func TestSnapshotExcludesJoiner(t *testing.T) {
	reg := NewRegistry()
	room := uuid.New()

	occ := newTestOccupant("solo")
	reg.Join(room, occ)

	state := recvEvent(t, occ)
	for _, name := range state.Users {
		if name == "solo" {
			t.Fatalf("room_state snapshot must not include the joiner: %v", state.Users)
		}
	}
}

func TestNoSelfNotification(t *testing.T) {
	reg := NewRegistry()
	room := uuid.New()

	occ := newTestOccupant("echo")
	reg.Join(room, occ)
	recvEvent(t, occ) // room_state

	// The joiner must not see their own user_joined.
	expectNoEvent(t, occ)

	reg.Leave(occ)

	// After removal the queue is closed without a user_left about themselves.
	for payload := range occ.Outbound() {
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			t.Fatalf("failed to decode event: %v", err)
		}
		if ev.Username == "echo" {
			t.Fatalf("user received notification about themselves: %+v", ev)
		}
	}
}

func TestLeaveUnknownUserIsNoop(t *testing.T) {
	reg := NewRegistry()

	if reg.Leave(newTestOccupant("ghost")) {
		t.Fatalf("Leave for an unregistered occupant should report false")
	}
}

func TestLeaveStaleSessionIgnored(t *testing.T) {
	reg := NewRegistry()
	room := uuid.New()

	userID := uuid.New()
	first := NewOccupant(userID, "dup")
	second := NewOccupant(userID, "dup")

	reg.Join(room, first)
	reg.Join(room, second) // replaces first

	// The replaced session's queue ends closed; drain it.
	for range first.Outbound() {
	}

	// The replaced session's cleanup must not remove the live one.
	if reg.Leave(first) {
		t.Fatalf("stale leave should be ignored")
	}

	if got := reg.Occupants(room); len(got) != 1 || got[0] != "dup" {
		t.Fatalf("expected [dup] still present, got %v", got)
	}
}

func TestJoinReplacingSessionKeepsSingleOccupancy(t *testing.T) {
	reg := NewRegistry()
	roomA := uuid.New()
	roomB := uuid.New()

	userID := uuid.New()
	first := NewOccupant(userID, "nomad")
	second := NewOccupant(userID, "nomad")

	reg.Join(roomA, first)
	reg.Join(roomB, second)

	if got := reg.Occupants(roomA); len(got) != 0 {
		t.Fatalf("old room should be empty after replacement, got %v", got)
	}
	if got := reg.Occupants(roomB); len(got) != 1 {
		t.Fatalf("new room should hold the replacement session, got %v", got)
	}

	if roomID, ok := reg.RoomOf(userID); !ok || roomID != roomB {
		t.Fatalf("index should point at roomB, got %v %v", roomID, ok)
	}
}

func TestMoveBroadcastsBothRooms(t *testing.T) {
	reg := NewRegistry()
	roomA := uuid.New()
	roomB := uuid.New()

	mover := newTestOccupant("mover")
	stayerA := newTestOccupant("stayer_a")
	stayerB := newTestOccupant("stayer_b")

	reg.Join(roomA, stayerA)
	recvEvent(t, stayerA)
	reg.Join(roomB, stayerB)
	recvEvent(t, stayerB)
	reg.Join(roomA, mover)
	recvEvent(t, mover)   // room_state for A
	recvEvent(t, stayerA) // user_joined mover

	if !reg.Move(mover.UserID, "mover", &roomA, roomB) {
		t.Fatalf("expected Move to succeed")
	}

	left := recvEvent(t, stayerA)
	if left.Type != TypeUserLeft || left.Username != "mover" {
		t.Fatalf("room A should see user_left mover, got %+v", left)
	}

	joined := recvEvent(t, stayerB)
	if joined.Type != TypeUserJoined || joined.Username != "mover" {
		t.Fatalf("room B should see user_joined mover, got %+v", joined)
	}

	state := recvEvent(t, mover)
	if state.Type != TypeRoomState {
		t.Fatalf("mover should receive a room_state for B, got %+v", state)
	}
	if len(state.Users) != 1 || state.Users[0] != "stayer_b" {
		t.Fatalf("mover's snapshot should list [stayer_b], got %v", state.Users)
	}

	if roomID, _ := reg.RoomOf(mover.UserID); roomID != roomB {
		t.Fatalf("mover should be indexed in room B")
	}
	if got := reg.Occupants(roomA); len(got) != 1 {
		t.Fatalf("room A should only hold stayer_a, got %v", got)
	}
}

func TestMoveWithoutConnectionIsNoop(t *testing.T) {
	reg := NewRegistry()

	if reg.Move(uuid.New(), "offline", nil, uuid.New()) {
		t.Fatalf("Move for a user without a connection should report false")
	}
}

func TestMoveUsesRegistryStateOverHint(t *testing.T) {
	reg := NewRegistry()
	roomA := uuid.New()
	roomB := uuid.New()
	wrongHint := uuid.New()

	occ := newTestOccupant("drifter")
	reg.Join(roomA, occ)

	if !reg.Move(occ.UserID, "drifter", &wrongHint, roomB) {
		t.Fatalf("Move should succeed despite a stale hint")
	}

	if got := reg.Occupants(roomA); len(got) != 0 {
		t.Fatalf("room A should be empty, got %v", got)
	}
	if got := reg.Occupants(roomB); len(got) != 1 {
		t.Fatalf("room B should hold the drifter, got %v", got)
	}
}

func TestEmptyRoomsRemainRegistered(t *testing.T) {
	reg := NewRegistry()
	room := uuid.New()

	occ := newTestOccupant("transient")
	reg.Join(room, occ)
	reg.Leave(occ)

	reg.mu.Lock()
	_, stillThere := reg.rooms[room]
	reg.mu.Unlock()

	if !stillThere {
		t.Fatalf("empty rooms are not pruned")
	}

	if got := reg.Occupants(room); len(got) != 0 {
		t.Fatalf("empty room should report no occupants, got %v", got)
	}
}

func TestBroadcastBestEffortWithSaturatedOccupant(t *testing.T) {
	reg := NewRegistry()
	room := uuid.New()

	stuck := newTestOccupant("stuck")
	healthy := newTestOccupant("healthy")

	reg.Join(room, stuck)
	reg.Join(room, healthy)

	// Saturate the stuck occupant's queue without draining it.
	for stuck.TrySend([]byte("filler")) {
	}

	done := make(chan struct{})
	go func() {
		reg.Join(room, newTestOccupant("late"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("broadcast blocked on a saturated occupant")
	}

	// The healthy occupant still gets the notification.
	recvEvent(t, healthy) // room_state
	joined := recvEvent(t, healthy)
	if joined.Type != TypeUserJoined || joined.Username != "late" {
		t.Fatalf("healthy occupant missed the join, got %+v", joined)
	}
}

func TestSendToClosedQueueIsDropped(t *testing.T) {
	occ := newTestOccupant("closed")
	occ.closeSend()

	if occ.TrySend([]byte("x")) {
		t.Fatalf("TrySend on a closed queue should report false")
	}
}

func TestRoomStateMarshalsEmptyList(t *testing.T) {
	payload := marshalRoomState(nil)
	want := `{"type":"room_state","users":[]}`
	if string(payload) != want {
		t.Fatalf("empty room_state = %s, want %s", payload, want)
	}
}

// checkSingleOccupancy verifies that every indexed user appears in exactly one room
// and that the index agrees with room contents. Callers must not hold reg.mu.
func checkSingleOccupancy(reg *Registry) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	seen := make(map[uuid.UUID]uuid.UUID)
	for roomID, room := range reg.rooms {
		for userID := range room {
			if prev, dup := seen[userID]; dup {
				return fmt.Errorf("user %s present in rooms %s and %s", userID, prev, roomID)
			}
			seen[userID] = roomID

			if indexed, ok := reg.byUser[userID]; !ok || indexed != roomID {
				return fmt.Errorf("index %v disagrees with room %s for user %s", indexed, roomID, userID)
			}
		}
	}

	if len(seen) != len(reg.byUser) {
		return fmt.Errorf("index tracks %d users, rooms hold %d", len(reg.byUser), len(seen))
	}
	return nil
}

func TestSingleOccupancyUnderConcurrentOperations(t *testing.T) {
	reg := NewRegistry()

	rooms := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	const users = 8
	const movesPerUser = 200

	occupants := make([]*Occupant, users)
	for i := 0; i < users; i++ {
		occupants[i] = NewOccupant(uuid.New(), fmt.Sprintf("user_%d", i))
		reg.Join(rooms[0], occupants[i])
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	checkErr := make(chan error, 1)

	// Checker samples locked snapshots while the movers run.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				if err := checkSingleOccupancy(reg); err != nil {
					select {
					case checkErr <- err:
					default:
					}
					return
				}
			}
		}
	}()

	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(occ *Occupant, seed int) {
			defer wg.Done()
			for n := 0; n < movesPerUser; n++ {
				target := rooms[(seed+n)%len(rooms)]
				reg.Move(occ.UserID, occ.Username, nil, target)

				// Drain the queue so broadcasts never silently saturate
				// into meaninglessness for this test.
				for {
					select {
					case <-occ.Outbound():
						continue
					default:
					}
					break
				}
			}
		}(occupants[i], i)
	}

	// Wait for movers, then stop the checker.
	moversDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(moversDone)
	}()

	time.Sleep(50 * time.Millisecond)
	close(stop)

	select {
	case <-moversDone:
	case <-time.After(10 * time.Second):
		t.Fatalf("concurrent operations did not finish")
	}

	select {
	case err := <-checkErr:
		t.Fatalf("invariant violated mid-run: %v", err)
	default:
	}

	if err := checkSingleOccupancy(reg); err != nil {
		t.Fatalf("invariant violated after run: %v", err)
	}

	total := 0
	for _, room := range rooms {
		total += len(reg.Occupants(room))
	}
	if total != users {
		t.Fatalf("expected %d occupants across rooms, found %d", users, total)
	}
}

func TestMoveAtomicityAgainstConcurrentJoinLeave(t *testing.T) {
	reg := NewRegistry()
	roomA := uuid.New()
	roomB := uuid.New()

	mover := newTestOccupant("u")
	reg.Join(roomA, mover)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		reg.Move(mover.UserID, "u", &roomA, roomB)
	}()
	go func() {
		defer wg.Done()
		reg.Join(roomA, newTestOccupant("v"))
	}()
	go func() {
		defer wg.Done()
		w := newTestOccupant("w")
		reg.Join(roomA, w)
		reg.Leave(w)
	}()

	wg.Wait()

	roomID, ok := reg.RoomOf(mover.UserID)
	if !ok || roomID != roomB {
		t.Fatalf("mover must end in room B exactly, got %v ok=%v", roomID, ok)
	}

	for _, name := range reg.Occupants(roomA) {
		if name == "u" {
			t.Fatalf("mover still visible in room A after move")
		}
	}

	found := 0
	for _, name := range reg.Occupants(roomB) {
		if name == "u" {
			found++
		}
	}
	if found != 1 {
		t.Fatalf("mover should appear exactly once in room B, found %d", found)
	}
}
