// Package game holds the shared client state packet handlers mutate: the
// connection phase, the local player's identity and vitals, the world model,
// and the outbound event stream.
package game

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/gardenstoney/mc-client/event"
	"github.com/gardenstoney/mc-client/world"
)

// A Session stores connection and game state for one client connection.
// Fields other than the phase are written exclusively by the dispatch loop,
// which runs handlers one at a time in arrival order.
type Session struct {
	World *world.World

	// Local player identity, filled in by the login sequence.
	Username string
	UUID     uuid.UUID
	EntityID int32

	Health     float32
	Food       int32
	Saturation float32

	// Player position as last synchronized by the server.
	Pos   mgl64.Vec3
	Yaw   float32
	Pitch float32

	// World spawn point block coordinates.
	SpawnX int32
	SpawnY int16
	SpawnZ int32

	phase     atomic.Int32
	events    chan event.Event
	replies   chan []byte
	inventory map[int16]*Item
}

// Item is one inventory slot's content. NBT metadata rides along verbatim.
type Item struct {
	ID    int32
	Count byte
	NBT   map[string]any
}

// SetSlot stores or clears a player inventory slot.
func (s *Session) SetSlot(slot int16, it *Item) {
	if it == nil {
		delete(s.inventory, slot)
		return
	}
	s.inventory[slot] = it
}

func (s *Session) Slot(slot int16) (Item, bool) {
	it, ok := s.inventory[slot]
	if !ok {
		return Item{}, false
	}
	return *it, true
}

func NewSession() *Session {
	return &Session{
		World:     world.New(),
		events:    make(chan event.Event, 256),
		replies:   make(chan []byte, 16),
		inventory: make(map[int16]*Item),
	}
}

func (s *Session) Phase() Phase {
	return Phase(s.phase.Load())
}

// SetPhase moves the session to a new phase. Closed is terminal: once there,
// no further transition takes effect.
func (s *Session) SetPhase(p Phase) {
	for {
		cur := s.phase.Load()
		if Phase(cur) == PhaseClosed {
			return
		}
		if s.phase.CompareAndSwap(cur, int32(p)) {
			return
		}
	}
}

// Emit publishes an event for UI and render consumers. It blocks once the
// buffer fills; a slow consumer slows dispatch rather than losing events.
func (s *Session) Emit(ev event.Event) {
	s.events <- ev
}

func (s *Session) Events() <-chan event.Event {
	return s.events
}

// CloseEvents ends the event stream. The dispatch loop calls it once no
// further handler can run; consumers ranging over Events observe the close.
func (s *Session) CloseEvents() {
	close(s.events)
}

// Reply queues an already-encoded serverbound frame (id varint + payload) for
// the connection's send path. Handlers use it to answer packets like
// KeepAlive without doing network I/O themselves.
func (s *Session) Reply(frame []byte) {
	select {
	case s.replies <- frame:
	default:
		// Send path gone; the connection is being torn down.
	}
}

func (s *Session) Replies() <-chan []byte {
	return s.replies
}
