// Package world holds the client's view of the remote game world: entities
// keyed by their server-assigned id and chunk columns keyed by position.
// Packet handlers are the only writers; the dispatch loop runs them one at a
// time, so writes never race each other. The lock exists for render-side
// readers that poll state between events.
package world

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

type Entity struct {
	ID    int32
	UUID  uuid.UUID
	Kind  int32
	Pos   mgl64.Vec3
	Yaw   float32
	Pitch float32
}

type World struct {
	mu       sync.RWMutex
	entities map[int32]*Entity
	chunks   map[ChunkPos]*Column
	tracker  *Tracker
}

func New() *World {
	return &World{
		entities: make(map[int32]*Entity),
		chunks:   make(map[ChunkPos]*Column),
		tracker:  NewTracker(),
	}
}

func (w *World) Tracker() *Tracker { return w.tracker }

func (w *World) AddEntity(e Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entities[e.ID] = &e
	w.tracker.addEntity(e.ID)
	if e.UUID != (uuid.UUID{}) {
		w.tracker.addPlayer(e.UUID)
	}
}

// Entity returns a copy of the entity with the given id.
func (w *World) Entity(id int32) (Entity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

func (w *World) EntityCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}

// MoveEntity applies an absolute position and optionally a rotation to a
// tracked entity. Unknown ids are an error; the server only moves entities it
// has spawned.
func (w *World) MoveEntity(id int32, pos mgl64.Vec3, yaw, pitch float32, rotate bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entities[id]
	if !ok {
		return fmt.Errorf("move of unknown entity %d", id)
	}
	e.Pos = pos
	if rotate {
		e.Yaw = yaw
		e.Pitch = pitch
	}
	return nil
}

// NudgeEntity applies a relative delta, returning the resulting position.
func (w *World) NudgeEntity(id int32, delta mgl64.Vec3) (mgl64.Vec3, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entities[id]
	if !ok {
		return mgl64.Vec3{}, fmt.Errorf("move of unknown entity %d", id)
	}
	e.Pos = e.Pos.Add(delta)
	return e.Pos, nil
}

func (w *World) RotateEntity(id int32, yaw, pitch float32) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entities[id]
	if !ok {
		return fmt.Errorf("rotate of unknown entity %d", id)
	}
	e.Yaw = yaw
	e.Pitch = pitch
	return nil
}

func (w *World) RemoveEntity(id int32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e, ok := w.entities[id]; ok {
		if e.UUID != (uuid.UUID{}) {
			w.tracker.removePlayer(e.UUID)
		}
		delete(w.entities, id)
		w.tracker.removeEntity(id)
	}
}
