package world

import (
	"github.com/google/uuid"
	"github.com/scylladb/go-set/b16set"
	"github.com/scylladb/go-set/i32set"
)

// Tracker records which entity ids and player UUIDs the server currently has
// live on this client, so teardown can report exactly what was dropped.
type Tracker struct {
	entities *i32set.Set
	players  *b16set.Set
}

func NewTracker() *Tracker {
	return &Tracker{
		entities: i32set.New(),
		players:  b16set.New(),
	}
}

func (t *Tracker) addEntity(id int32)    { t.entities.Add(id) }
func (t *Tracker) removeEntity(id int32) { t.entities.Remove(id) }
func (t *Tracker) addPlayer(u uuid.UUID) { t.players.Add(u) }
func (t *Tracker) removePlayer(u uuid.UUID) {
	t.players.Remove(u)
}

func (t *Tracker) HasEntity(id int32) bool { return t.entities.Has(id) }

func (t *Tracker) EntityIDs() []int32 { return t.entities.List() }

func (t *Tracker) Players() []uuid.UUID {
	raw := t.players.List()
	out := make([]uuid.UUID, len(raw))
	for i, b := range raw {
		out[i] = uuid.UUID(b)
	}
	return out
}

// Clear empties the tracker and returns the entity ids that were live, in no
// particular order.
func (t *Tracker) Clear() []int32 {
	ids := t.entities.List()
	t.entities.Clear()
	t.players.Clear()
	return ids
}
