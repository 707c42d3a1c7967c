// Package event carries the strongly-typed notifications the protocol layer
// emits for UI and render consumers. Events travel over a single buffered
// channel per client, so ordering follows packet arrival order and a slow
// consumer applies backpressure to the dispatcher.
package event

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

type Event interface {
	// IsEvent does nothing. It pins the closed set of event types.
	IsEvent()
}

// GameJoined fires once the server has admitted the player into the world.
type GameJoined struct {
	EntityID  int32
	Gamemode  byte
	Hardcore  bool
	Dimension string
}

func (GameJoined) IsEvent() {}

type EntitySpawned struct {
	EntityID int32
	UUID     uuid.UUID
	Kind     int32
	Pos      mgl64.Vec3
}

func (EntitySpawned) IsEvent() {}

type EntityMoved struct {
	EntityID int32
	Pos      mgl64.Vec3
}

func (EntityMoved) IsEvent() {}

type EntityRemoved struct {
	EntityID int32
}

func (EntityRemoved) IsEvent() {}

type ChunkReceived struct {
	X int32
	Z int32
}

func (ChunkReceived) IsEvent() {}

type BlockChanged struct {
	X     int32
	Y     int16
	Z     int32
	State int32
}

func (BlockChanged) IsEvent() {}

type HealthChanged struct {
	Health     float32
	Food       int32
	Saturation float32
}

func (HealthChanged) IsEvent() {}

// Chat carries a chat or system message as the raw JSON text component.
type Chat struct {
	Content string
	Overlay bool
}

func (Chat) IsEvent() {}

type TimeUpdated struct {
	WorldAge  int64
	TimeOfDay int64
}

func (TimeUpdated) IsEvent() {}

// PlayerPositionSynced fires when the server forcibly repositions the player.
type PlayerPositionSynced struct {
	Pos   mgl64.Vec3
	Yaw   float32
	Pitch float32
}

func (PlayerPositionSynced) IsEvent() {}

// StatusReceived carries a server's status response as raw JSON.
type StatusReceived struct {
	JSON string
}

func (StatusReceived) IsEvent() {}

// Pong answers a status-phase ping with the timestamp the client sent.
type Pong struct {
	Timestamp int64
}

func (Pong) IsEvent() {}

// Disconnected is the last event a connection emits. Reason holds the text
// supplied by the remote party when there is one.
type Disconnected struct {
	Reason string
}

func (Disconnected) IsEvent() {}

// DecodeFailed reports a fatal protocol error. The connection is torn down
// right after; byte framing cannot be trusted once a decode has gone wrong.
type DecodeFailed struct {
	Err error
}

func (DecodeFailed) IsEvent() {}
