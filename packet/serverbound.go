package packet

import (
	"github.com/go-gl/mathgl/mgl64"
)

// ConfirmTeleportation acknowledges a SyncPlayerPosition.
type ConfirmTeleportation struct {
	TeleportID int32
}

func (p ConfirmTeleportation) ID() int32 {
	return 0x00
}

func (p ConfirmTeleportation) Encode(w *Writer) error {
	return w.VarInt(p.TeleportID)
}

// ChatMessage sends an unsigned chat message. The signature fields are
// written empty; this client does not participate in chat signing.
type ChatMessage struct {
	Message   string
	Timestamp int64
	Salt      int64
}

func (p ChatMessage) ID() int32 {
	return 0x05
}

func (p ChatMessage) Encode(w *Writer) error {
	if err := w.String(p.Message); err != nil {
		return err
	}
	if err := w.Long(p.Timestamp); err != nil {
		return err
	}
	if err := w.Long(p.Salt); err != nil {
		return err
	}
	if err := w.Boolean(false); err != nil { // no signature
		return err
	}
	if err := w.VarInt(0); err != nil { // message count
		return err
	}
	// Acknowledged bitset, 20 bits.
	for i := 0; i < 3; i++ {
		if err := w.Byte(0); err != nil {
			return err
		}
	}
	return nil
}

type KeepAliveServerbound struct {
	Nonce int64
}

func (p KeepAliveServerbound) ID() int32 {
	return 0x12
}

func (p KeepAliveServerbound) Encode(w *Writer) error {
	return w.Long(p.Nonce)
}

type SetPlayerPosition struct {
	Pos      mgl64.Vec3
	OnGround bool
}

func (p SetPlayerPosition) ID() int32 {
	return 0x14
}

func (p SetPlayerPosition) Encode(w *Writer) error {
	if err := w.EntityPosition(p.Pos); err != nil {
		return err
	}
	return w.Boolean(p.OnGround)
}

type SetPlayerPositionRotation struct {
	Pos      mgl64.Vec3
	Yaw      float32
	Pitch    float32
	OnGround bool
}

func (p SetPlayerPositionRotation) ID() int32 {
	return 0x15
}

func (p SetPlayerPositionRotation) Encode(w *Writer) error {
	if err := w.EntityPosition(p.Pos); err != nil {
		return err
	}
	if err := w.Rotation(Rotation{Yaw: p.Yaw, Pitch: p.Pitch}); err != nil {
		return err
	}
	return w.Boolean(p.OnGround)
}

type SetPlayerRotation struct {
	Yaw      float32
	Pitch    float32
	OnGround bool
}

func (p SetPlayerRotation) ID() int32 {
	return 0x16
}

func (p SetPlayerRotation) Encode(w *Writer) error {
	if err := w.Rotation(Rotation{Yaw: p.Yaw, Pitch: p.Pitch}); err != nil {
		return err
	}
	return w.Boolean(p.OnGround)
}
