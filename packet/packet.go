package packet

import (
	"github.com/gardenstoney/mc-client/game"
)

// ProtocolVersion is the Java protocol version this package implements.
const ProtocolVersion = 763

type Packet interface {
	ID() int32
}

// Serverbound packets serialize themselves onto a payload writer. Encode only
// fails on a violated length precondition, which is a programmer error.
type Serverbound interface {
	Packet
	Encode(w *Writer) error
}

// Clientbound packets decode themselves from a payload reader and then apply
// their effect against shared client state. Decode either fills every field
// or fails; a partially-populated packet is never handled. Handle runs on the
// dispatch loop, exactly once per decoded packet, and never performs network
// I/O: outbound replies go through Session.Reply.
type Clientbound interface {
	Packet
	Decode(r *Reader) error
	Handle(s *game.Session) error
}

// PhaseChanger is implemented by clientbound packets whose arrival moves the
// connection to a new phase. The read loop applies the transition before
// decoding the next frame, so the id namespace switches at the exact packet
// boundary.
type PhaseChanger interface {
	NextPhase() game.Phase
}

// CompressionUpdater is implemented by packets that change the connection's
// compression threshold. Like phase changes, the framing layer has to apply
// it before the next frame is read.
type CompressionUpdater interface {
	Threshold() int32
}

// Marshal encodes a serverbound packet into a frame body: packet id varint
// followed by the payload. The framing layer adds the length prefix.
func Marshal(p Serverbound) ([]byte, error) {
	w := NewWriter()
	if err := w.VarInt(p.ID()); err != nil {
		return nil, err
	}
	if err := p.Encode(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Handshake switches the connection out of the handshake phase. NextState is
// 1 for a status query, 2 for login.
type Handshake struct {
	ProtocolVersion int32
	ServerAddr      string
	ServerPort      uint16
	NextState       int32
}

func (p Handshake) ID() int32 {
	return 0x00
}

func (p Handshake) Encode(w *Writer) error {
	if err := w.VarInt(p.ProtocolVersion); err != nil {
		return err
	}
	if err := w.String(p.ServerAddr); err != nil {
		return err
	}
	if err := w.UnsignedShort(p.ServerPort); err != nil {
		return err
	}
	return w.VarInt(p.NextState)
}
