package packet

import (
	"errors"
	"fmt"

	"github.com/gardenstoney/mc-client/game"
)

var (
	// ErrUnknownPacket reports an id with no decoder in any phase. The
	// connection may tolerate it by skipping the frame.
	ErrUnknownPacket = errors.New("unknown packet id")
	// ErrIllegalPhase reports an id that has a decoder, just not in the
	// current phase. That is a protocol violation and fatal.
	ErrIllegalPhase = errors.New("packet id not valid in current phase")
	// ErrTrailingBytes reports a decoder that consumed less than the full
	// payload: a decoder bug or a protocol version mismatch, fatal either
	// way.
	ErrTrailingBytes = errors.New("trailing payload bytes after decode")
)

// clientbound maps (phase, id) to packet factories. Registration is static:
// the full table for the protocol version is built at init time.
var clientbound = map[game.Phase]map[int32]func() Clientbound{}

func register(phase game.Phase, factory func() Clientbound) {
	m, ok := clientbound[phase]
	if !ok {
		m = make(map[int32]func() Clientbound)
		clientbound[phase] = m
	}
	id := factory().ID()
	if _, dup := m[id]; dup {
		panic(fmt.Sprintf("packet: duplicate clientbound id 0x%02X in %s", id, phase))
	}
	m[id] = factory
}

func init() {
	register(game.PhaseStatus, func() Clientbound { return &StatusResponse{} })
	register(game.PhaseStatus, func() Clientbound { return &PingResponse{} })

	register(game.PhaseLogin, func() Clientbound { return &LoginDisconnect{} })
	register(game.PhaseLogin, func() Clientbound { return &EncryptionRequest{} })
	register(game.PhaseLogin, func() Clientbound { return &LoginSuccess{} })
	register(game.PhaseLogin, func() Clientbound { return &SetCompression{} })

	register(game.PhasePlay, func() Clientbound { return &SpawnEntity{} })
	register(game.PhasePlay, func() Clientbound { return &SpawnPlayer{} })
	register(game.PhasePlay, func() Clientbound { return &BlockUpdate{} })
	register(game.PhasePlay, func() Clientbound { return &SetContainerSlot{} })
	register(game.PhasePlay, func() Clientbound { return &PlayDisconnect{} })
	register(game.PhasePlay, func() Clientbound { return &KeepAlive{} })
	register(game.PhasePlay, func() Clientbound { return &ChunkData{} })
	register(game.PhasePlay, func() Clientbound { return &JoinGame{} })
	register(game.PhasePlay, func() Clientbound { return &UpdateEntityPosition{} })
	register(game.PhasePlay, func() Clientbound { return &UpdateEntityPositionRotation{} })
	register(game.PhasePlay, func() Clientbound { return &UpdateEntityRotation{} })
	register(game.PhasePlay, func() Clientbound { return &SyncPlayerPosition{} })
	register(game.PhasePlay, func() Clientbound { return &RemoveEntities{} })
	register(game.PhasePlay, func() Clientbound { return &SetDefaultSpawn{} })
	register(game.PhasePlay, func() Clientbound { return &SetHealth{} })
	register(game.PhasePlay, func() Clientbound { return &UpdateTime{} })
	register(game.PhasePlay, func() Clientbound { return &SystemChat{} })
	register(game.PhasePlay, func() Clientbound { return &TeleportEntity{} })
}

// Lookup resolves a clientbound packet id against the current phase. An id
// registered in a different phase is ErrIllegalPhase; an id registered
// nowhere is ErrUnknownPacket.
func Lookup(phase game.Phase, id int32) (func() Clientbound, error) {
	if factory, ok := clientbound[phase][id]; ok {
		return factory, nil
	}
	for p, m := range clientbound {
		if p == phase {
			continue
		}
		if _, ok := m[id]; ok {
			return nil, fmt.Errorf("%w: id 0x%02X in %s", ErrIllegalPhase, id, phase)
		}
	}
	return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownPacket, id)
}

// Decode resolves and decodes one clientbound packet from a payload. It
// enforces full payload consumption: a decoder leaving bytes behind signals a
// version mismatch and is reported, not resynced over.
func Decode(phase game.Phase, id int32, payload []byte) (Clientbound, error) {
	factory, err := Lookup(phase, id)
	if err != nil {
		return nil, err
	}
	pk := factory()
	r := NewReader(payload)
	if err := pk.Decode(r); err != nil {
		return nil, fmt.Errorf("decode %T: %w", pk, err)
	}
	if n := r.Remaining(); n != 0 {
		return nil, fmt.Errorf("decode %T: %w (%d)", pk, ErrTrailingBytes, n)
	}
	return pk, nil
}
