package packet

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

var ErrInvalidNBT = errors.New("malformed NBT compound")

// Rotation is a pitch/yaw pair in degrees.
type Rotation struct {
	Yaw   float32
	Pitch float32
}

// Reader decodes typed protocol fields from a single packet's payload. The
// framing layer hands it the payload with the length prefix and packet id
// already consumed. Every read advances the cursor; reading past the payload
// fails with io.ErrUnexpectedEOF, which decoders propagate as a fatal decode
// failure for the packet.
type Reader struct {
	fr FrameReader
}

func NewReader(payload []byte) *Reader {
	return &Reader{fr: NewFrameReader(payload)}
}

// Remaining reports unread payload bytes. The dispatcher checks it after a
// decode to catch under-consuming decoders.
func (r *Reader) Remaining() int { return r.fr.Remaining() }

func (r *Reader) ReadByte() (byte, error)      { return r.fr.ReadByte() }
func (r *Reader) Read(n int) ([]byte, error)   { return r.fr.Read(n) }
func (r *Reader) Boolean() (bool, error)       { return ReadBoolean(&r.fr) }
func (r *Reader) Short() (int16, error)        { return ReadShort(&r.fr) }
func (r *Reader) UnsignedShort() (uint16, error) { return ReadUnsignedShort(&r.fr) }
func (r *Reader) Int() (int32, error)          { return ReadInt(&r.fr) }
func (r *Reader) Long() (int64, error)         { return ReadLong(&r.fr) }
func (r *Reader) Float() (float32, error)      { return ReadFloat(&r.fr) }
func (r *Reader) Double() (float64, error)     { return ReadDouble(&r.fr) }
func (r *Reader) VarInt() (int32, error)       { return ReadVarInt(&r.fr) }
func (r *Reader) VarLong() (int64, error)      { return ReadVarLong(&r.fr) }
func (r *Reader) String() (string, error)      { return ReadString(&r.fr) }
func (r *Reader) UUID() (uuid.UUID, error)     { return ReadUUID(&r.fr) }
func (r *Reader) Position() (Position, error)  { return ReadPosition(&r.fr) }
func (r *Reader) Angle() (Angle, error)        { return ReadAngle(&r.fr) }
func (r *Reader) ByteArray() ([]byte, error)   { return ReadByteArray(&r.fr) }

// EntityPosition reads three doubles: x, y, z.
func (r *Reader) EntityPosition() (pos mgl64.Vec3, err error) {
	for i := 0; i < 3; i++ {
		if pos[i], err = ReadDouble(&r.fr); err != nil {
			return
		}
	}
	return
}

// Rotation reads a yaw/pitch pair of floats. Packets that carry byte angles
// use AngleRotation instead.
func (r *Reader) Rotation() (rot Rotation, err error) {
	if rot.Yaw, err = ReadFloat(&r.fr); err != nil {
		return
	}
	rot.Pitch, err = ReadFloat(&r.fr)
	return
}

// AngleRotation reads a yaw/pitch pair encoded as 1/256-turn bytes.
func (r *Reader) AngleRotation() (rot Rotation, err error) {
	yaw, err := ReadAngle(&r.fr)
	if err != nil {
		return
	}
	pitch, err := ReadAngle(&r.fr)
	if err != nil {
		return
	}
	rot.Yaw = yaw.Degrees()
	rot.Pitch = pitch.Degrees()
	return
}

// NBT reads one NBT compound. A leading TAG_End byte stands for an absent
// compound and yields a nil map.
func (r *Reader) NBT() (map[string]any, error) {
	b, err := r.fr.ReadByte()
	if err != nil {
		return nil, err
	}
	if b == tagEnd {
		return nil, nil
	}
	r.fr.off-- // leave the type tag for the decoder

	var m map[string]any
	if err := nbt.NewDecoderWithEncoding(r.fr.Stream(), nbt.BigEndian).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNBT, err)
	}
	return m, nil
}

const tagEnd = 0x00

// Slot is an item stack: absent, or an item id with a count and optional NBT
// metadata carried through verbatim.
type Slot struct {
	Present bool
	ItemID  int32
	Count   byte
	NBT     map[string]any
}

func (r *Reader) Slot() (s Slot, err error) {
	if s.Present, err = ReadBoolean(&r.fr); err != nil {
		return
	}
	if !s.Present {
		return
	}
	if s.ItemID, err = ReadVarInt(&r.fr); err != nil {
		return
	}
	if s.Count, err = ReadByte(&r.fr); err != nil {
		return
	}
	s.NBT, err = r.NBT()
	return
}
