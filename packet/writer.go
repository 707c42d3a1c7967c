package packet

import (
	"bytes"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// Writer builds an outgoing packet's payload. Length preconditions (an
// over-length string) fail fast; everything else only fails if the underlying
// buffer does, which it doesn't.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the payload written so far. The slice is valid until the next
// write.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

func (w *Writer) Len() int { return w.buf.Len() }

func (w *Writer) Boolean(v bool) error        { return WriteBoolean(&w.buf, v) }
func (w *Writer) Byte(v byte) error           { return WriteByte(&w.buf, v) }
func (w *Writer) Short(v int16) error         { return WriteShort(&w.buf, v) }
func (w *Writer) UnsignedShort(v uint16) error { return WriteUnsignedShort(&w.buf, v) }
func (w *Writer) Int(v int32) error           { return WriteInt(&w.buf, v) }
func (w *Writer) Long(v int64) error          { return WriteLong(&w.buf, v) }
func (w *Writer) Float(v float32) error       { return WriteFloat(&w.buf, v) }
func (w *Writer) Double(v float64) error      { return WriteDouble(&w.buf, v) }
func (w *Writer) VarInt(v int32) error        { return WriteVarInt(&w.buf, v) }
func (w *Writer) VarLong(v int64) error       { return WriteVarLong(&w.buf, v) }
func (w *Writer) String(v string) error       { return WriteString(&w.buf, v) }
func (w *Writer) UUID(v uuid.UUID) error      { return WriteUUID(&w.buf, v) }
func (w *Writer) Position(v Position) error   { return WritePosition(&w.buf, v) }
func (w *Writer) Angle(v Angle) error         { return WriteAngle(&w.buf, v) }
func (w *Writer) ByteArray(v []byte) error    { return WriteByteArray(&w.buf, v) }

func (w *Writer) EntityPosition(pos mgl64.Vec3) error {
	for i := 0; i < 3; i++ {
		if err := WriteDouble(&w.buf, pos[i]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) Rotation(rot Rotation) error {
	if err := WriteFloat(&w.buf, rot.Yaw); err != nil {
		return err
	}
	return WriteFloat(&w.buf, rot.Pitch)
}

func (w *Writer) AngleRotation(rot Rotation) error {
	if err := WriteAngle(&w.buf, AngleFromDegrees(rot.Yaw)); err != nil {
		return err
	}
	return WriteAngle(&w.buf, AngleFromDegrees(rot.Pitch))
}

// NBT writes one NBT compound, or a lone TAG_End byte for a nil map.
func (w *Writer) NBT(m map[string]any) error {
	if m == nil {
		return WriteByte(&w.buf, tagEnd)
	}
	if err := nbt.NewEncoderWithEncoding(&w.buf, nbt.BigEndian).Encode(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNBT, err)
	}
	return nil
}

func (w *Writer) Slot(s Slot) error {
	if err := WriteBoolean(&w.buf, s.Present); err != nil {
		return err
	}
	if !s.Present {
		return nil
	}
	if err := WriteVarInt(&w.buf, s.ItemID); err != nil {
		return err
	}
	if err := WriteByte(&w.buf, s.Count); err != nil {
		return err
	}
	return w.NBT(s.NBT)
}
