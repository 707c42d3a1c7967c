package packet

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
)

type WriteFn[T any] func(io.Writer, T) error
type ReadFn[T any] func(ByteInput) (T, error)

// ByteInput is the read-side cursor primitive decoders consume from.
// FrameReader is the canonical implementation.
type ByteInput interface {
	io.ByteReader
	Read(n int) ([]byte, error)
}

func WriteBoolean(w io.Writer, v bool) (err error) {
	b := byte(0)
	if v {
		b = 1
	}

	_, err = w.Write([]byte{b})
	return
}

func ReadBoolean(r ByteInput) (v bool, err error) {
	b, err := r.ReadByte()
	if err != nil {
		return
	}

	if b == 0 {
		v = false
	} else if b == 1 {
		v = true
	} else {
		err = errors.New("invalid byte for Boolean field")
	}

	return
}

func WriteByte(w io.Writer, v byte) (err error) {
	_, err = w.Write([]byte{v})
	return
}

func ReadByte(r ByteInput) (v byte, err error) {
	b, err := r.ReadByte()
	return b, err
}

func WriteShort(w io.Writer, v int16) (err error) {
	return binary.Write(w, binary.BigEndian, v)
}

func ReadShort(r ByteInput) (v int16, err error) {
	b, err := r.Read(2)
	if err != nil {
		return
	}

	v = int16(binary.BigEndian.Uint16(b))
	return
}

func WriteUnsignedShort(w io.Writer, v uint16) (err error) {
	return binary.Write(w, binary.BigEndian, v)
}

func ReadUnsignedShort(r ByteInput) (v uint16, err error) {
	b, err := r.Read(2)
	if err != nil {
		return
	}

	v = binary.BigEndian.Uint16(b)
	return
}

func WriteInt(w io.Writer, v int32) (err error) {
	return binary.Write(w, binary.BigEndian, v)
}

func ReadInt(r ByteInput) (v int32, err error) {
	b, err := r.Read(4)
	if err != nil {
		return
	}

	v = int32(binary.BigEndian.Uint32(b))
	return
}

func WriteLong(w io.Writer, v int64) (err error) {
	return binary.Write(w, binary.BigEndian, v)
}

func ReadLong(r ByteInput) (v int64, err error) {
	b, err := r.Read(8)
	if err != nil {
		return
	}

	v = int64(binary.BigEndian.Uint64(b))
	return
}

func WriteFloat(w io.Writer, v float32) (err error) {
	return binary.Write(w, binary.BigEndian, math.Float32bits(v))
}

func ReadFloat(r ByteInput) (v float32, err error) {
	b, err := r.Read(4)
	if err != nil {
		return
	}

	v = math.Float32frombits(binary.BigEndian.Uint32(b))
	return
}

func WriteDouble(w io.Writer, v float64) (err error) {
	return binary.Write(w, binary.BigEndian, math.Float64bits(v))
}

func ReadDouble(r ByteInput) (v float64, err error) {
	b, err := r.Read(8)
	if err != nil {
		return
	}

	v = math.Float64frombits(binary.BigEndian.Uint64(b))
	return
}

var ErrVarIntTooLong = errors.New("VarInt is too long")

func WriteVarInt(w io.Writer, v int32) error {
	uv := uint32(v)
	for i := 0; ; i++ {
		b := byte(uv & 0x7F)
		uv >>= 7

		if uv != 0 {
			b |= 0x80
		}

		if _, err := w.Write([]byte{b}); err != nil {
			return err
		}

		if uv == 0 {
			return nil
		}
	}
}

func ReadVarInt(r io.ByteReader) (int32, error) {
	var v int32
	var shift uint

	for n := 0; n < 5; n++ {
		b, err := r.ReadByte()
		if err != nil {
			return v, err
		}

		segment := b & 0x7F
		v |= int32(segment) << shift

		shift += 7

		if (b & 0x80) == 0 {
			return v, nil
		}
	}
	return v, ErrVarIntTooLong
}

func WriteVarLong(w io.Writer, v int64) error {
	uv := uint64(v)
	for {
		b := byte(uv & 0x7F)
		uv >>= 7

		if uv != 0 {
			b |= 0x80
		}

		if _, err := w.Write([]byte{b}); err != nil {
			return err
		}

		if uv == 0 {
			return nil
		}
	}
}

func ReadVarLong(r io.ByteReader) (int64, error) {
	var v int64
	var shift uint

	for n := 0; n < 10; n++ {
		b, err := r.ReadByte()
		if err != nil {
			return v, err
		}

		segment := b & 0x7F
		v |= int64(segment) << shift

		shift += 7

		if (b & 0x80) == 0 {
			return v, nil
		}
	}
	return v, ErrVarIntTooLong
}

// MaxStringLen is the protocol's cap on a String field's encoded byte length.
const MaxStringLen = 32767

// maxPrefixedPrealloc bounds the up-front slice capacity a length prefix can
// demand before any element bytes have been read.
const maxPrefixedPrealloc = 4096

var (
	ErrStringTooLong  = errors.New("string exceeds maximum encoded length")
	ErrInvalidString  = errors.New("invalid String field")
	ErrNegativeLength = errors.New("negative length")
)

func WriteString(w io.Writer, v string) (err error) {
	if len(v) >= MaxStringLen {
		return ErrStringTooLong
	}
	err = WriteVarInt(w, int32(len(v)))
	if err != nil {
		return
	}
	_, err = w.Write([]byte(v))
	return
}

func ReadString(r ByteInput) (v string, err error) {
	length := int32(0)
	length, err = ReadVarInt(r)
	if err != nil {
		return
	}

	if length < 0 {
		err = ErrNegativeLength
		return
	}
	if length >= MaxStringLen {
		err = ErrStringTooLong
		return
	}

	buf, err := r.Read(int(length))
	if err != nil {
		return
	}
	if !utf8.Valid(buf) {
		err = ErrInvalidString
		return
	}
	return string(buf), nil
}

// Position's serialized form is composed of X, Z which are 26 bits each, and
// 12 bits of Y. Each field is sign-extended on decode so negative coordinates
// survive the round trip.
type Position struct {
	X int32
	Y int16
	Z int32
}

func WritePosition(w io.Writer, v Position) (err error) {
	packed := (uint64(uint32(v.X)&0x3FFFFFF) << 38) |
		(uint64(uint32(v.Z)&0x3FFFFFF) << 12) |
		uint64(uint16(v.Y)&0xFFF)

	err = binary.Write(w, binary.BigEndian, packed)
	return
}

func ReadPosition(r ByteInput) (v Position, err error) {
	b, err := r.Read(8)
	if err != nil {
		return
	}

	packed := binary.BigEndian.Uint64(b)

	v.X = int32(packed>>38) << 6 >> 6 // sign-extend 26 bits
	v.Z = int32(packed>>12&0x3FFFFFF) << 6 >> 6
	v.Y = int16(packed&0xFFF) << 4 >> 4 // sign-extend 12 bits
	return
}

var ErrInvalidUUID = errors.New("invalid UUID field")

func WriteUUID(w io.Writer, v uuid.UUID) (err error) {
	_, err = w.Write(v[:])
	return
}

func ReadUUID(r ByteInput) (v uuid.UUID, err error) {
	b, err := r.Read(16)
	if err != nil {
		err = ErrInvalidUUID
		return
	}

	v = uuid.UUID(b)
	return
}

// Angle is a rotation packed into one byte as 1/256ths of a full turn.
type Angle byte

func AngleFromDegrees(deg float32) Angle {
	steps := int(math.Round(float64(deg) / 360 * 256))
	return Angle(steps & 0xff)
}

func (a Angle) Degrees() float32 {
	return float32(a) * 360 / 256
}

func WriteAngle(w io.Writer, v Angle) (err error) {
	return WriteByte(w, byte(v))
}

func ReadAngle(r ByteInput) (v Angle, err error) {
	b, err := r.ReadByte()
	return Angle(b), err
}

func WritePrefixedArray[T any](w io.Writer, v []T, write WriteFn[T]) (err error) {
	err = WriteVarInt(w, int32(len(v)))
	if err != nil {
		return
	}

	for _, item := range v {
		err = write(w, item)
		if err != nil {
			return
		}
	}
	return
}

func ReadPrefixedArray[T any](r ByteInput, read ReadFn[T]) (v []T, err error) {
	length := int32(0)
	if length, err = ReadVarInt(r); err != nil {
		return
	}
	if length < 0 {
		err = ErrNegativeLength
		return
	}

	// A hostile prefix can claim up to 2^31-1 elements while the frame holds
	// almost nothing, so cap the up-front allocation and grow as elements
	// actually decode.
	v = make([]T, 0, min(int(length), maxPrefixedPrealloc))
	for i := int32(0); i < length; i++ {
		var item T
		if item, err = read(r); err != nil {
			return
		}
		v = append(v, item)
	}

	return
}

func WriteByteArray(w io.Writer, v []byte) (err error) {
	err = WriteVarInt(w, int32(len(v)))
	if err != nil {
		return
	}
	_, err = w.Write(v)
	return
}

func ReadByteArray(r ByteInput) (v []byte, err error) {
	length := int32(0)
	if length, err = ReadVarInt(r); err != nil {
		return
	}
	if length < 0 {
		err = ErrNegativeLength
		return
	}
	return r.Read(int(length))
}

// Optional[T] represents Optional field in a packet
//
// Serialized Optional[T] is prefixed with Boolean of whether the value exists.
// If so, the value T is followed.
type Optional[T any] struct {
	Exists bool
	Item   T
}

func WriteOptional[T any](w io.Writer, v Optional[T], write WriteFn[T]) (err error) {
	err = WriteBoolean(w, v.Exists)
	if err != nil {
		return
	}

	if v.Exists {
		err = write(w, v.Item)
	}
	return
}

func ReadOptional[T any](r ByteInput, read ReadFn[T]) (v Optional[T], err error) {
	if v.Exists, err = ReadBoolean(r); err != nil {
		return
	}

	if v.Exists {
		v.Item, err = read(r)
	}
	return
}
