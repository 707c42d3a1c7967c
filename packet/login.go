package packet

import (
	"errors"

	"github.com/google/uuid"

	"github.com/gardenstoney/mc-client/event"
	"github.com/gardenstoney/mc-client/game"
)

// LoginStart opens the login sequence. The UUID is optional in protocol 763;
// offline-mode servers derive one from the name when it is absent.
type LoginStart struct {
	Name       string
	PlayerUUID Optional[uuid.UUID]
}

func (p LoginStart) ID() int32 {
	return 0x00
}

func (p LoginStart) Encode(w *Writer) error {
	if err := w.String(p.Name); err != nil {
		return err
	}
	return WriteOptional(&w.buf, p.PlayerUUID, WriteUUID)
}

// LoginDisconnect is the server refusing the login with a JSON text reason.
type LoginDisconnect struct {
	Reason string
}

func (p *LoginDisconnect) ID() int32 {
	return 0x00
}

func (p *LoginDisconnect) Decode(r *Reader) (err error) {
	p.Reason, err = r.String()
	return
}

func (p *LoginDisconnect) Handle(s *game.Session) error {
	s.Emit(event.Disconnected{Reason: p.Reason})
	return nil
}

func (p *LoginDisconnect) NextPhase() game.Phase {
	return game.PhaseClosed
}

// ErrEncryptionUnsupported reports an online-mode server. This client only
// speaks the offline-mode login sequence.
var ErrEncryptionUnsupported = errors.New("server requested protocol encryption, which is not supported")

type EncryptionRequest struct {
	ServerID    string
	PublicKey   []byte
	VerifyToken []byte
	ShouldAuth  bool
}

func (p *EncryptionRequest) ID() int32 {
	return 0x01
}

func (p *EncryptionRequest) Decode(r *Reader) (err error) {
	if p.ServerID, err = r.String(); err != nil {
		return
	}
	if p.PublicKey, err = r.ByteArray(); err != nil {
		return
	}
	if p.VerifyToken, err = r.ByteArray(); err != nil {
		return
	}
	p.ShouldAuth, err = r.Boolean()
	return
}

func (p *EncryptionRequest) Handle(s *game.Session) error {
	return ErrEncryptionUnsupported
}

type GameProfileProperty struct {
	Name      string
	Value     string
	Signature Optional[string]
}

func readGameProfileProperty(r ByteInput) (v GameProfileProperty, err error) {
	if v.Name, err = ReadString(r); err != nil {
		return
	}
	if v.Value, err = ReadString(r); err != nil {
		return
	}
	v.Signature, err = ReadOptional(r, ReadString)
	return
}

// LoginSuccess completes the login and moves the connection to the play
// phase.
type LoginSuccess struct {
	UUID       uuid.UUID
	Username   string
	Properties []GameProfileProperty
}

func (p *LoginSuccess) ID() int32 {
	return 0x02
}

func (p *LoginSuccess) Decode(r *Reader) (err error) {
	if p.UUID, err = r.UUID(); err != nil {
		return
	}
	if p.Username, err = r.String(); err != nil {
		return
	}
	p.Properties, err = ReadPrefixedArray(&r.fr, readGameProfileProperty)
	return
}

func (p *LoginSuccess) Handle(s *game.Session) error {
	s.UUID = p.UUID
	s.Username = p.Username
	return nil
}

func (p *LoginSuccess) NextPhase() game.Phase {
	return game.PhasePlay
}

// SetCompression announces the threshold above which frame payloads are
// zlib-compressed. The framing layer applies it before the next frame.
type SetCompression struct {
	CompressionThreshold int32
}

func (p *SetCompression) ID() int32 {
	return 0x03
}

func (p *SetCompression) Decode(r *Reader) (err error) {
	p.CompressionThreshold, err = r.VarInt()
	return
}

func (p *SetCompression) Handle(s *game.Session) error {
	return nil
}

func (p *SetCompression) Threshold() int32 {
	return p.CompressionThreshold
}
