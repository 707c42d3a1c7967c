package packet

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/gardenstoney/mc-client/event"
	"github.com/gardenstoney/mc-client/game"
	"github.com/gardenstoney/mc-client/world"
)

// deltaScale converts the short deltas of the entity move packets, which are
// in 1/4096ths of a block.
const deltaScale = 4096.0

type SpawnEntity struct {
	EntityID int32
	UUID     uuid.UUID
	Kind     int32
	Pos      mgl64.Vec3
	Pitch    Angle
	Yaw      Angle
	HeadYaw  Angle
	Data     int32
	Velocity [3]int16
}

func (p *SpawnEntity) ID() int32 {
	return 0x01
}

func (p *SpawnEntity) Decode(r *Reader) (err error) {
	if p.EntityID, err = r.VarInt(); err != nil {
		return
	}
	if p.UUID, err = r.UUID(); err != nil {
		return
	}
	if p.Kind, err = r.VarInt(); err != nil {
		return
	}
	if p.Pos, err = r.EntityPosition(); err != nil {
		return
	}
	if p.Pitch, err = r.Angle(); err != nil {
		return
	}
	if p.Yaw, err = r.Angle(); err != nil {
		return
	}
	if p.HeadYaw, err = r.Angle(); err != nil {
		return
	}
	if p.Data, err = r.VarInt(); err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		if p.Velocity[i], err = r.Short(); err != nil {
			return
		}
	}
	return
}

func (p *SpawnEntity) Handle(s *game.Session) error {
	s.World.AddEntity(world.Entity{
		ID:    p.EntityID,
		UUID:  p.UUID,
		Kind:  p.Kind,
		Pos:   p.Pos,
		Yaw:   p.Yaw.Degrees(),
		Pitch: p.Pitch.Degrees(),
	})
	s.Emit(event.EntitySpawned{EntityID: p.EntityID, UUID: p.UUID, Kind: p.Kind, Pos: p.Pos})
	return nil
}

type SpawnPlayer struct {
	EntityID int32
	UUID     uuid.UUID
	Pos      mgl64.Vec3
	Yaw      Angle
	Pitch    Angle
}

func (p *SpawnPlayer) ID() int32 {
	return 0x03
}

func (p *SpawnPlayer) Decode(r *Reader) (err error) {
	if p.EntityID, err = r.VarInt(); err != nil {
		return
	}
	if p.UUID, err = r.UUID(); err != nil {
		return
	}
	if p.Pos, err = r.EntityPosition(); err != nil {
		return
	}
	if p.Yaw, err = r.Angle(); err != nil {
		return
	}
	p.Pitch, err = r.Angle()
	return
}

func (p *SpawnPlayer) Handle(s *game.Session) error {
	s.World.AddEntity(world.Entity{
		ID:    p.EntityID,
		UUID:  p.UUID,
		Pos:   p.Pos,
		Yaw:   p.Yaw.Degrees(),
		Pitch: p.Pitch.Degrees(),
	})
	s.Emit(event.EntitySpawned{EntityID: p.EntityID, UUID: p.UUID, Pos: p.Pos})
	return nil
}

type BlockUpdate struct {
	Location Position
	State    int32
}

func (p *BlockUpdate) ID() int32 {
	return 0x09
}

func (p *BlockUpdate) Decode(r *Reader) (err error) {
	if p.Location, err = r.Position(); err != nil {
		return
	}
	p.State, err = r.VarInt()
	return
}

func (p *BlockUpdate) Handle(s *game.Session) error {
	// Updates for columns that are not resident are dropped; the server
	// re-sends whole columns when they come back into range.
	s.World.SetBlock(p.Location.X, p.Location.Y, p.Location.Z, p.State)
	s.Emit(event.BlockChanged{
		X: p.Location.X, Y: p.Location.Y, Z: p.Location.Z,
		State: p.State,
	})
	return nil
}

type SetContainerSlot struct {
	WindowID byte
	StateID  int32
	SlotNum  int16
	Data     Slot
}

func (p *SetContainerSlot) ID() int32 {
	return 0x14
}

func (p *SetContainerSlot) Decode(r *Reader) (err error) {
	if p.WindowID, err = r.ReadByte(); err != nil {
		return
	}
	if p.StateID, err = r.VarInt(); err != nil {
		return
	}
	if p.SlotNum, err = r.Short(); err != nil {
		return
	}
	p.Data, err = r.Slot()
	return
}

func (p *SetContainerSlot) Handle(s *game.Session) error {
	if p.WindowID != 0 {
		// Only the player inventory is modeled.
		return nil
	}
	if !p.Data.Present {
		s.SetSlot(p.SlotNum, nil)
		return nil
	}
	s.SetSlot(p.SlotNum, &game.Item{ID: p.Data.ItemID, Count: p.Data.Count, NBT: p.Data.NBT})
	return nil
}

type PlayDisconnect struct {
	Reason string
}

func (p *PlayDisconnect) ID() int32 {
	return 0x1A
}

func (p *PlayDisconnect) Decode(r *Reader) (err error) {
	p.Reason, err = r.String()
	return
}

func (p *PlayDisconnect) Handle(s *game.Session) error {
	s.Emit(event.Disconnected{Reason: p.Reason})
	return nil
}

func (p *PlayDisconnect) NextPhase() game.Phase {
	return game.PhaseClosed
}

// KeepAlive must be echoed back within the server's timeout or the server
// drops the connection.
type KeepAlive struct {
	Nonce int64
}

func (p *KeepAlive) ID() int32 {
	return 0x23
}

func (p *KeepAlive) Decode(r *Reader) (err error) {
	p.Nonce, err = r.Long()
	return
}

func (p *KeepAlive) Handle(s *game.Session) error {
	frame, err := Marshal(KeepAliveServerbound{Nonce: p.Nonce})
	if err != nil {
		return err
	}
	s.Reply(frame)
	return nil
}

type BlockEntity struct {
	PackedXZ byte
	Y        int16
	Kind     int32
	Data     map[string]any
}

// ChunkData delivers one 16x16 column: heightmap NBT, the section blob, block
// entities, and the light arrays. The section blob is kept opaque here; the
// world model owns its storage.
type ChunkData struct {
	X             int32
	Z             int32
	Heightmaps    map[string]any
	Sections      []byte
	BlockEntities []BlockEntity

	SkyLightMask    []int64
	BlockLightMask  []int64
	EmptySkyMask    []int64
	EmptyBlockMask  []int64
	SkyLightArrays  [][]byte
	BlockLightArrays [][]byte
}

func (p *ChunkData) ID() int32 {
	return 0x24
}

func (p *ChunkData) Decode(r *Reader) (err error) {
	if p.X, err = r.Int(); err != nil {
		return
	}
	if p.Z, err = r.Int(); err != nil {
		return
	}
	if p.Heightmaps, err = r.NBT(); err != nil {
		return
	}
	if p.Sections, err = r.ByteArray(); err != nil {
		return
	}

	count, err := r.VarInt()
	if err != nil {
		return
	}
	if count < 0 {
		return ErrNegativeLength
	}
	// Each block entity occupies at least 8 bytes on the wire, so a hostile
	// count cannot demand more memory than the frame can back.
	p.BlockEntities = make([]BlockEntity, 0, min(int(count), r.Remaining()/8))
	for i := int32(0); i < count; i++ {
		var be BlockEntity
		if be.PackedXZ, err = r.ReadByte(); err != nil {
			return
		}
		if be.Y, err = r.Short(); err != nil {
			return
		}
		if be.Kind, err = r.VarInt(); err != nil {
			return
		}
		if be.Data, err = r.NBT(); err != nil {
			return
		}
		p.BlockEntities = append(p.BlockEntities, be)
	}

	if p.SkyLightMask, err = ReadPrefixedArray(r, ReadLong); err != nil {
		return
	}
	if p.BlockLightMask, err = ReadPrefixedArray(r, ReadLong); err != nil {
		return
	}
	if p.EmptySkyMask, err = ReadPrefixedArray(r, ReadLong); err != nil {
		return
	}
	if p.EmptyBlockMask, err = ReadPrefixedArray(r, ReadLong); err != nil {
		return
	}
	if p.SkyLightArrays, err = ReadPrefixedArray(r, ReadByteArray); err != nil {
		return
	}
	p.BlockLightArrays, err = ReadPrefixedArray(r, ReadByteArray)
	return
}

func (p *ChunkData) Handle(s *game.Session) error {
	s.World.SetChunk(world.ChunkPos{X: p.X, Z: p.Z}, p.Heightmaps, p.Sections)
	s.Emit(event.ChunkReceived{X: p.X, Z: p.Z})
	return nil
}

type DeathLocation struct {
	Dimension string
	Location  Position
}

// JoinGame admits the player into the world and carries the dimension
// registry.
type JoinGame struct {
	EntityID            int32
	Hardcore            bool
	Gamemode            byte
	PreviousGamemode    int8
	DimensionNames      []string
	RegistryCodec       map[string]any
	DimensionType       string
	DimensionName       string
	HashedSeed          int64
	MaxPlayers          int32
	ViewDistance        int32
	SimulationDistance  int32
	ReducedDebugInfo    bool
	EnableRespawnScreen bool
	Debug               bool
	Flat                bool
	Death               Optional[DeathLocation]
	PortalCooldown      int32
}

func (p *JoinGame) ID() int32 {
	return 0x28
}

func (p *JoinGame) Decode(r *Reader) (err error) {
	if p.EntityID, err = r.Int(); err != nil {
		return
	}
	if p.Hardcore, err = r.Boolean(); err != nil {
		return
	}
	if p.Gamemode, err = r.ReadByte(); err != nil {
		return
	}
	prev, err := r.ReadByte()
	if err != nil {
		return
	}
	p.PreviousGamemode = int8(prev)
	if p.DimensionNames, err = ReadPrefixedArray(r, ReadString); err != nil {
		return
	}
	if p.RegistryCodec, err = r.NBT(); err != nil {
		return
	}
	if p.DimensionType, err = r.String(); err != nil {
		return
	}
	if p.DimensionName, err = r.String(); err != nil {
		return
	}
	if p.HashedSeed, err = r.Long(); err != nil {
		return
	}
	if p.MaxPlayers, err = r.VarInt(); err != nil {
		return
	}
	if p.ViewDistance, err = r.VarInt(); err != nil {
		return
	}
	if p.SimulationDistance, err = r.VarInt(); err != nil {
		return
	}
	if p.ReducedDebugInfo, err = r.Boolean(); err != nil {
		return
	}
	if p.EnableRespawnScreen, err = r.Boolean(); err != nil {
		return
	}
	if p.Debug, err = r.Boolean(); err != nil {
		return
	}
	if p.Flat, err = r.Boolean(); err != nil {
		return
	}
	if p.Death, err = ReadOptional(r, func(r ByteInput) (d DeathLocation, err error) {
		if d.Dimension, err = ReadString(r); err != nil {
			return
		}
		d.Location, err = ReadPosition(r)
		return
	}); err != nil {
		return
	}
	p.PortalCooldown, err = r.VarInt()
	return
}

func (p *JoinGame) Handle(s *game.Session) error {
	s.EntityID = p.EntityID
	s.Emit(event.GameJoined{
		EntityID:  p.EntityID,
		Gamemode:  p.Gamemode,
		Hardcore:  p.Hardcore,
		Dimension: p.DimensionName,
	})
	return nil
}

type UpdateEntityPosition struct {
	EntityID int32
	Delta    [3]int16
	OnGround bool
}

func (p *UpdateEntityPosition) ID() int32 {
	return 0x2B
}

func (p *UpdateEntityPosition) Decode(r *Reader) (err error) {
	if p.EntityID, err = r.VarInt(); err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		if p.Delta[i], err = r.Short(); err != nil {
			return
		}
	}
	p.OnGround, err = r.Boolean()
	return
}

func (p *UpdateEntityPosition) delta() mgl64.Vec3 {
	return mgl64.Vec3{
		float64(p.Delta[0]) / deltaScale,
		float64(p.Delta[1]) / deltaScale,
		float64(p.Delta[2]) / deltaScale,
	}
}

func (p *UpdateEntityPosition) Handle(s *game.Session) error {
	pos, err := s.World.NudgeEntity(p.EntityID, p.delta())
	if err != nil {
		return err
	}
	s.Emit(event.EntityMoved{EntityID: p.EntityID, Pos: pos})
	return nil
}

type UpdateEntityPositionRotation struct {
	EntityID int32
	Delta    [3]int16
	Yaw      Angle
	Pitch    Angle
	OnGround bool
}

func (p *UpdateEntityPositionRotation) ID() int32 {
	return 0x2C
}

func (p *UpdateEntityPositionRotation) Decode(r *Reader) (err error) {
	if p.EntityID, err = r.VarInt(); err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		if p.Delta[i], err = r.Short(); err != nil {
			return
		}
	}
	if p.Yaw, err = r.Angle(); err != nil {
		return
	}
	if p.Pitch, err = r.Angle(); err != nil {
		return
	}
	p.OnGround, err = r.Boolean()
	return
}

func (p *UpdateEntityPositionRotation) Handle(s *game.Session) error {
	delta := mgl64.Vec3{
		float64(p.Delta[0]) / deltaScale,
		float64(p.Delta[1]) / deltaScale,
		float64(p.Delta[2]) / deltaScale,
	}
	pos, err := s.World.NudgeEntity(p.EntityID, delta)
	if err != nil {
		return err
	}
	if err := s.World.RotateEntity(p.EntityID, p.Yaw.Degrees(), p.Pitch.Degrees()); err != nil {
		return err
	}
	s.Emit(event.EntityMoved{EntityID: p.EntityID, Pos: pos})
	return nil
}

type UpdateEntityRotation struct {
	EntityID int32
	Yaw      Angle
	Pitch    Angle
	OnGround bool
}

func (p *UpdateEntityRotation) ID() int32 {
	return 0x2D
}

func (p *UpdateEntityRotation) Decode(r *Reader) (err error) {
	if p.EntityID, err = r.VarInt(); err != nil {
		return
	}
	if p.Yaw, err = r.Angle(); err != nil {
		return
	}
	if p.Pitch, err = r.Angle(); err != nil {
		return
	}
	p.OnGround, err = r.Boolean()
	return
}

func (p *UpdateEntityRotation) Handle(s *game.Session) error {
	return s.World.RotateEntity(p.EntityID, p.Yaw.Degrees(), p.Pitch.Degrees())
}

// SyncPlayerPosition is the server forcibly repositioning the player. Each
// flag bit marks the matching field as a relative offset instead of an
// absolute value. The client must confirm with the teleport id.
type SyncPlayerPosition struct {
	Pos        mgl64.Vec3
	Yaw        float32
	Pitch      float32
	Flags      byte
	TeleportID int32
}

const (
	relX = 1 << iota
	relY
	relZ
	relYaw
	relPitch
)

func (p *SyncPlayerPosition) ID() int32 {
	return 0x3C
}

func (p *SyncPlayerPosition) Decode(r *Reader) (err error) {
	if p.Pos, err = r.EntityPosition(); err != nil {
		return
	}
	if p.Yaw, err = r.Float(); err != nil {
		return
	}
	if p.Pitch, err = r.Float(); err != nil {
		return
	}
	if p.Flags, err = r.ReadByte(); err != nil {
		return
	}
	p.TeleportID, err = r.VarInt()
	return
}

func (p *SyncPlayerPosition) Handle(s *game.Session) error {
	pos := p.Pos
	if p.Flags&relX != 0 {
		pos[0] += s.Pos[0]
	}
	if p.Flags&relY != 0 {
		pos[1] += s.Pos[1]
	}
	if p.Flags&relZ != 0 {
		pos[2] += s.Pos[2]
	}
	yaw, pitch := p.Yaw, p.Pitch
	if p.Flags&relYaw != 0 {
		yaw += s.Yaw
	}
	if p.Flags&relPitch != 0 {
		pitch += s.Pitch
	}
	s.Pos, s.Yaw, s.Pitch = pos, yaw, pitch

	frame, err := Marshal(ConfirmTeleportation{TeleportID: p.TeleportID})
	if err != nil {
		return err
	}
	s.Reply(frame)
	s.Emit(event.PlayerPositionSynced{Pos: pos, Yaw: yaw, Pitch: pitch})
	return nil
}

type RemoveEntities struct {
	EntityIDs []int32
}

func (p *RemoveEntities) ID() int32 {
	return 0x3E
}

func (p *RemoveEntities) Decode(r *Reader) (err error) {
	p.EntityIDs, err = ReadPrefixedArray(r, func(r ByteInput) (int32, error) {
		return ReadVarInt(r)
	})
	return
}

func (p *RemoveEntities) Handle(s *game.Session) error {
	for _, id := range p.EntityIDs {
		s.World.RemoveEntity(id)
		s.Emit(event.EntityRemoved{EntityID: id})
	}
	return nil
}

type SetDefaultSpawn struct {
	Location Position
	Angle    float32
}

func (p *SetDefaultSpawn) ID() int32 {
	return 0x50
}

func (p *SetDefaultSpawn) Decode(r *Reader) (err error) {
	if p.Location, err = r.Position(); err != nil {
		return
	}
	p.Angle, err = r.Float()
	return
}

func (p *SetDefaultSpawn) Handle(s *game.Session) error {
	s.SpawnX, s.SpawnY, s.SpawnZ = p.Location.X, p.Location.Y, p.Location.Z
	return nil
}

type SetHealth struct {
	Health     float32
	Food       int32
	Saturation float32
}

func (p *SetHealth) ID() int32 {
	return 0x57
}

func (p *SetHealth) Decode(r *Reader) (err error) {
	if p.Health, err = r.Float(); err != nil {
		return
	}
	if p.Food, err = r.VarInt(); err != nil {
		return
	}
	p.Saturation, err = r.Float()
	return
}

func (p *SetHealth) Handle(s *game.Session) error {
	s.Health = p.Health
	s.Food = p.Food
	s.Saturation = p.Saturation
	s.Emit(event.HealthChanged{Health: p.Health, Food: p.Food, Saturation: p.Saturation})
	return nil
}

type UpdateTime struct {
	WorldAge  int64
	TimeOfDay int64
}

func (p *UpdateTime) ID() int32 {
	return 0x5E
}

func (p *UpdateTime) Decode(r *Reader) (err error) {
	if p.WorldAge, err = r.Long(); err != nil {
		return
	}
	p.TimeOfDay, err = r.Long()
	return
}

func (p *UpdateTime) Handle(s *game.Session) error {
	s.Emit(event.TimeUpdated{WorldAge: p.WorldAge, TimeOfDay: p.TimeOfDay})
	return nil
}

// SystemChat carries a non-player message as a JSON text component.
type SystemChat struct {
	Content string
	Overlay bool
}

func (p *SystemChat) ID() int32 {
	return 0x64
}

func (p *SystemChat) Decode(r *Reader) (err error) {
	if p.Content, err = r.String(); err != nil {
		return
	}
	p.Overlay, err = r.Boolean()
	return
}

func (p *SystemChat) Handle(s *game.Session) error {
	s.Emit(event.Chat{Content: p.Content, Overlay: p.Overlay})
	return nil
}

type TeleportEntity struct {
	EntityID int32
	Pos      mgl64.Vec3
	Yaw      Angle
	Pitch    Angle
	OnGround bool
}

func (p *TeleportEntity) ID() int32 {
	return 0x68
}

func (p *TeleportEntity) Decode(r *Reader) (err error) {
	if p.EntityID, err = r.VarInt(); err != nil {
		return
	}
	if p.Pos, err = r.EntityPosition(); err != nil {
		return
	}
	if p.Yaw, err = r.Angle(); err != nil {
		return
	}
	if p.Pitch, err = r.Angle(); err != nil {
		return
	}
	p.OnGround, err = r.Boolean()
	return
}

func (p *TeleportEntity) Handle(s *game.Session) error {
	if err := s.World.MoveEntity(p.EntityID, p.Pos, p.Yaw.Degrees(), p.Pitch.Degrees(), true); err != nil {
		return err
	}
	s.Emit(event.EntityMoved{EntityID: p.EntityID, Pos: p.Pos})
	return nil
}
