package protocol

import "fmt"

// Packet is implemented by every concrete wire packet type.
type Packet interface {
	Opcode() Opcode
	Encode(w *Writer)
}

// IncludePlayerName controls whether NamedEntitySpawn carries the
// player's username on the wire. Earlier Notchian server
// implementations dropped the name field entirely, which does not
// match what a protocol-8 client expects; this implementation defaults
// to the wire-correct shape and keeps the toggle only so a test can
// exercise that legacy, name-less shape.
var IncludePlayerName = true

// --- 0x00 KeepAlive ---------------------------------------------------

type KeepAlive struct{}

func (KeepAlive) Opcode() Opcode   { return OpKeepAlive }
func (KeepAlive) Encode(w *Writer) {}

func DecodeKeepAlive(r *Reader) (KeepAlive, error) { return KeepAlive{}, nil }

// --- 0x01 LoginRequest --------------------------------------------------

// LoginRequestC2S is the client->server shape of LoginRequest.
type LoginRequestC2S struct {
	ProtocolVersion int32
	Username        string
	Password        string
}

func (LoginRequestC2S) Opcode() Opcode { return OpLoginRequest }
func (p LoginRequestC2S) Encode(w *Writer) {
	w.I32(p.ProtocolVersion)
	w.String(p.Username)
	w.String(p.Password)
}

func DecodeLoginRequestC2S(r *Reader) (LoginRequestC2S, error) {
	var p LoginRequestC2S
	var err error
	if p.ProtocolVersion, err = r.I32(); err != nil {
		return p, err
	}
	if p.Username, err = r.String(); err != nil {
		return p, err
	}
	if p.Password, err = r.String(); err != nil {
		return p, err
	}
	return p, nil
}

// LoginRequestS2C is the server->client shape of LoginRequest.
type LoginRequestS2C struct {
	EntityID   int32
	LevelType  string // always "" on the wire
	ServerMode string // always "" on the wire
	MapSeed    int64
	Dimension  int8
}

func (LoginRequestS2C) Opcode() Opcode { return OpLoginRequest }
func (p LoginRequestS2C) Encode(w *Writer) {
	w.I32(p.EntityID)
	w.String(p.LevelType)
	w.String(p.ServerMode)
	w.I64(p.MapSeed)
	w.I8(p.Dimension)
}

func DecodeLoginRequestS2C(r *Reader) (LoginRequestS2C, error) {
	var p LoginRequestS2C
	var err error
	if p.EntityID, err = r.I32(); err != nil {
		return p, err
	}
	if p.LevelType, err = r.String(); err != nil {
		return p, err
	}
	if p.ServerMode, err = r.String(); err != nil {
		return p, err
	}
	if p.MapSeed, err = r.I64(); err != nil {
		return p, err
	}
	if p.Dimension, err = r.I8(); err != nil {
		return p, err
	}
	return p, nil
}

// --- 0x02 Handshake -------------------------------------------------

type HandshakeC2S struct {
	Username string
}

func (HandshakeC2S) Opcode() Opcode     { return OpHandshake }
func (p HandshakeC2S) Encode(w *Writer) { w.String(p.Username) }

func DecodeHandshakeC2S(r *Reader) (HandshakeC2S, error) {
	s, err := r.String()
	return HandshakeC2S{Username: s}, err
}

type HandshakeS2C struct {
	ConnectionHash string
}

func (HandshakeS2C) Opcode() Opcode     { return OpHandshake }
func (p HandshakeS2C) Encode(w *Writer) { w.String(p.ConnectionHash) }

func DecodeHandshakeS2C(r *Reader) (HandshakeS2C, error) {
	s, err := r.String()
	return HandshakeS2C{ConnectionHash: s}, err
}

// --- 0x03 ChatMessage -------------------------------------------------

type ChatMessage struct {
	Message string
}

func (ChatMessage) Opcode() Opcode     { return OpChatMessage }
func (p ChatMessage) Encode(w *Writer) { w.String(p.Message) }

func DecodeChatMessage(r *Reader) (ChatMessage, error) {
	s, err := r.String()
	return ChatMessage{Message: s}, err
}

// --- 0x04 TimeUpdate ----------------------------------------------------

type TimeUpdate struct {
	Time int64
}

func (TimeUpdate) Opcode() Opcode     { return OpTimeUpdate }
func (p TimeUpdate) Encode(w *Writer) { w.I64(p.Time) }

func DecodeTimeUpdate(r *Reader) (TimeUpdate, error) {
	v, err := r.I64()
	return TimeUpdate{Time: v}, err
}

// --- 0x06 SpawnPosition -------------------------------------------------

type SpawnPosition struct {
	X, Y, Z int32
}

func (SpawnPosition) Opcode() Opcode { return OpSpawnPosition }
func (p SpawnPosition) Encode(w *Writer) {
	w.I32(p.X)
	w.I32(p.Y)
	w.I32(p.Z)
}

func DecodeSpawnPosition(r *Reader) (SpawnPosition, error) {
	var p SpawnPosition
	var err error
	if p.X, err = r.I32(); err != nil {
		return p, err
	}
	if p.Y, err = r.I32(); err != nil {
		return p, err
	}
	if p.Z, err = r.I32(); err != nil {
		return p, err
	}
	return p, nil
}

// --- 0x0A PlayerOnGround -------------------------------------------------

type PlayerOnGround struct {
	OnGround bool
}

func (PlayerOnGround) Opcode() Opcode     { return OpPlayerOnGround }
func (p PlayerOnGround) Encode(w *Writer) { w.Bool(p.OnGround) }

func DecodePlayerOnGround(r *Reader) (PlayerOnGround, error) {
	v, err := r.Bool()
	return PlayerOnGround{OnGround: v}, err
}

// --- 0x0B PlayerPosition -------------------------------------------------

type PlayerPosition struct {
	X, Y, Stance, Z float64
	OnGround        bool
}

func (PlayerPosition) Opcode() Opcode { return OpPlayerPosition }
func (p PlayerPosition) Encode(w *Writer) {
	w.F64(p.X)
	w.F64(p.Y)
	w.F64(p.Stance)
	w.F64(p.Z)
	w.Bool(p.OnGround)
}

func DecodePlayerPosition(r *Reader) (PlayerPosition, error) {
	var p PlayerPosition
	var err error
	if p.X, err = r.F64(); err != nil {
		return p, err
	}
	if p.Y, err = r.F64(); err != nil {
		return p, err
	}
	if p.Stance, err = r.F64(); err != nil {
		return p, err
	}
	if p.Z, err = r.F64(); err != nil {
		return p, err
	}
	if p.OnGround, err = r.Bool(); err != nil {
		return p, err
	}
	return p, nil
}

// --- 0x0C PlayerLook -------------------------------------------------

type PlayerLook struct {
	Yaw, Pitch float32
	OnGround   bool
}

func (PlayerLook) Opcode() Opcode { return OpPlayerLook }
func (p PlayerLook) Encode(w *Writer) {
	w.F32(p.Yaw)
	w.F32(p.Pitch)
	w.Bool(p.OnGround)
}

func DecodePlayerLook(r *Reader) (PlayerLook, error) {
	var p PlayerLook
	var err error
	if p.Yaw, err = r.F32(); err != nil {
		return p, err
	}
	if p.Pitch, err = r.F32(); err != nil {
		return p, err
	}
	if p.OnGround, err = r.Bool(); err != nil {
		return p, err
	}
	return p, nil
}

// --- 0x0D PlayerPosLook -------------------------------------------------

// PlayerPosLook uses one canonical field order — x, y, stance, z, yaw,
// pitch, onGround — for both directions and both read and write.
type PlayerPosLook struct {
	X, Y, Stance, Z float64
	Yaw, Pitch      float32
	OnGround        bool
}

func (PlayerPosLook) Opcode() Opcode { return OpPlayerPosLook }
func (p PlayerPosLook) Encode(w *Writer) {
	w.F64(p.X)
	w.F64(p.Y)
	w.F64(p.Stance)
	w.F64(p.Z)
	w.F32(p.Yaw)
	w.F32(p.Pitch)
	w.Bool(p.OnGround)
}

func DecodePlayerPosLook(r *Reader) (PlayerPosLook, error) {
	var p PlayerPosLook
	var err error
	if p.X, err = r.F64(); err != nil {
		return p, err
	}
	if p.Y, err = r.F64(); err != nil {
		return p, err
	}
	if p.Stance, err = r.F64(); err != nil {
		return p, err
	}
	if p.Z, err = r.F64(); err != nil {
		return p, err
	}
	if p.Yaw, err = r.F32(); err != nil {
		return p, err
	}
	if p.Pitch, err = r.F32(); err != nil {
		return p, err
	}
	if p.OnGround, err = r.Bool(); err != nil {
		return p, err
	}
	return p, nil
}

// --- 0x0E PlayerDigging -------------------------------------------------

// PlayerDigging is parsed but never applied to the world: block
// changes from digging are not simulated.
type PlayerDigging struct {
	Status int8
	X      int32
	Y      int8
	Z      int32
	Face   int8
}

func (PlayerDigging) Opcode() Opcode { return OpPlayerDigging }
func (p PlayerDigging) Encode(w *Writer) {
	w.I8(p.Status)
	w.I32(p.X)
	w.I8(p.Y)
	w.I32(p.Z)
	w.I8(p.Face)
}

func DecodePlayerDigging(r *Reader) (PlayerDigging, error) {
	var p PlayerDigging
	var err error
	if p.Status, err = r.I8(); err != nil {
		return p, err
	}
	if p.X, err = r.I32(); err != nil {
		return p, err
	}
	if p.Y, err = r.I8(); err != nil {
		return p, err
	}
	if p.Z, err = r.I32(); err != nil {
		return p, err
	}
	if p.Face, err = r.I8(); err != nil {
		return p, err
	}
	return p, nil
}

// --- 0x10 HoldItem -------------------------------------------------

type HoldItem struct {
	Slot int16
}

func (HoldItem) Opcode() Opcode     { return OpHoldItem }
func (p HoldItem) Encode(w *Writer) { w.I16(p.Slot) }

func DecodeHoldItem(r *Reader) (HoldItem, error) {
	v, err := r.I16()
	return HoldItem{Slot: v}, err
}

// --- 0x12 EntityAnimation -------------------------------------------------

type EntityAnimation struct {
	EntityID  int32
	Animation int8
}

func (EntityAnimation) Opcode() Opcode { return OpEntityAnimation }
func (p EntityAnimation) Encode(w *Writer) {
	w.I32(p.EntityID)
	w.I8(p.Animation)
}

func DecodeEntityAnimation(r *Reader) (EntityAnimation, error) {
	var p EntityAnimation
	var err error
	if p.EntityID, err = r.I32(); err != nil {
		return p, err
	}
	if p.Animation, err = r.I8(); err != nil {
		return p, err
	}
	return p, nil
}

// --- 0x14 NamedEntitySpawn -------------------------------------------------

type NamedEntitySpawn struct {
	EntityID  int32
	Name      string
	X, Y, Z   int32
	Yaw       int8
	Pitch     int8
	HeldItem  int16
}

func (NamedEntitySpawn) Opcode() Opcode { return OpNamedEntitySpawn }
func (p NamedEntitySpawn) Encode(w *Writer) {
	w.I32(p.EntityID)
	if IncludePlayerName {
		w.String(p.Name)
	}
	w.I32(p.X)
	w.I32(p.Y)
	w.I32(p.Z)
	w.I8(p.Yaw)
	w.I8(p.Pitch)
	w.I16(p.HeldItem)
}

func DecodeNamedEntitySpawn(r *Reader) (NamedEntitySpawn, error) {
	var p NamedEntitySpawn
	var err error
	if p.EntityID, err = r.I32(); err != nil {
		return p, err
	}
	if IncludePlayerName {
		if p.Name, err = r.String(); err != nil {
			return p, err
		}
	}
	if p.X, err = r.I32(); err != nil {
		return p, err
	}
	if p.Y, err = r.I32(); err != nil {
		return p, err
	}
	if p.Z, err = r.I32(); err != nil {
		return p, err
	}
	if p.Yaw, err = r.I8(); err != nil {
		return p, err
	}
	if p.Pitch, err = r.I8(); err != nil {
		return p, err
	}
	if p.HeldItem, err = r.I16(); err != nil {
		return p, err
	}
	return p, nil
}

// --- 0x1D EntityDestroy -------------------------------------------------

type EntityDestroy struct {
	EntityID int32
}

func (EntityDestroy) Opcode() Opcode     { return OpEntityDestroy }
func (p EntityDestroy) Encode(w *Writer) { w.I32(p.EntityID) }

func DecodeEntityDestroy(r *Reader) (EntityDestroy, error) {
	v, err := r.I32()
	return EntityDestroy{EntityID: v}, err
}

// --- 0x1E EntityStill -------------------------------------------------

type EntityStill struct {
	EntityID int32
}

func (EntityStill) Opcode() Opcode     { return OpEntityStill }
func (p EntityStill) Encode(w *Writer) { w.I32(p.EntityID) }

func DecodeEntityStill(r *Reader) (EntityStill, error) {
	v, err := r.I32()
	return EntityStill{EntityID: v}, err
}

// --- 0x1F EntityRelativePos -------------------------------------------------

type EntityRelativePos struct {
	EntityID   int32
	DX, DY, DZ int8
}

func (EntityRelativePos) Opcode() Opcode { return OpEntityRelativePos }
func (p EntityRelativePos) Encode(w *Writer) {
	w.I32(p.EntityID)
	w.I8(p.DX)
	w.I8(p.DY)
	w.I8(p.DZ)
}

func DecodeEntityRelativePos(r *Reader) (EntityRelativePos, error) {
	var p EntityRelativePos
	var err error
	if p.EntityID, err = r.I32(); err != nil {
		return p, err
	}
	if p.DX, err = r.I8(); err != nil {
		return p, err
	}
	if p.DY, err = r.I8(); err != nil {
		return p, err
	}
	if p.DZ, err = r.I8(); err != nil {
		return p, err
	}
	return p, nil
}

// --- 0x20 EntityLook -------------------------------------------------

type EntityLook struct {
	EntityID   int32
	Yaw, Pitch int8
}

func (EntityLook) Opcode() Opcode { return OpEntityLook }
func (p EntityLook) Encode(w *Writer) {
	w.I32(p.EntityID)
	w.I8(p.Yaw)
	w.I8(p.Pitch)
}

func DecodeEntityLook(r *Reader) (EntityLook, error) {
	var p EntityLook
	var err error
	if p.EntityID, err = r.I32(); err != nil {
		return p, err
	}
	if p.Yaw, err = r.I8(); err != nil {
		return p, err
	}
	if p.Pitch, err = r.I8(); err != nil {
		return p, err
	}
	return p, nil
}

// --- 0x21 EntityRelativePosLook -------------------------------------------------

type EntityRelativePosLook struct {
	EntityID   int32
	DX, DY, DZ int8
	Yaw, Pitch int8
}

func (EntityRelativePosLook) Opcode() Opcode { return OpEntityRelativePosLook }
func (p EntityRelativePosLook) Encode(w *Writer) {
	w.I32(p.EntityID)
	w.I8(p.DX)
	w.I8(p.DY)
	w.I8(p.DZ)
	w.I8(p.Yaw)
	w.I8(p.Pitch)
}

func DecodeEntityRelativePosLook(r *Reader) (EntityRelativePosLook, error) {
	var p EntityRelativePosLook
	var err error
	if p.EntityID, err = r.I32(); err != nil {
		return p, err
	}
	if p.DX, err = r.I8(); err != nil {
		return p, err
	}
	if p.DY, err = r.I8(); err != nil {
		return p, err
	}
	if p.DZ, err = r.I8(); err != nil {
		return p, err
	}
	if p.Yaw, err = r.I8(); err != nil {
		return p, err
	}
	if p.Pitch, err = r.I8(); err != nil {
		return p, err
	}
	return p, nil
}

// --- 0x22 EntityMove (a.k.a. Entity Teleport) -------------------------------------------------

type EntityMove struct {
	EntityID   int32
	X, Y, Z    int32
	Yaw, Pitch int8
}

func (EntityMove) Opcode() Opcode { return OpEntityMove }
func (p EntityMove) Encode(w *Writer) {
	w.I32(p.EntityID)
	w.I32(p.X)
	w.I32(p.Y)
	w.I32(p.Z)
	w.I8(p.Yaw)
	w.I8(p.Pitch)
}

func DecodeEntityMove(r *Reader) (EntityMove, error) {
	var p EntityMove
	var err error
	if p.EntityID, err = r.I32(); err != nil {
		return p, err
	}
	if p.X, err = r.I32(); err != nil {
		return p, err
	}
	if p.Y, err = r.I32(); err != nil {
		return p, err
	}
	if p.Z, err = r.I32(); err != nil {
		return p, err
	}
	if p.Yaw, err = r.I8(); err != nil {
		return p, err
	}
	if p.Pitch, err = r.I8(); err != nil {
		return p, err
	}
	return p, nil
}

// --- 0x32 PreChunk -------------------------------------------------

type ChunkMode int8

const (
	ChunkUnload ChunkMode = 0
	ChunkLoad   ChunkMode = 1
)

type PreChunk struct {
	ChunkX, ChunkZ int32
	Mode           ChunkMode
}

func (PreChunk) Opcode() Opcode { return OpPreChunk }
func (p PreChunk) Encode(w *Writer) {
	w.I32(p.ChunkX)
	w.I32(p.ChunkZ)
	w.I8(int8(p.Mode))
}

func DecodePreChunk(r *Reader) (PreChunk, error) {
	var p PreChunk
	var err error
	if p.ChunkX, err = r.I32(); err != nil {
		return p, err
	}
	if p.ChunkZ, err = r.I32(); err != nil {
		return p, err
	}
	mode, err := r.I8()
	if err != nil {
		return p, err
	}
	p.Mode = ChunkMode(mode)
	return p, nil
}

// --- 0x33 MapChunk -------------------------------------------------

type MapChunk struct {
	BlockX, BlockZ         int32
	BlockY                 int16
	SizeX, SizeY, SizeZ    int8
	CompressedData         []byte
}

func (MapChunk) Opcode() Opcode { return OpMapChunk }
func (p MapChunk) Encode(w *Writer) {
	w.I32(p.BlockX)
	w.I16(p.BlockY)
	w.I32(p.BlockZ)
	w.I8(p.SizeX)
	w.I8(p.SizeY)
	w.I8(p.SizeZ)
	w.I32(int32(len(p.CompressedData)))
	w.RawBytes(p.CompressedData)
}

func DecodeMapChunk(r *Reader) (MapChunk, error) {
	var p MapChunk
	var err error
	if p.BlockX, err = r.I32(); err != nil {
		return p, err
	}
	if p.BlockY, err = r.I16(); err != nil {
		return p, err
	}
	if p.BlockZ, err = r.I32(); err != nil {
		return p, err
	}
	if p.SizeX, err = r.I8(); err != nil {
		return p, err
	}
	if p.SizeY, err = r.I8(); err != nil {
		return p, err
	}
	if p.SizeZ, err = r.I8(); err != nil {
		return p, err
	}
	n, err := r.I32()
	if err != nil {
		return p, err
	}
	if n < 0 {
		return p, fmt.Errorf("protocol: negative MapChunk length %d", n)
	}
	if p.CompressedData, err = r.Bytes(int(n)); err != nil {
		return p, err
	}
	return p, nil
}

// --- 0x35 BlockChange -------------------------------------------------

type BlockChange struct {
	X       int32
	Y       int8
	Z       int32
	BlockID int8
	Meta    int8
}

func (BlockChange) Opcode() Opcode { return OpBlockChange }
func (p BlockChange) Encode(w *Writer) {
	w.I32(p.X)
	w.I8(p.Y)
	w.I32(p.Z)
	w.I8(p.BlockID)
	w.I8(p.Meta)
}

func DecodeBlockChange(r *Reader) (BlockChange, error) {
	var p BlockChange
	var err error
	if p.X, err = r.I32(); err != nil {
		return p, err
	}
	if p.Y, err = r.I8(); err != nil {
		return p, err
	}
	if p.Z, err = r.I32(); err != nil {
		return p, err
	}
	if p.BlockID, err = r.I8(); err != nil {
		return p, err
	}
	if p.Meta, err = r.I8(); err != nil {
		return p, err
	}
	return p, nil
}

// --- Slot (shared shape inside SetSlot / WindowItems) -------------------------------------------------

// SlotItem is the wire shape of an inventory slot: an ItemID of -1
// means empty, in which case Count/Uses are omitted.
type SlotItem struct {
	ItemID int16
	Count  int8
	Uses   int16
}

func encodeSlotItem(w *Writer, s SlotItem) {
	w.I16(s.ItemID)
	if s.ItemID != -1 {
		w.I8(s.Count)
		w.I16(s.Uses)
	}
}

func decodeSlotItem(r *Reader) (SlotItem, error) {
	var s SlotItem
	var err error
	if s.ItemID, err = r.I16(); err != nil {
		return s, err
	}
	if s.ItemID == -1 {
		return s, nil
	}
	if s.Count, err = r.I8(); err != nil {
		return s, err
	}
	if s.Uses, err = r.I16(); err != nil {
		return s, err
	}
	return s, nil
}

// --- 0x67 SetSlot -------------------------------------------------

type SetSlot struct {
	WindowID int8
	Slot     int16
	Item     SlotItem
}

func (SetSlot) Opcode() Opcode { return OpSetSlot }
func (p SetSlot) Encode(w *Writer) {
	w.I8(p.WindowID)
	w.I16(p.Slot)
	encodeSlotItem(w, p.Item)
}

func DecodeSetSlot(r *Reader) (SetSlot, error) {
	var p SetSlot
	var err error
	if p.WindowID, err = r.I8(); err != nil {
		return p, err
	}
	if p.Slot, err = r.I16(); err != nil {
		return p, err
	}
	if p.Item, err = decodeSlotItem(r); err != nil {
		return p, err
	}
	return p, nil
}

// --- 0x68 WindowItems -------------------------------------------------

type WindowItems struct {
	WindowID int8
	Items    []SlotItem
}

func (WindowItems) Opcode() Opcode { return OpWindowItems }
func (p WindowItems) Encode(w *Writer) {
	w.I8(p.WindowID)
	w.I16(int16(len(p.Items)))
	for _, it := range p.Items {
		encodeSlotItem(w, it)
	}
}

func DecodeWindowItems(r *Reader) (WindowItems, error) {
	var p WindowItems
	var err error
	if p.WindowID, err = r.I8(); err != nil {
		return p, err
	}
	count, err := r.I16()
	if err != nil {
		return p, err
	}
	if count < 0 {
		return p, fmt.Errorf("protocol: negative WindowItems count %d", count)
	}
	p.Items = make([]SlotItem, count)
	for i := range p.Items {
		if p.Items[i], err = decodeSlotItem(r); err != nil {
			return p, err
		}
	}
	return p, nil
}

// --- 0xFF Kick -------------------------------------------------

type Kick struct {
	Reason string
}

func (Kick) Opcode() Opcode     { return OpKick }
func (p Kick) Encode(w *Writer) { w.String(p.Reason) }

func DecodeKick(r *Reader) (Kick, error) {
	s, err := r.String()
	return Kick{Reason: s}, err
}
