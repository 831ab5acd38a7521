package protocol

// Direction describes which side of the connection may legally send a
// given opcode.
type Direction int

const (
	Upstream   Direction = iota // client -> server
	Downstream                  // server -> client
	Both
)

// Opcode identifies a packet type on the wire.
type Opcode byte

const (
	OpKeepAlive              Opcode = 0x00
	OpLoginRequest           Opcode = 0x01
	OpHandshake              Opcode = 0x02
	OpChatMessage            Opcode = 0x03
	OpTimeUpdate             Opcode = 0x04
	OpSpawnPosition          Opcode = 0x06
	OpPlayerOnGround         Opcode = 0x0A
	OpPlayerPosition         Opcode = 0x0B
	OpPlayerLook             Opcode = 0x0C
	OpPlayerPosLook          Opcode = 0x0D
	OpPlayerDigging          Opcode = 0x0E
	OpHoldItem               Opcode = 0x10
	OpEntityAnimation        Opcode = 0x12
	OpNamedEntitySpawn       Opcode = 0x14
	OpEntityDestroy          Opcode = 0x1D
	OpEntityStill            Opcode = 0x1E
	OpEntityRelativePos      Opcode = 0x1F
	OpEntityLook             Opcode = 0x20
	OpEntityRelativePosLook  Opcode = 0x21
	OpEntityMove             Opcode = 0x22
	OpPreChunk               Opcode = 0x32
	OpMapChunk               Opcode = 0x33
	OpBlockChange            Opcode = 0x35
	OpSetSlot                Opcode = 0x67
	OpWindowItems            Opcode = 0x68
	OpKick                   Opcode = 0xFF
)

// Spec describes one catalog entry: its direction and the size of its
// fixed-layout payload prefix, excluding the opcode byte and excluding
// any variable-length strings or arrays.
type Spec struct {
	Opcode    Opcode
	Name      string
	Direction Direction
	MinSize   int
}

// Catalog is the full packet table, keyed by opcode.
var Catalog = map[Opcode]Spec{
	OpKeepAlive:             {OpKeepAlive, "KeepAlive", Both, 0},
	OpLoginRequest:          {OpLoginRequest, "LoginRequest", Both, 4},
	OpHandshake:             {OpHandshake, "Handshake", Both, 0},
	OpChatMessage:           {OpChatMessage, "ChatMessage", Both, 0},
	OpTimeUpdate:            {OpTimeUpdate, "TimeUpdate", Downstream, 8},
	OpSpawnPosition:         {OpSpawnPosition, "SpawnPosition", Downstream, 12},
	OpPlayerOnGround:        {OpPlayerOnGround, "PlayerOnGround", Upstream, 1},
	OpPlayerPosition:        {OpPlayerPosition, "PlayerPosition", Upstream, 33},
	OpPlayerLook:            {OpPlayerLook, "PlayerLook", Upstream, 9},
	OpPlayerPosLook:         {OpPlayerPosLook, "PlayerPosLook", Both, 41},
	OpPlayerDigging:         {OpPlayerDigging, "PlayerDigging", Both, 11},
	OpHoldItem:              {OpHoldItem, "HoldItem", Both, 2},
	OpEntityAnimation:       {OpEntityAnimation, "EntityAnimation", Both, 5},
	OpNamedEntitySpawn:      {OpNamedEntitySpawn, "NamedEntitySpawn", Downstream, 20},
	OpEntityDestroy:         {OpEntityDestroy, "EntityDestroy", Downstream, 4},
	OpEntityStill:           {OpEntityStill, "EntityStill", Downstream, 4},
	OpEntityRelativePos:     {OpEntityRelativePos, "EntityRelativePos", Downstream, 7},
	OpEntityLook:            {OpEntityLook, "EntityLook", Downstream, 6},
	OpEntityRelativePosLook: {OpEntityRelativePosLook, "EntityRelativePosLook", Downstream, 9},
	OpEntityMove:            {OpEntityMove, "EntityMove", Downstream, 18},
	OpPreChunk:              {OpPreChunk, "PreChunk", Downstream, 9},
	OpMapChunk:              {OpMapChunk, "MapChunk", Downstream, 17},
	OpBlockChange:           {OpBlockChange, "BlockChange", Both, 11},
	OpSetSlot:               {OpSetSlot, "SetSlot", Downstream, 5},
	OpWindowItems:           {OpWindowItems, "WindowItems", Downstream, 3},
	OpKick:                  {OpKick, "Kick", Downstream, 0},
}

// Lookup returns the catalog entry for op, or !ok for an unknown opcode.
func Lookup(op Opcode) (Spec, bool) {
	s, ok := Catalog[op]
	return s, ok
}
