package session

import (
	"github.com/OCharnyshevich/beta-craft-server/internal/entity"
	"github.com/OCharnyshevich/beta-craft-server/internal/protocol"
)

// protocolVersion is the only protocol version this server accepts.
const protocolVersion = 8

// eyeHeight is added to a player's feet position to produce the
// stance field sent alongside PlayerPosLook.
const eyeHeight = 1.62

// spawnYOffset is added to the world spawn Y when placing a newly
// logged-in player.
const spawnYOffset = 2

func (s *Session) handleHandshake(p protocol.HandshakeC2S) {
	s.handshakeUsername = p.Username
	s.state = StateHandshake
	_ = s.SendPacket(protocol.HandshakeS2C{ConnectionHash: "-"})
}

// handleLoginRequest runs the login sequence once a client's
// credentials check out: allocate an entity, send the initial chunk
// window and inventory, enter PLAY_GAME, and spawn the player.
func (s *Session) handleLoginRequest(p protocol.LoginRequestC2S) {
	if p.ProtocolVersion != protocolVersion {
		s.kick(protocol.ErrBadProtocol)
		return
	}
	if p.Username != s.handshakeUsername {
		s.kick(protocol.ErrBadCredentials)
		return
	}

	id := s.ids.Next()
	s.player = entity.NewPlayer(id, p.Username, s.id)
	s.state = StateLoggingIn

	_ = s.SendPacket(protocol.LoginRequestS2C{
		EntityID:  id,
		MapSeed:   s.world.Seed,
		Dimension: 0,
	})

	spawnChunk := s.world.SpawnChunk()
	for _, cp := range visibleSquare(spawnChunk) {
		s.player.Visible.Add(cp)
		s.sendChunk(cp)
	}

	_ = s.SendPacket(protocol.WindowItems{
		WindowID: 0,
		Items:    inventoryToSlots(s.player.Inventory),
	})

	s.state = StatePlayGame
	s.world.AddSession(s)

	_ = s.SendPacket(protocol.SpawnPosition{X: s.world.SpawnX, Y: s.world.SpawnY, Z: s.world.SpawnZ})

	s.player.X = float64(s.world.SpawnX)
	s.player.Y = float64(s.world.SpawnY + spawnYOffset)
	s.player.Z = float64(s.world.SpawnZ)
	s.player.Stance = s.player.Y + eyeHeight
	s.player.Chunk = spawnChunk
	s.player.InChunk = true

	if c := s.world.Chunk(spawnChunk.CX, spawnChunk.CZ); c != nil {
		c.AddOccupant(id)
	}

	_ = s.SendPacket(protocol.PlayerPosLook{
		X:      s.player.X,
		Y:      s.player.Y,
		Stance: s.player.Stance,
		Z:      s.player.Z,
		Yaw:    s.player.Yaw,
		Pitch:  s.player.Pitch,
	})

	s.world.BroadcastToChunk(spawnChunk, id, namedEntitySpawnFor(s.player))

	s.log.Info("player logged in", "username", p.Username, "entity", id)
}

func inventoryToSlots(inv [entity.InventorySlots]entity.InventoryItem) []protocol.SlotItem {
	out := make([]protocol.SlotItem, len(inv))
	for i, it := range inv {
		out[i] = protocol.SlotItem{ItemID: it.ItemID, Count: it.Count, Uses: it.Uses}
	}
	return out
}

func namedEntitySpawnFor(p *entity.Player) protocol.NamedEntitySpawn {
	return protocol.NamedEntitySpawn{
		EntityID: p.ID,
		Name:     p.Username,
		X:        protocol.AbsInt(p.X),
		Y:        protocol.AbsInt(p.Y),
		Z:        protocol.AbsInt(p.Z),
		Yaw:      int8(p.Yaw),
		Pitch:    int8(p.Pitch),
		HeldItem: 0,
	}
}
