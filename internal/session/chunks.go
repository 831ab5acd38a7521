package session

import (
	"github.com/OCharnyshevich/beta-craft-server/internal/entity"
	"github.com/OCharnyshevich/beta-craft-server/internal/protocol"
	"github.com/OCharnyshevich/beta-craft-server/internal/world"
)

// visibleRadius is the half-width of the square of chunks a client is
// sent on login: a 10x10 square centered on the spawn chunk, half-open
// on each side.
const visibleRadius = 5

// visibleSquare returns the 10x10 set of chunk coordinates centered on
// center, half-open on each side: [center-5, center+5).
func visibleSquare(center entity.ChunkPos) []entity.ChunkPos {
	out := make([]entity.ChunkPos, 0, (2*visibleRadius)*(2*visibleRadius))
	for dx := -visibleRadius; dx < visibleRadius; dx++ {
		for dz := -visibleRadius; dz < visibleRadius; dz++ {
			out = append(out, entity.ChunkPos{CX: center.CX + int32(dx), CZ: center.CZ + int32(dz)})
		}
	}
	return out
}

// sendChunk sends the PreChunk(load)+MapChunk pair for cp, if the
// chunk is loaded. A missing chunk is logged and only the PreChunk is
// sent — the client is told to expect the column but never receives
// its contents.
func (s *Session) sendChunk(cp entity.ChunkPos) {
	_ = s.SendPacket(protocol.PreChunk{ChunkX: cp.CX, ChunkZ: cp.CZ, Mode: protocol.ChunkLoad})

	c := s.world.Chunk(cp.CX, cp.CZ)
	if c == nil {
		s.log.Warn("sending PreChunk for unloaded chunk", "cx", cp.CX, "cz", cp.CZ)
		return
	}
	s.sendMapChunk(c)
}

func (s *Session) sendMapChunk(c *world.Chunk) {
	data, err := c.CompressedPayload()
	if err != nil {
		s.log.Error("compressing chunk payload", "cx", c.CX, "cz", c.CZ, "error", err)
		return
	}
	_ = s.SendPacket(protocol.MapChunk{
		BlockX:         c.CX * world.ChunkWidth,
		BlockY:         0,
		BlockZ:         c.CZ * world.ChunkDepth,
		SizeX:          world.ChunkWidth - 1,
		SizeY:          world.ChunkHeight - 1,
		SizeZ:          world.ChunkDepth - 1,
		CompressedData: data,
	})
}

// unloadChunk sends PreChunk(unload) for cp unless the chunk is
// persistent, in which case the unload is suppressed.
func (s *Session) unloadChunk(cp entity.ChunkPos) {
	if c := s.world.Chunk(cp.CX, cp.CZ); c != nil && c.Persistent {
		return
	}
	_ = s.SendPacket(protocol.PreChunk{ChunkX: cp.CX, ChunkZ: cp.CZ, Mode: protocol.ChunkUnload})
}
