package session

import (
	"github.com/OCharnyshevich/beta-craft-server/internal/entity"
	"github.com/OCharnyshevich/beta-craft-server/internal/protocol"
)

func (s *Session) handlePlayerPosition(p protocol.PlayerPosition) {
	if s.player == nil {
		return
	}
	old := s.player.Entity
	s.player.X, s.player.Y, s.player.Z = p.X, p.Y, p.Z
	s.player.Stance = p.Stance
	s.player.OnGround = p.OnGround
	s.applyMove(old)
}

func (s *Session) handlePlayerLook(p protocol.PlayerLook) {
	if s.player == nil {
		return
	}
	s.player.Yaw, s.player.Pitch = p.Yaw, p.Pitch
	s.player.OnGround = p.OnGround
	s.world.BroadcastToChunk(s.player.Chunk, s.player.ID, protocol.EntityLook{
		EntityID: s.player.ID,
		Yaw:      int8(s.player.Yaw),
		Pitch:    int8(s.player.Pitch),
	})
}

func (s *Session) handlePlayerPosLook(p protocol.PlayerPosLook) {
	if s.player == nil {
		return
	}
	old := s.player.Entity
	s.player.X, s.player.Y, s.player.Z = p.X, p.Y, p.Z
	s.player.Stance = p.Stance
	s.player.Yaw, s.player.Pitch = p.Yaw, p.Pitch
	s.player.OnGround = p.OnGround
	s.applyMove(old)
}

// applyMove runs the chunk-transition and broadcast logic after a
// position update has already been written into s.player. old is the
// entity's attributes before the update, used to compute the delta and
// the previous chunk.
//
// Upstream PlayerPosition/PlayerPosLook updates broadcast immediately
// to chunk peers — a client's own motion is never silently dropped on
// the floor, unlike some historical server implementations that only
// flushed position on a server-initiated correction.
func (s *Session) applyMove(old entity.Entity) {
	pl := s.player
	dx := pl.X - old.X
	dy := pl.Y - old.Y
	dz := pl.Z - old.Z
	pl.DX, pl.DY, pl.DZ = dx, dy, dz

	newChunk := entity.ChunkOf(pl.X, pl.Z)
	if s.world.Chunk(newChunk.CX, newChunk.CZ) == nil {
		s.log.Warn("movement into unloaded chunk", "cx", newChunk.CX, "cz", newChunk.CZ)
		return
	}

	if newChunk != pl.Chunk {
		s.transitionChunk(old.Chunk, newChunk)
	}

	if protocol.IsSmallDelta(dx, dy, dz) {
		s.world.BroadcastToChunk(pl.Chunk, pl.ID, protocol.EntityRelativePosLook{
			EntityID: pl.ID,
			DX:       protocol.RelativeDelta(dx),
			DY:       protocol.RelativeDelta(dy),
			DZ:       protocol.RelativeDelta(dz),
			Yaw:      int8(pl.Yaw),
			Pitch:    int8(pl.Pitch),
		})
		return
	}
	s.world.BroadcastToChunk(pl.Chunk, pl.ID, protocol.EntityMove{
		EntityID: pl.ID,
		X:        protocol.AbsInt(pl.X),
		Y:        protocol.AbsInt(pl.Y),
		Z:        protocol.AbsInt(pl.Z),
		Yaw:      int8(pl.Yaw),
		Pitch:    int8(pl.Pitch),
	})
}

// transitionChunk diffs the visible-chunk set, loads/unloads the edges
// of the square, moves the entity between occupant lists, and tells
// observers in the old chunk the player is gone and observers in the
// new chunk that it arrived.
func (s *Session) transitionChunk(oldChunk, newChunk entity.ChunkPos) {
	pl := s.player
	dcx := newChunk.CX - oldChunk.CX
	dcz := newChunk.CZ - oldChunk.CZ

	candidate := entity.NewVisibleChunkSet()
	for cp := range pl.Visible {
		candidate.Add(entity.ChunkPos{CX: cp.CX + dcx, CZ: cp.CZ + dcz})
	}

	for cp := range pl.Visible {
		if !candidate.Has(cp) {
			s.unloadChunk(cp)
		}
	}
	for cp := range candidate {
		if !pl.Visible.Has(cp) {
			s.sendChunk(cp)
		}
	}
	pl.Visible = candidate

	if oc := s.world.Chunk(oldChunk.CX, oldChunk.CZ); oc != nil {
		oc.RemoveOccupant(pl.ID)
	}
	s.world.BroadcastToChunk(oldChunk, pl.ID, protocol.EntityDestroy{EntityID: pl.ID})

	if nc := s.world.Chunk(newChunk.CX, newChunk.CZ); nc != nil {
		nc.AddOccupant(pl.ID)
	}
	s.world.BroadcastToChunk(newChunk, pl.ID, namedEntitySpawnFor(pl))

	pl.Chunk = newChunk
}
