package world

import (
	"fmt"
	"sync"

	"github.com/OCharnyshevich/beta-craft-server/internal/entity"
	"github.com/OCharnyshevich/beta-craft-server/internal/protocol"
)

// TimeWrap is the largest value World.Time takes: time ∈ [0, 24000].
// The tick after Time reaches TimeWrap resets it to 0.
const TimeWrap = 24000

// Broadcastable is the minimal surface the World needs from a session
// to fan packets out to it. The world never imports the session
// package (which depends on world) — sessions are held as a weak
// reference via this narrow interface rather than a concrete
// dependency.
type Broadcastable interface {
	SendPacket(p protocol.Packet) error
	Player() *entity.Player
}

// World is the root simulation object: root directory, seed, spawn
// point, the chunk map, the connected-session list, and the world
// time counter.
//
// Every exported mutating method is documented as scheduler-confined:
// only the single cooperative-scheduler goroutine ever calls them, so
// World itself carries no internal locking. The fields below are
// plain maps/slices, not sync.Map.
type World struct {
	Directory string
	Seed      int64
	SpawnX    int32
	SpawnY    int32
	SpawnZ    int32

	chunks   map[ChunkKey]*Chunk
	sessions map[Broadcastable]struct{}

	Time int64

	// loadWarnings accumulates non-fatal loader diagnostics so
	// callers/tests can assert on them without depending on log output.
	mu           sync.Mutex
	loadWarnings []string
}

// New constructs an empty World rooted at dir.
func New(dir string) *World {
	return &World{
		Directory: dir,
		chunks:    make(map[ChunkKey]*Chunk),
		sessions:  make(map[Broadcastable]struct{}),
	}
}

// SpawnChunk returns the chunk coordinates containing the world spawn.
func (w *World) SpawnChunk() entity.ChunkPos {
	return entity.ChunkOf(float64(w.SpawnX), float64(w.SpawnZ))
}

// Chunk returns the chunk at (cx, cz), or nil if it is not loaded.
func (w *World) Chunk(cx, cz int32) *Chunk {
	return w.chunks[KeyFor(cx, cz)]
}

// PutChunk inserts c into the chunk map, keyed by its signed
// coordinates.
func (w *World) PutChunk(c *Chunk) {
	w.chunks[KeyFor(c.CX, c.CZ)] = c
}

// ChunkCount reports how many chunks are currently loaded.
func (w *World) ChunkCount() int {
	return len(w.chunks)
}

// AddSession registers a connected session for broadcast fan-out.
func (w *World) AddSession(s Broadcastable) {
	w.sessions[s] = struct{}{}
}

// RemoveSession unregisters a session during disconnect teardown.
func (w *World) RemoveSession(s Broadcastable) {
	delete(w.sessions, s)
}

// Broadcast sends p to every connected session.
func (w *World) Broadcast(p protocol.Packet) {
	for s := range w.sessions {
		_ = s.SendPacket(p)
	}
}

// BroadcastToChunk sends p to every session whose player currently
// occupies chunk cp, skipping the session identified by exclude (the
// id of the entity that triggered the broadcast, typically excluded so
// it doesn't get its own spawn/move echoed back to itself).
func (w *World) BroadcastToChunk(cp entity.ChunkPos, exclude int32, p protocol.Packet) {
	c := w.Chunk(cp.CX, cp.CZ)
	if c == nil {
		return
	}
	for s := range w.sessions {
		pl := s.Player()
		if pl == nil || pl.ID == exclude {
			continue
		}
		if !c.HasOccupant(pl.ID) {
			continue
		}
		_ = s.SendPacket(p)
	}
}

// Tick advances world time by 20, resetting to 0 once it would exceed
// TimeWrap, and broadcasts
// the new value to every connected session.
func (w *World) Tick() {
	w.Time += 20
	if w.Time > TimeWrap {
		w.Time = 0
	}
	w.Broadcast(protocol.TimeUpdate{Time: w.Time})
}

// Warnf records a non-fatal loader diagnostic.
func (w *World) Warnf(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.loadWarnings = append(w.loadWarnings, fmt.Sprintf(format, args...))
}

// Warnings returns every diagnostic recorded by Warnf, for tests.
func (w *World) Warnings() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.loadWarnings))
	copy(out, w.loadWarnings)
	return out
}
