// Package world holds the chunk map, the on-disk loader, and the
// world-wide session/time state.
package world

import (
	"bytes"
	"fmt"

	"github.com/OCharnyshevich/beta-craft-server/internal/entity"
	"github.com/klauspost/compress/zlib"
)

// Chunk dimensions in blocks: 16 wide, 128 tall, 16 deep.
const (
	ChunkWidth  = 16
	ChunkHeight = 128
	ChunkDepth  = 16

	blockArraySize = ChunkWidth * ChunkHeight * ChunkDepth    // 32768
	nibbleArraySize = blockArraySize / 2                       // 16384
)

// Chunk holds one 16×128×16 column of blocks plus its occupants.
type Chunk struct {
	CX, CZ int32

	Blocks     []byte // len == blockArraySize
	BlockMeta  []byte // nibble-packed, len == nibbleArraySize
	BlockLight []byte // nibble-packed, len == nibbleArraySize
	SkyLight   []byte // nibble-packed, len == nibbleArraySize

	TerrainPopulated bool
	Persistent       bool

	// Occupants holds the entity ids currently inside this chunk, as a
	// set rather than a linear-scan list; World.BroadcastToChunk matches
	// them against the players of the connected sessions.
	Occupants map[int32]struct{}
}

// NewChunk allocates a chunk at (cx, cz) with correctly sized, zeroed
// arrays.
func NewChunk(cx, cz int32) *Chunk {
	return &Chunk{
		CX:         cx,
		CZ:         cz,
		Blocks:     make([]byte, blockArraySize),
		BlockMeta:  make([]byte, nibbleArraySize),
		BlockLight: make([]byte, nibbleArraySize),
		SkyLight:   make([]byte, nibbleArraySize),
		Occupants:  make(map[int32]struct{}),
	}
}

// Pos returns the chunk's coordinate pair.
func (c *Chunk) Pos() entity.ChunkPos { return entity.ChunkPos{CX: c.CX, CZ: c.CZ} }

// Validate checks the byte-array length invariants.
func (c *Chunk) Validate() error {
	if len(c.Blocks) != blockArraySize {
		return fmt.Errorf("world: chunk (%d,%d) blocks length %d, want %d", c.CX, c.CZ, len(c.Blocks), blockArraySize)
	}
	for name, arr := range map[string][]byte{
		"blockMeta":  c.BlockMeta,
		"blockLight": c.BlockLight,
		"skyLight":   c.SkyLight,
	} {
		if len(arr) != nibbleArraySize {
			return fmt.Errorf("world: chunk (%d,%d) %s length %d, want %d", c.CX, c.CZ, name, len(arr), nibbleArraySize)
		}
	}
	return nil
}

// BlockIndex returns the index into Blocks for block-local coordinates
// (x, y, z), where x and z are full world coordinates (only their low
// 4 bits matter) and y is 0..127.
func BlockIndex(x, y, z int) int {
	relX := x & 15
	relZ := z & 15
	return y + relZ*ChunkHeight + relX*ChunkHeight*ChunkWidth
}

// Nibble reads one 4-bit value from a nibble-packed array: two blocks
// per byte, low nibble = lower index, high nibble = higher index.
func Nibble(arr []byte, index int) byte {
	b := arr[index/2]
	if index%2 == 0 {
		return b & 0x0F
	}
	return (b >> 4) & 0x0F
}

// SetNibble writes one 4-bit value into a nibble-packed array.
func SetNibble(arr []byte, index int, v byte) {
	v &= 0x0F
	i := index / 2
	if index%2 == 0 {
		arr[i] = (arr[i] & 0xF0) | v
	} else {
		arr[i] = (arr[i] & 0x0F) | (v << 4)
	}
}

// AddOccupant adds id to the chunk's occupant set.
func (c *Chunk) AddOccupant(id int32) { c.Occupants[id] = struct{}{} }

// RemoveOccupant removes id from the chunk's occupant set.
func (c *Chunk) RemoveOccupant(id int32) { delete(c.Occupants, id) }

// HasOccupant reports whether id currently occupies this chunk.
func (c *Chunk) HasOccupant(id int32) bool {
	_, ok := c.Occupants[id]
	return ok
}

// RawPayload returns the blocks||blockMeta||blockLight||skyLight
// concatenation used to build a MapChunk packet.
func (c *Chunk) RawPayload() []byte {
	out := make([]byte, 0, blockArraySize+3*nibbleArraySize)
	out = append(out, c.Blocks...)
	out = append(out, c.BlockMeta...)
	out = append(out, c.BlockLight...)
	out = append(out, c.SkyLight...)
	return out
}

// CompressedPayload zlib-deflates RawPayload for the MapChunk wire
// format.
func (c *Chunk) CompressedPayload() ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(c.RawPayload()); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
