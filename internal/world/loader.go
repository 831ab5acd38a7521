package world

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tnze/go-mc/nbt"
)

// ErrWorldMissing is returned by Load when the world directory does
// not exist.
var ErrWorldMissing = errors.New("world: directory does not exist")

// levelDat mirrors the subset of level.dat this server reads. NBT
// decoding itself is delegated to github.com/Tnze/go-mc/nbt, treated
// as an opaque key/value-tree provider.
type levelDat struct {
	Data struct {
		RandomSeed int64 `nbt:"RandomSeed"`
		SpawnX     int32 `nbt:"SpawnX"`
		SpawnY     int32 `nbt:"SpawnY"`
		SpawnZ     int32 `nbt:"SpawnZ"`
	} `nbt:"Data"`
}

// chunkDat mirrors one chunk file's NBT layout.
type chunkDat struct {
	Level struct {
		XPos             int32 `nbt:"xPos"`
		ZPos             int32 `nbt:"zPos"`
		TerrainPopulated byte  `nbt:"TerrainPopulated"`
		Blocks           []byte `nbt:"Blocks"`
		Data             []byte `nbt:"Data"`
		BlockLight       []byte `nbt:"BlockLight"`
		SkyLight         []byte `nbt:"SkyLight"`
	} `nbt:"Level"`
}

// readGzippedNBT decompresses and NBT-decodes a level/chunk file.
func readGzippedNBT(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("world: %s is not gzip-compressed NBT: %w", path, err)
	}
	defer gz.Close()

	return nbt.NewDecoder(gz).Decode(v)
}

// Load constructs a World from the on-disk world save layout.
func Load(log *slog.Logger, dir string) (*World, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrWorldMissing
		}
		return nil, err
	}

	var lvl levelDat
	if err := readGzippedNBT(filepath.Join(dir, "level.dat"), &lvl); err != nil {
		return nil, fmt.Errorf("world: reading level.dat: %w", err)
	}

	w := New(dir)
	w.Seed = lvl.Data.RandomSeed
	w.SpawnX = lvl.Data.SpawnX
	w.SpawnY = lvl.Data.SpawnY
	w.SpawnZ = lvl.Data.SpawnZ

	if err := w.loadChunks(log, dir); err != nil {
		return nil, err
	}
	return w, nil
}

// loadChunks walks dir looking for chunk files two directories deep.
func (w *World) loadChunks(log *slog.Logger, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, d1 := range entries {
		if !d1.IsDir() {
			continue
		}
		sub := filepath.Join(dir, d1.Name())
		inner, err := os.ReadDir(sub)
		if err != nil {
			continue
		}
		for _, d2 := range inner {
			if !d2.IsDir() {
				continue
			}
			sub2 := filepath.Join(sub, d2.Name())
			files, err := os.ReadDir(sub2)
			if err != nil {
				continue
			}
			for _, f := range files {
				if f.IsDir() {
					continue
				}
				w.tryLoadChunkFile(log, d1.Name(), d2.Name(), filepath.Join(sub2, f.Name()))
			}
		}
	}
	return nil
}

// tryLoadChunkFile validates and loads one candidate chunk file,
// warning and skipping on any mismatch.
func (w *World) tryLoadChunkFile(log *slog.Logger, dirX, dirZ, path string) {
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		w.Warnf("%s", msg)
		if log != nil {
			log.Warn("malformed chunk file", "path", path, "reason", msg)
		}
	}

	name := filepath.Base(path)
	parts := strings.Split(name, ".")
	if len(parts) != 4 || parts[0] != "c" || parts[3] != "dat" {
		warn("unexpected filename shape %q", name)
		return
	}

	cx, err := ParseBase36(parts[1])
	if err != nil {
		warn("bad chunk-x in filename %q: %v", name, err)
		return
	}
	cz, err := ParseBase36(parts[2])
	if err != nil {
		warn("bad chunk-z in filename %q: %v", name, err)
		return
	}

	if dirX != Base36(mask6(cx)) {
		warn("directory %q does not match masked chunk-x for %q", dirX, name)
		return
	}
	if dirZ != Base36(mask6(cz)) {
		warn("directory %q does not match masked chunk-z for %q", dirZ, name)
		return
	}

	var cd chunkDat
	if err := readGzippedNBT(path, &cd); err != nil {
		warn("reading %q: %v", path, err)
		return
	}
	if cd.Level.XPos != cx || cd.Level.ZPos != cz {
		warn("NBT coordinates (%d,%d) do not match filename (%d,%d)", cd.Level.XPos, cd.Level.ZPos, cx, cz)
		return
	}

	c := NewChunk(cx, cz)
	c.TerrainPopulated = cd.Level.TerrainPopulated != 0
	if len(cd.Level.Blocks) == blockArraySize {
		c.Blocks = cd.Level.Blocks
	} else {
		warn("chunk (%d,%d) has %d block bytes, want %d", cx, cz, len(cd.Level.Blocks), blockArraySize)
		return
	}
	if len(cd.Level.Data) == nibbleArraySize {
		c.BlockMeta = cd.Level.Data
	} else {
		warn("chunk (%d,%d) has %d meta bytes, want %d", cx, cz, len(cd.Level.Data), nibbleArraySize)
		return
	}
	if len(cd.Level.BlockLight) == nibbleArraySize {
		c.BlockLight = cd.Level.BlockLight
	} else {
		warn("chunk (%d,%d) has %d block-light bytes, want %d", cx, cz, len(cd.Level.BlockLight), nibbleArraySize)
		return
	}
	if len(cd.Level.SkyLight) == nibbleArraySize {
		c.SkyLight = cd.Level.SkyLight
	} else {
		warn("chunk (%d,%d) has %d sky-light bytes, want %d", cx, cz, len(cd.Level.SkyLight), nibbleArraySize)
		return
	}

	w.PutChunk(c)
}
