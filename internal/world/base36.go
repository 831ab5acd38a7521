package world

import "strconv"

// Base36 encodes a signed 32-bit coordinate as lowercase 0-9a-z, with a
// leading minus for negatives and "0" for zero.
func Base36(n int32) string {
	return strconv.FormatInt(int64(n), 36)
}

// ParseBase36 is the inverse of Base36.
func ParseBase36(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 36, 64)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// ChunkKey is the signed base-36 string pair used as the chunk map
// key: chunk keys are the base-36 string forms of signed chunk
// coordinates.
type ChunkKey struct {
	X, Z string
}

// KeyFor returns the signed chunk-map key for (cx, cz). This must use
// the signed coordinate, not the masked directory-component value used
// in the on-disk layout.
func KeyFor(cx, cz int32) ChunkKey {
	return ChunkKey{X: Base36(cx), Z: Base36(cz)}
}

// mask6 returns the low 6 bits of n, used only for the on-disk
// directory layout, never for the chunk map key.
func mask6(n int32) int32 {
	return n & 63
}
