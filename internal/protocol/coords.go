package protocol

import "math"

// AbsInt converts a world-space coordinate to its wire integer form:
// round_toward_zero(v * 32).
func AbsInt(v float64) int32 {
	return int32(math.Trunc(v * 32))
}

// IsSmallDelta decides whether a move qualifies as a relative-move
// broadcast. It compares raw world-unit deltas — not the ×32 scaled
// wire values — against 4, and uses only `<`, never `|Δ| < 4`, so any
// negative delta always qualifies. This asymmetry is intentional and
// covered by a regression test; do not "fix" it into `math.Abs(d) < 4`.
func IsSmallDelta(dx, dy, dz float64) bool {
	return dx < 4 && dy < 4 && dz < 4
}

// RelativeDelta truncates a ×32-scaled world delta into the signed
// byte used by EntityRelativePos(Look).
func RelativeDelta(v float64) int8 {
	return int8(math.Trunc(v * 32))
}
