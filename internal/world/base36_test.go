package world

import "testing"

func TestBase36KnownValues(t *testing.T) {
	cases := []struct {
		n    int32
		want string
	}{
		{-13, "-d"},
		{0, "0"},
		{36, "10"},
	}
	for _, tc := range cases {
		if got := Base36(tc.n); got != tc.want {
			t.Errorf("Base36(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestBase36RoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 35, 36, -36, 1 << 20, -(1 << 20), 1<<31 - 1, -(1 << 31)}
	for _, n := range values {
		s := Base36(n)
		got, err := ParseBase36(s)
		if err != nil {
			t.Fatalf("ParseBase36(%q): %v", s, err)
		}
		if got != n {
			t.Errorf("round trip %d -> %q -> %d", n, s, got)
		}
	}
}

func TestMask6(t *testing.T) {
	if mask6(-13) != (-13 & 63) {
		t.Fatalf("mask6 must match Go's & semantics")
	}
}
