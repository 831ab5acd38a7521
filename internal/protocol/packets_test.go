package protocol

import "testing"

func TestRoundTripUpstreamPackets(t *testing.T) {
	cases := []struct {
		name string
		pkt  Packet
	}{
		{"KeepAlive", KeepAlive{}},
		{"LoginRequestC2S", LoginRequestC2S{ProtocolVersion: 8, Username: "alice", Password: ""}},
		{"HandshakeC2S", HandshakeC2S{Username: "alice"}},
		{"ChatMessage", ChatMessage{Message: "hello"}},
		{"PlayerOnGround", PlayerOnGround{OnGround: true}},
		{"PlayerPosition", PlayerPosition{X: 1.5, Y: 64, Stance: 65.62, Z: -2.5, OnGround: true}},
		{"PlayerLook", PlayerLook{Yaw: 90.5, Pitch: -12.25, OnGround: false}},
		{"PlayerPosLook", PlayerPosLook{X: 1, Y: 2, Stance: 3, Z: 4, Yaw: 5, Pitch: 6, OnGround: true}},
		{"PlayerDigging", PlayerDigging{Status: 2, X: 10, Y: 64, Z: -10, Face: 1}},
		{"HoldItem", HoldItem{Slot: 3}},
		{"EntityAnimation", EntityAnimation{EntityID: 100, Animation: 1}},
		{"BlockChange", BlockChange{X: 1, Y: 2, Z: 3, BlockID: 4, Meta: 5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWriter()
			tc.pkt.Encode(w)
			r := NewReader(w.Bytes())
			got, err := DecodeUpstream(tc.pkt.Opcode(), r)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tc.pkt {
				t.Fatalf("round trip mismatch: got %#v, want %#v", got, tc.pkt)
			}
			if r.Consumed() != len(w.Bytes()) {
				t.Fatalf("consumed %d bytes, wrote %d", r.Consumed(), len(w.Bytes()))
			}
		})
	}
}

func TestRoundTripDownstreamPackets(t *testing.T) {
	t.Run("LoginRequestS2C", func(t *testing.T) {
		p := LoginRequestS2C{EntityID: 100, MapSeed: 42, Dimension: 0}
		w := NewWriter()
		p.Encode(w)
		r := NewReader(w.Bytes())
		got, err := DecodeLoginRequestS2C(r)
		if err != nil {
			t.Fatal(err)
		}
		if got != p {
			t.Fatalf("got %#v want %#v", got, p)
		}
	})

	t.Run("NamedEntitySpawn with name", func(t *testing.T) {
		old := IncludePlayerName
		IncludePlayerName = true
		defer func() { IncludePlayerName = old }()

		p := NamedEntitySpawn{EntityID: 101, Name: "bob", X: 32, Y: 64, Z: -32, Yaw: 1, Pitch: 2, HeldItem: -1}
		w := NewWriter()
		p.Encode(w)
		r := NewReader(w.Bytes())
		got, err := DecodeNamedEntitySpawn(r)
		if err != nil {
			t.Fatal(err)
		}
		if got != p {
			t.Fatalf("got %#v want %#v", got, p)
		}
	})

	t.Run("NamedEntitySpawn legacy shape omits name", func(t *testing.T) {
		old := IncludePlayerName
		IncludePlayerName = false
		defer func() { IncludePlayerName = old }()

		p := NamedEntitySpawn{EntityID: 101, X: 32, Y: 64, Z: -32, Yaw: 1, Pitch: 2, HeldItem: -1}
		w := NewWriter()
		p.Encode(w)
		r := NewReader(w.Bytes())
		got, err := DecodeNamedEntitySpawn(r)
		if err != nil {
			t.Fatal(err)
		}
		if got != p {
			t.Fatalf("got %#v want %#v", got, p)
		}
	})

	t.Run("MapChunk", func(t *testing.T) {
		p := MapChunk{BlockX: 16, BlockY: 0, BlockZ: 32, SizeX: 15, SizeY: 127, SizeZ: 15, CompressedData: []byte{1, 2, 3, 4}}
		w := NewWriter()
		p.Encode(w)
		r := NewReader(w.Bytes())
		got, err := DecodeMapChunk(r)
		if err != nil {
			t.Fatal(err)
		}
		if got.BlockX != p.BlockX || len(got.CompressedData) != len(p.CompressedData) {
			t.Fatalf("got %#v want %#v", got, p)
		}
	})

	t.Run("SetSlot empty", func(t *testing.T) {
		p := SetSlot{WindowID: 0, Slot: 4, Item: SlotItem{ItemID: -1}}
		w := NewWriter()
		p.Encode(w)
		if len(w.Bytes()) != 5 {
			t.Fatalf("expected empty slot to omit count/uses, got %d bytes", len(w.Bytes()))
		}
		r := NewReader(w.Bytes())
		got, err := DecodeSetSlot(r)
		if err != nil {
			t.Fatal(err)
		}
		if got != p {
			t.Fatalf("got %#v want %#v", got, p)
		}
	})

	t.Run("SetSlot occupied", func(t *testing.T) {
		p := SetSlot{WindowID: 0, Slot: 4, Item: SlotItem{ItemID: 1, Count: 3, Uses: 0}}
		w := NewWriter()
		p.Encode(w)
		if len(w.Bytes()) != 8 {
			t.Fatalf("expected occupied slot to carry count/uses, got %d bytes", len(w.Bytes()))
		}
	})

	t.Run("WindowItems 45 empty slots", func(t *testing.T) {
		items := make([]SlotItem, 45)
		for i := range items {
			items[i].ItemID = -1
		}
		p := WindowItems{WindowID: 0, Items: items}
		w := NewWriter()
		p.Encode(w)
		r := NewReader(w.Bytes())
		got, err := DecodeWindowItems(r)
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Items) != 45 {
			t.Fatalf("got %d items, want 45", len(got.Items))
		}
	})

	t.Run("Kick", func(t *testing.T) {
		p := Kick{Reason: "Invalid protocol version!"}
		w := NewWriter()
		p.Encode(w)
		r := NewReader(w.Bytes())
		got, err := DecodeKick(r)
		if err != nil {
			t.Fatal(err)
		}
		if got != p {
			t.Fatalf("got %#v want %#v", got, p)
		}
	})
}

func TestShortReadDoesNotConsume(t *testing.T) {
	// A PlayerPosition frame (minSize 33) with only 10 bytes available.
	r := NewReader(make([]byte, 10))
	if _, err := DecodePlayerPosition(r); err != ErrShortRead {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
}

func TestAbsIntRoundTowardZero(t *testing.T) {
	cases := []struct {
		in   float64
		want int32
	}{
		{1.0, 32},
		{-1.0, -32},
		{1.99, 63},
		{-1.99, -63},
		{0, 0},
	}
	for _, tc := range cases {
		if got := AbsInt(tc.in); got != tc.want {
			t.Errorf("AbsInt(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestIsSmallDeltaBugMirrored(t *testing.T) {
	// Negative deltas always pass the check, since it compares raw
	// signed deltas with `<` instead of an absolute value.
	if !IsSmallDelta(-100, -100, -100) {
		t.Fatal("negative deltas must always qualify as small")
	}
	if !IsSmallDelta(3.9, 0, 0) {
		t.Fatal("3.9 < 4 should qualify")
	}
	if IsSmallDelta(4, 0, 0) {
		t.Fatal("4 is not < 4")
	}
}
