package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/OCharnyshevich/beta-craft-server/internal/entity"
	"github.com/OCharnyshevich/beta-craft-server/internal/protocol"
	"github.com/OCharnyshevich/beta-craft-server/internal/scheduler"
	"github.com/OCharnyshevich/beta-craft-server/internal/world"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// newTestWorld returns a World with SpawnX=0, SpawnY=62, SpawnZ=0 (so a
// logged-in player lands at y=64) and every chunk in the login visible
// window, plus the chunk one step east of it, already loaded.
func newTestWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.New(t.TempDir())
	w.SpawnX, w.SpawnY, w.SpawnZ = 0, 62, 0
	for cx := int32(-6); cx <= 6; cx++ {
		for cz := int32(-6); cz <= 6; cz++ {
			w.PutChunk(world.NewChunk(cx, cz))
		}
	}
	return w
}

func startScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()
	sched := scheduler.New(testLogger(), 1024)
	ctx, cancel := context.WithCancel(context.Background())
	go sched.Run(ctx)
	t.Cleanup(cancel)
	return sched
}

// frameReader decodes downstream packets off a raw client connection,
// mirroring the framing algorithm the session itself runs in reverse.
type frameReader struct {
	conn net.Conn
	buf  []byte
}

func newFrameReader(conn net.Conn) *frameReader {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return &frameReader{conn: conn}
}

func (fr *frameReader) next(t *testing.T) (protocol.Opcode, protocol.Packet) {
	t.Helper()
	for {
		if len(fr.buf) > 0 {
			op := protocol.Opcode(fr.buf[0])
			spec, ok := protocol.Lookup(op)
			if ok && len(fr.buf) >= 1+spec.MinSize {
				r := protocol.NewReader(fr.buf[1:])
				pkt, err := decodeDownstreamForTest(op, r)
				if err == nil {
					fr.buf = fr.buf[1+r.Consumed():]
					return op, pkt
				}
				if !errors.Is(err, protocol.ErrShortRead) {
					t.Fatalf("decode 0x%02X: %v", op, err)
				}
			}
		}
		tmp := make([]byte, 8192)
		n, err := fr.conn.Read(tmp)
		if n > 0 {
			fr.buf = append(fr.buf, tmp[:n]...)
			continue
		}
		if err != nil {
			t.Fatalf("frameReader: read: %v", err)
		}
	}
}

func decodeDownstreamForTest(op protocol.Opcode, r *protocol.Reader) (protocol.Packet, error) {
	switch op {
	case protocol.OpHandshake:
		return protocol.DecodeHandshakeS2C(r)
	case protocol.OpLoginRequest:
		return protocol.DecodeLoginRequestS2C(r)
	case protocol.OpPreChunk:
		return protocol.DecodePreChunk(r)
	case protocol.OpMapChunk:
		return protocol.DecodeMapChunk(r)
	case protocol.OpWindowItems:
		return protocol.DecodeWindowItems(r)
	case protocol.OpSpawnPosition:
		return protocol.DecodeSpawnPosition(r)
	case protocol.OpPlayerPosLook:
		return protocol.DecodePlayerPosLook(r)
	case protocol.OpKick:
		return protocol.DecodeKick(r)
	case protocol.OpNamedEntitySpawn:
		return protocol.DecodeNamedEntitySpawn(r)
	case protocol.OpEntityMove:
		return protocol.DecodeEntityMove(r)
	case protocol.OpEntityRelativePosLook:
		return protocol.DecodeEntityRelativePosLook(r)
	case protocol.OpEntityLook:
		return protocol.DecodeEntityLook(r)
	case protocol.OpEntityDestroy:
		return protocol.DecodeEntityDestroy(r)
	case protocol.OpTimeUpdate:
		return protocol.DecodeTimeUpdate(r)
	default:
		return nil, errors.New("session_test: no downstream test decoder for opcode")
	}
}

func writeFrame(t *testing.T, conn net.Conn, p protocol.Packet) {
	t.Helper()
	w := protocol.NewWriter()
	w.U8(byte(p.Opcode()))
	p.Encode(w)
	if _, err := conn.Write(w.Bytes()); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
}

// doLogin runs the client side of the login sequence and returns the
// allocated entity id and final PlayerPosLook packet.
func doLogin(t *testing.T, conn net.Conn, fr *frameReader, username string) (int32, protocol.PlayerPosLook) {
	t.Helper()
	writeFrame(t, conn, protocol.HandshakeC2S{Username: username})
	if op, _ := fr.next(t); op != protocol.OpHandshake {
		t.Fatalf("expected Handshake reply, got 0x%02X", op)
	}

	writeFrame(t, conn, protocol.LoginRequestC2S{ProtocolVersion: 8, Username: username})
	op, pkt := fr.next(t)
	if op != protocol.OpLoginRequest {
		t.Fatalf("expected LoginRequest reply, got 0x%02X", op)
	}
	eid := pkt.(protocol.LoginRequestS2C).EntityID

	chunkPairs := 0
	for {
		op, pkt := fr.next(t)
		if op == protocol.OpPreChunk {
			chunkPairs++
			op2, _ := fr.next(t)
			if op2 != protocol.OpMapChunk {
				t.Fatalf("expected MapChunk after PreChunk, got 0x%02X", op2)
			}
			continue
		}
		if op == protocol.OpWindowItems {
			items := pkt.(protocol.WindowItems)
			if len(items.Items) != entity.InventorySlots {
				t.Fatalf("WindowItems has %d slots, want %d", len(items.Items), entity.InventorySlots)
			}
			break
		}
		t.Fatalf("unexpected opcode 0x%02X while draining chunk window", op)
	}
	if chunkPairs != 100 {
		t.Fatalf("chunk pairs = %d, want 100", chunkPairs)
	}

	if op, _ := fr.next(t); op != protocol.OpSpawnPosition {
		t.Fatalf("expected SpawnPosition, got 0x%02X", op)
	}

	op, pkt = fr.next(t)
	if op != protocol.OpPlayerPosLook {
		t.Fatalf("expected PlayerPosLook, got 0x%02X", op)
	}
	return eid, pkt.(protocol.PlayerPosLook)
}

func newSessionPipe(t *testing.T, w *world.World, sched *scheduler.Scheduler, id uint64) (net.Conn, *frameReader) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	sess := New(id, serverConn, "test", testLogger(), sched, w, entity.NewIDAllocator())
	go sess.Serve()
	t.Cleanup(func() { clientConn.Close() })
	return clientConn, newFrameReader(clientConn)
}

func TestLoginHappyPath(t *testing.T) {
	w := newTestWorld(t)
	sched := startScheduler(t)
	conn, fr := newSessionPipe(t, w, sched, 1)

	eid, posLook := doLogin(t, conn, fr, "alice")
	if eid != 100 {
		t.Errorf("entity id = %d, want 100", eid)
	}
	if posLook.X != 0 || posLook.Y != 64 || posLook.Z != 0 {
		t.Errorf("spawn PlayerPosLook = %+v, want x=0,y=64,z=0", posLook)
	}
	if posLook.Stance != posLook.Y+eyeHeight {
		t.Errorf("stance = %v, want y+%v", posLook.Stance, eyeHeight)
	}
}

func TestProtocolVersionMismatch(t *testing.T) {
	w := newTestWorld(t)
	sched := startScheduler(t)
	conn, fr := newSessionPipe(t, w, sched, 1)

	writeFrame(t, conn, protocol.HandshakeC2S{Username: "alice"})
	if op, _ := fr.next(t); op != protocol.OpHandshake {
		t.Fatalf("expected Handshake reply, got 0x%02X", op)
	}

	writeFrame(t, conn, protocol.LoginRequestC2S{ProtocolVersion: 7, Username: "alice"})
	op, pkt := fr.next(t)
	if op != protocol.OpKick {
		t.Fatalf("expected Kick, got 0x%02X", op)
	}
	if got := pkt.(protocol.Kick).Reason; got != "Invalid protocol version!" {
		t.Errorf("kick reason = %q", got)
	}
}

func TestUsernameTampering(t *testing.T) {
	w := newTestWorld(t)
	sched := startScheduler(t)
	conn, fr := newSessionPipe(t, w, sched, 1)

	writeFrame(t, conn, protocol.HandshakeC2S{Username: "alice"})
	if op, _ := fr.next(t); op != protocol.OpHandshake {
		t.Fatalf("expected Handshake reply, got 0x%02X", op)
	}

	writeFrame(t, conn, protocol.LoginRequestC2S{ProtocolVersion: 8, Username: "bob"})
	op, pkt := fr.next(t)
	if op != protocol.OpKick {
		t.Fatalf("expected Kick, got 0x%02X", op)
	}
	if got := pkt.(protocol.Kick).Reason; got != "The server rejected your login request." {
		t.Errorf("kick reason = %q", got)
	}
}

// fakeBroadcastable is a world.Broadcastable test double that records
// every packet sent to it instead of owning a real transport.
type fakeBroadcastable struct {
	player *entity.Player

	mu   sync.Mutex
	sent []protocol.Packet
}

func (f *fakeBroadcastable) SendPacket(p protocol.Packet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
	return nil
}

func (f *fakeBroadcastable) Player() *entity.Player { return f.player }

func (f *fakeBroadcastable) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeBroadcastable) last() protocol.Packet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestChunkTransitionBroadcastsEntityMove(t *testing.T) {
	w := newTestWorld(t)
	sched := startScheduler(t)
	conn, fr := newSessionPipe(t, w, sched, 1)

	eid, _ := doLogin(t, conn, fr, "alice")

	bystander := &fakeBroadcastable{player: entity.NewPlayer(500, "bob", 2)}
	bystander.player.Chunk = entity.ChunkPos{CX: 1, CZ: 0}
	bystander.player.InChunk = true
	w.Chunk(1, 0).AddOccupant(bystander.player.ID)
	w.AddSession(bystander)

	writeFrame(t, conn, protocol.PlayerPosLook{
		X: 20, Y: 64, Stance: 65.62, Z: 0, Yaw: 0, Pitch: 0, OnGround: true,
	})

	waitFor(t, func() bool { return bystander.len() > 0 })
	mv, ok := bystander.last().(protocol.EntityMove)
	if !ok {
		t.Fatalf("last packet = %#v, want EntityMove", bystander.last())
	}
	if mv.EntityID != eid {
		t.Errorf("EntityMove.EntityID = %d, want %d", mv.EntityID, eid)
	}
	if mv.X != protocol.AbsInt(20) {
		t.Errorf("EntityMove.X = %d, want %d", mv.X, protocol.AbsInt(20))
	}
}

func TestSmallDeltaBroadcastsRelativeMove(t *testing.T) {
	w := newTestWorld(t)
	sched := startScheduler(t)
	conn, fr := newSessionPipe(t, w, sched, 1)

	eid, _ := doLogin(t, conn, fr, "alice")

	bystander := &fakeBroadcastable{player: entity.NewPlayer(500, "bob", 2)}
	bystander.player.Chunk = entity.ChunkPos{CX: 0, CZ: 0}
	bystander.player.InChunk = true
	w.Chunk(0, 0).AddOccupant(bystander.player.ID)
	w.AddSession(bystander)

	writeFrame(t, conn, protocol.PlayerPosLook{
		X: 1, Y: 64, Stance: 65.62, Z: 1, Yaw: 0, Pitch: 0, OnGround: true,
	})

	waitFor(t, func() bool { return bystander.len() > 0 })
	rel, ok := bystander.last().(protocol.EntityRelativePosLook)
	if !ok {
		t.Fatalf("last packet = %#v, want EntityRelativePosLook", bystander.last())
	}
	if rel.EntityID != eid {
		t.Errorf("EntityID = %d, want %d", rel.EntityID, eid)
	}
	if rel.DX != 32 || rel.DY != 0 || rel.DZ != 32 {
		t.Errorf("delta = (%d,%d,%d), want (32,0,32)", rel.DX, rel.DY, rel.DZ)
	}
}

func TestDisconnectBroadcastsEntityDestroy(t *testing.T) {
	w := newTestWorld(t)
	sched := startScheduler(t)
	conn, fr := newSessionPipe(t, w, sched, 1)

	eid, _ := doLogin(t, conn, fr, "alice")

	bystander := &fakeBroadcastable{player: entity.NewPlayer(500, "bob", 2)}
	bystander.player.Chunk = entity.ChunkPos{CX: 0, CZ: 0}
	bystander.player.InChunk = true
	w.Chunk(0, 0).AddOccupant(bystander.player.ID)
	w.AddSession(bystander)

	conn.Close()

	waitFor(t, func() bool { return bystander.len() > 0 })
	destroy, ok := bystander.last().(protocol.EntityDestroy)
	if !ok {
		t.Fatalf("last packet = %#v, want EntityDestroy", bystander.last())
	}
	if destroy.EntityID != eid {
		t.Errorf("EntityDestroy.EntityID = %d, want %d", destroy.EntityID, eid)
	}
}
