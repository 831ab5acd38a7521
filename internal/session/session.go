// Package session implements the per-connection login→play state
// machine, packet framing, and dispatch, plus the movement/visibility
// broadcast logic that rides on top of it.
package session

import (
	"errors"
	"io"
	"log/slog"

	"github.com/OCharnyshevich/beta-craft-server/internal/entity"
	"github.com/OCharnyshevich/beta-craft-server/internal/protocol"
	"github.com/OCharnyshevich/beta-craft-server/internal/scheduler"
	"github.com/OCharnyshevich/beta-craft-server/internal/world"
)

// State is one of the four login→play lifecycle states.
type State int

const (
	StateAnonymous State = iota
	StateHandshake
	StateLoggingIn
	StatePlayGame
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "ANONYMOUS"
	case StateHandshake:
		return "HANDSHAKE"
	case StateLoggingIn:
		return "LOGGING_IN"
	case StatePlayGame:
		return "PLAY_GAME"
	default:
		return "UNKNOWN"
	}
}

// allowedOpcodes is the state->opcode table gating dispatch.
var allowedOpcodes = map[State]map[protocol.Opcode]bool{
	StateAnonymous: {
		protocol.OpHandshake: true,
	},
	StateHandshake: {
		protocol.OpLoginRequest: true,
	},
	StateLoggingIn: {
		protocol.OpKeepAlive: true,
	},
	StatePlayGame: {
		protocol.OpKeepAlive:       true,
		protocol.OpChatMessage:     true,
		protocol.OpPlayerOnGround:  true,
		protocol.OpPlayerPosition:  true,
		protocol.OpPlayerLook:      true,
		protocol.OpPlayerPosLook:   true,
		protocol.OpPlayerDigging:   true,
		protocol.OpEntityAnimation: true,
	},
}

// Transport is the byte-stream the session reads frames from and
// writes packets to. net.Conn satisfies it directly; tests use
// net.Pipe or an in-memory fake.
type Transport io.ReadWriteCloser

const outboundQueueDepth = 256

// Session is one connection's state machine.
type Session struct {
	id        uint64
	transport Transport
	addr      string
	log       *slog.Logger

	sched *scheduler.Scheduler
	world *world.World
	ids   *entity.IDAllocator

	state             State
	handshakeUsername string
	player            *entity.Player

	recv []byte

	outbound chan []byte
	closed   chan struct{}
}

// New constructs a Session in state ANONYMOUS; every accepted
// connection produces exactly one.
func New(id uint64, t Transport, addr string, log *slog.Logger, sched *scheduler.Scheduler, w *world.World, ids *entity.IDAllocator) *Session {
	return &Session{
		id:        id,
		transport: t,
		addr:      addr,
		log:       log.With("session", id, "addr", addr),
		sched:     sched,
		world:     w,
		ids:       ids,
		state:     StateAnonymous,
		outbound:  make(chan []byte, outboundQueueDepth),
		closed:    make(chan struct{}),
	}
}

// Player returns the session's player, or nil before PLAY_GAME
// (world.Broadcastable).
func (s *Session) Player() *entity.Player { return s.player }

// SendPacket encodes p and appends it to the session's outbound
// buffer. This is what makes a broadcast synchronous from the
// dispatching handler's perspective — the bytes are queued before
// SendPacket returns, even though the writer goroutine flushes them to
// the socket asynchronously.
func (s *Session) SendPacket(p protocol.Packet) error {
	w := protocol.NewWriter()
	w.U8(byte(p.Opcode()))
	p.Encode(w)
	select {
	case s.outbound <- w.Bytes():
		return nil
	case <-s.closed:
		return errors.New("session: closed")
	default:
		// Outbound buffer full: treat like any other unresponsive
		// client and tear the connection down rather than block the
		// single scheduler goroutine on a slow reader.
		s.log.Warn("outbound buffer full, disconnecting")
		s.Close()
		return errors.New("session: outbound buffer full")
	}
}

// Close tears down the transport; safe to call more than once.
func (s *Session) Close() {
	select {
	case <-s.closed:
		return
	default:
		close(s.closed)
		_ = s.transport.Close()
	}
}

// writeLoop drains the outbound queue to the transport. It is the only
// goroutine that ever writes to the transport.
func (s *Session) writeLoop() {
	for {
		select {
		case b := <-s.outbound:
			if _, err := s.transport.Write(b); err != nil {
				s.Close()
				return
			}
		case <-s.closed:
			return
		}
	}
}

// Serve runs the session's read/frame loop on the calling goroutine
// until the connection closes, dispatching each decoded packet onto
// the scheduler — dispatch never runs on the reader goroutine itself.
// It returns once the transport is closed.
func (s *Session) Serve() {
	go s.writeLoop()
	defer s.teardown()

	buf := make([]byte, 4096)
	for {
		n, err := s.transport.Read(buf)
		if n > 0 {
			s.recv = append(s.recv, buf[:n]...)
			s.drainFrames()
		}
		if err != nil {
			return
		}
	}
}

// drainFrames peeks the opcode, checks the catalog, and decodes; a
// short read leaves the buffer untouched so the next Read can extend
// it and we retry the whole frame.
func (s *Session) drainFrames() {
	for len(s.recv) > 0 {
		op := protocol.Opcode(s.recv[0])
		spec, ok := protocol.Lookup(op)
		if !ok {
			s.postKick(protocol.ErrBadOpcode)
			return
		}
		if len(s.recv) < 1+spec.MinSize {
			return // wait for more bytes
		}

		r := protocol.NewReader(s.recv[1:])
		pkt, err := protocol.DecodeUpstream(op, r)
		if errors.Is(err, protocol.ErrShortRead) {
			return // wait for more bytes
		}
		if err != nil {
			s.postKick(err)
			return
		}

		consumed := 1 + r.Consumed()
		s.recv = s.recv[consumed:]

		s.sched.Post(func() {
			s.dispatch(op, pkt)
		})
	}
}

// dispatch runs on the scheduler goroutine: state-gate the opcode,
// then hand it to the matching handler.
func (s *Session) dispatch(op protocol.Opcode, pkt protocol.Packet) {
	if !allowedOpcodes[s.state][op] {
		s.kick(protocol.ErrBadState)
		return
	}

	switch op {
	case protocol.OpHandshake:
		s.handleHandshake(pkt.(protocol.HandshakeC2S))
	case protocol.OpLoginRequest:
		s.handleLoginRequest(pkt.(protocol.LoginRequestC2S))
	case protocol.OpKeepAlive:
		// no-op: keeps the connection alive.
	case protocol.OpChatMessage:
		s.handleChatMessage(pkt.(protocol.ChatMessage))
	case protocol.OpPlayerOnGround:
		p := pkt.(protocol.PlayerOnGround)
		s.player.OnGround = p.OnGround
	case protocol.OpPlayerPosition:
		s.handlePlayerPosition(pkt.(protocol.PlayerPosition))
	case protocol.OpPlayerLook:
		s.handlePlayerLook(pkt.(protocol.PlayerLook))
	case protocol.OpPlayerPosLook:
		s.handlePlayerPosLook(pkt.(protocol.PlayerPosLook))
	case protocol.OpPlayerDigging:
		// Parsed for protocol completeness; block changes from
		// digging are never applied to the world.
	case protocol.OpEntityAnimation:
		s.handleEntityAnimation(pkt.(protocol.EntityAnimation))
	}
}

func (s *Session) handleChatMessage(p protocol.ChatMessage) {
	if s.player == nil {
		return
	}
	s.world.Broadcast(protocol.ChatMessage{Message: "<" + s.player.Username + "> " + p.Message})
}

func (s *Session) handleEntityAnimation(p protocol.EntityAnimation) {
	if s.player == nil {
		return
	}
	s.world.BroadcastToChunk(s.player.Chunk, s.player.ID, protocol.EntityAnimation{
		EntityID:  s.player.ID,
		Animation: p.Animation,
	})
}

// postKick schedules a kick to run on the scheduler goroutine; it may
// be called from the reader goroutine (bad opcode/short-circuit decode
// failure), so it must not touch session state directly.
func (s *Session) postKick(err error) {
	s.sched.Post(func() { s.kick(err) })
}

// kick sends a Kick packet with the wire reason for err and closes the
// connection.
func (s *Session) kick(err error) {
	reason := protocol.KickReason(err)
	s.log.Info("kicking session", "reason", reason, "state", s.state)
	_ = s.SendPacket(protocol.Kick{Reason: reason})
	s.Close()
}

// teardown runs disconnect cleanup. It always executes on the
// scheduler goroutine so it can safely touch World/Chunk state.
func (s *Session) teardown() {
	done := make(chan struct{})
	s.sched.Post(func() {
		defer close(done)
		s.world.RemoveSession(s)
		if s.player == nil {
			return
		}
		if s.player.InChunk {
			c := s.world.Chunk(s.player.Chunk.CX, s.player.Chunk.CZ)
			if c != nil {
				c.RemoveOccupant(s.player.ID)
			}
			s.world.BroadcastToChunk(s.player.Chunk, s.player.ID, protocol.EntityDestroy{EntityID: s.player.ID})
		}
		s.player.Inventory = entity.NewInventory()
	})
	<-done
}
