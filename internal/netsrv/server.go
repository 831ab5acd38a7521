// Package netsrv owns the TCP listener and turns each accepted
// connection into a session.Session, wiring it to the shared world and
// scheduler.
package netsrv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"

	"github.com/OCharnyshevich/beta-craft-server/internal/entity"
	"github.com/OCharnyshevich/beta-craft-server/internal/scheduler"
	"github.com/OCharnyshevich/beta-craft-server/internal/session"
	"github.com/OCharnyshevich/beta-craft-server/internal/world"
)

// Server accepts TCP connections and serves one Session per connection.
type Server struct {
	log   *slog.Logger
	sched *scheduler.Scheduler
	world *world.World
	ids   *entity.IDAllocator

	nextSessionID atomic.Uint64
}

// New constructs a Server. sched and w must already be running/loaded.
func New(log *slog.Logger, sched *scheduler.Scheduler, w *world.World) *Server {
	return &Server{
		log:   log,
		sched: sched,
		world: w,
		ids:   entity.NewIDAllocator(),
	}
}

// ListenAndServe binds port and accepts connections until ctx is
// cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("netsrv: listen: %w", err)
	}
	defer ln.Close()

	s.log.Info("listening", "port", port)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("netsrv: accept: %w", err)
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	id := s.nextSessionID.Add(1)
	addr := conn.RemoteAddr().String()
	s.log.Info("connection accepted", "session", id, "addr", addr)

	sess := session.New(id, conn, addr, s.log, s.sched, s.world, s.ids)
	sess.Serve()

	s.log.Info("connection closed", "session", id, "addr", addr)
}
