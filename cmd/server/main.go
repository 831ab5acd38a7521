// Command server runs a betacraft-server instance against a world
// directory on disk.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/OCharnyshevich/beta-craft-server/internal/config"
	"github.com/OCharnyshevich/beta-craft-server/internal/netsrv"
	"github.com/OCharnyshevich/beta-craft-server/internal/scheduler"
	"github.com/OCharnyshevich/beta-craft-server/internal/world"
)

func main() {
	cfg := config.DefaultConfig()
	flag.IntVar(&cfg.Port, "port", cfg.Port, "TCP port to listen on")
	flag.StringVar(&cfg.WorldDirectory, "world-directory", cfg.WorldDirectory, "world save directory")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := world.Load(log, cfg.WorldDirectory)
	if err != nil {
		log.Error("loading world", "directory", cfg.WorldDirectory, "error", err)
		os.Exit(1)
	}
	log.Info("world loaded", "directory", cfg.WorldDirectory, "chunks", w.ChunkCount(), "seed", w.Seed)

	sched := scheduler.New(log, 4096)
	go sched.Run(ctx)

	ticker := scheduler.NewTicker(sched, func() { w.Tick() })
	go ticker.Run(ctx)

	srv := netsrv.New(log, sched, w)
	if err := srv.ListenAndServe(ctx, cfg.Port); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}
