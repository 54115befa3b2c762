package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/playlists"
	"github.com/desertthunder/plx/internal/server"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// MetricsServe serves /metrics and /health until interrupted. With --audit it also checks the
// order of every playlist on that interval, which keeps the task metrics moving.
//
// This goroutine hosts the loop: it drains the bridge between server and ticker events.
func (r *Runner) MetricsServe(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(cmd); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := r.config.Server.Addr()
	if cmd.IsSet("addr") {
		addr = cmd.String("addr")
	}
	logger := shared.WithLogger(r.logger, "component", "server")
	router := server.New(logger, r.metrics.Handler(), r.health)

	errc := make(chan error, 1)
	go func() { errc <- server.Serve(ctx, addr, router, logger) }()

	scope := tasks.NewScope("audit")
	defer scope.Close()

	var tick <-chan time.Time
	if every := cmd.Duration("audit"); every > 0 {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		tick = ticker.C
		r.audit(scope)
	}

	for {
		select {
		case err := <-errc:
			return err
		case <-tick:
			r.audit(scope)
		case <-r.bridge.Queue.Ready():
			r.bridge.Loop.Drain()
		}
	}
}

// health reports the database as unavailable when it stops answering pings.
func (r *Runner) health(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	return r.db.PingContext(ctx)
}

// audit checks the order of every playlist and logs the ones that are not dense.
func (r *Runner) audit(scope *tasks.Scope) {
	onError := func(e *tasks.Error) { r.logger.Error("audit failed", "error", e) }

	err := r.manager.GetPlaylists(scope, playlists.Callbacks[[]*models.Playlist]{
		OnSuccess: func(pls []*models.Playlist) {
			for _, p := range pls {
				err := r.manager.CheckOrder(scope, p.ID(), playlists.Callbacks[playlists.OrderReport]{
					OnSuccess: func(report playlists.OrderReport) {
						if !report.OK() {
							r.logger.Warn("playlist order is broken", "playlist", report.Playlist, "problem", report.Problem)
							return
						}
						r.logger.Debug("playlist order ok", "playlist", report.Playlist, "members", report.Members)
					},
					OnError: onError,
				})
				if err != nil {
					r.logger.Warn("audit skipped playlist", "playlist", p.ID(), "error", err)
				}
			}
		},
		OnError: onError,
	})
	if err != nil {
		r.logger.Warn("audit skipped", "error", err)
	}
}
