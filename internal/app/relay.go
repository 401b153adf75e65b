package app

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/wirechat-peer/internal/config"
	"github.com/vovakirdan/wirechat-peer/internal/core"
	"github.com/vovakirdan/wirechat-peer/internal/log"
	transporthttp "github.com/vovakirdan/wirechat-peer/internal/transport/http"
)

// Relay wires the hub and the HTTP transport.
type Relay struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	log             *zerolog.Logger
}

// NewRelay constructs the relay with provided configuration.
func NewRelay(cfg *config.RelayConfig, logger *zerolog.Logger) *Relay {
	hub := core.NewHub(core.Liveness{
		EvasiveAfter:  cfg.EvasiveAfter,
		ExpireAfter:   cfg.ExpireAfter,
		SweepInterval: cfg.SweepInterval,
	}, log.Component(logger, "hub"))

	return &Relay{
		server:          transporthttp.NewServer(hub, cfg, log.Component(logger, "http")),
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		log:             logger,
	}
}

// Run starts the hub and the HTTP server and blocks until context cancellation or fatal error.
func (a *Relay) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		a.log.Info().Str("addr", a.server.Addr).Msg("relay listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
