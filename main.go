// Command orbitfall runs the game server (-mode server) or the terminal
// client (-mode client).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/orbitfall/assets"
	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/network"
	"github.com/automoto/orbitfall/scenes"
	"github.com/automoto/orbitfall/server/core"
	"github.com/automoto/orbitfall/shared/leveldata"
	"github.com/automoto/orbitfall/shared/linkcond"
	"github.com/automoto/orbitfall/shared/protocol"
	"github.com/automoto/orbitfall/systems"
	"github.com/automoto/orbitfall/ui"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

const clientLogFile = "orbitfall.log"

func main() {
	settings, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if settings.Mode == "client" {
		err = runClient(ctx, settings)
	} else {
		err = runServer(ctx, settings, ui.NewLogger(os.Stderr, settings.Level()))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*leveldata.Level, error) {
	// Register network components for serialization on both sides.
	if err := protocol.RegisterComponents(); err != nil {
		return nil, fmt.Errorf("register components: %w", err)
	}
	hangar, err := leveldata.LoadHangar(assets.FS(), assets.HangarPath)
	if err != nil {
		return nil, fmt.Errorf("load hangar: %w", err)
	}
	return hangar, nil
}

func runServer(ctx context.Context, s *config.Settings, logger *log.Logger) error {
	hangar, err := setup()
	if err != nil {
		return err
	}

	conns := core.NewConnSink()
	var sink core.Sink = conns
	if s.ServerLink.Enabled() {
		logger.Warn("simulating a degraded link", "latency", s.ServerLink.Latency, "jitter", s.ServerLink.Jitter, "loss", s.ServerLink.Loss)
		sink = core.NewConditionedSink(conns, linkcond.Conditions(s.ServerLink), uint64(time.Now().UnixNano()))
	}

	server := core.NewServer(core.Options{
		TickRate:       s.TickRate,
		BroadcastEvery: s.BroadcastEvery(),
		ProtocolID:     s.ProtocolID,
		PrivateKey:     s.PrivateKey,
		Hangar:         hangar,
		Logger:         logger,
	}, sink)
	transport := core.NewTransport(server.Inbox(), conns, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return core.NewGameLoop(server, s.TickRate).Run(ctx)
	})
	g.Go(func() error {
		return transport.Serve(ctx, s.ServerHost, uint(s.ServerPort), s.CompressionMode())
	})
	if s.MasterURL != "" {
		reg := core.NewRegistration(s.MasterURL, s.ServerName, s.Addr(), config.Network.Version, s.Region,
			config.Lobby.MaxPlayers, server.Stats, logger)
		g.Go(func() error {
			return reg.Run(ctx)
		})
	}

	logger.Info("server starting", "addr", s.Addr(), "tickRate", s.TickRate, "broadcast", s.BroadcastInterval)
	return g.Wait()
}

func runClient(ctx context.Context, s *config.Settings) error {
	hud := ui.WantHUD(s.HUD)
	out := os.Stderr
	if hud {
		f, err := ui.LogFile(clientLogFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := ui.NewLogger(out, s.Level())

	profiles := systems.OpenProfileStore(logger)
	scenes.ApplyProfile(s, profiles.Load())

	hangar, err := setup()
	if err != nil {
		return err
	}

	client := network.NewClient(network.Options{
		ProtocolID: s.ProtocolID,
		PrivateKey: s.PrivateKey,
		PlayerName: s.PlayerName,
		Version:    config.Network.Version,
		Link:       linkcond.Conditions(s.ClientLink),
		Logger:     logger,
	})

	opts := scenes.Options{
		Settings: s,
		Hangar:   hangar,
		View:     ui.NewLogView(logger),
		Logger:   logger,
	}
	if hud {
		h, err := ui.NewHUD()
		if err != nil {
			return fmt.Errorf("start hud: %w", err)
		}
		defer h.Close()
		go h.Poll()
		opts.View, opts.Drawer, opts.Keys = h, h, h.Keys()
	}

	err = scenes.NewSession(client, opts).Run(ctx)
	if saveErr := profiles.Save(scenes.ProfileOf(s)); saveErr != nil {
		logger.Warn("profile not saved", "err", saveErr)
	}
	return err
}
