package core

import (
	"context"
	"time"
)

// GameLoop drives Server.Step at the configured tick rate.
type GameLoop struct {
	server   *Server
	tickRate int
}

func NewGameLoop(server *Server, tickRate int) *GameLoop {
	return &GameLoop{
		server:   server,
		tickRate: tickRate,
	}
}

// Run ticks until ctx is cancelled.
func (g *GameLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	g.server.log.Info("game loop started", "tickRate", g.tickRate)

	for {
		select {
		case <-ctx.Done():
			g.server.log.Info("game loop stopped")
			return nil
		case <-ticker.C:
			g.server.Step()
		}
	}
}
