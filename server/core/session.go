package core

import (
	"slices"

	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/shared/collision"
	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// EndReason records which condition ended a game.
type EndReason uint8

const (
	EndScore EndReason = iota
	EndTimer
)

func (r EndReason) String() string {
	if r == EndScore {
		return "score"
	}
	return "timer"
}

func (s *Server) startCountdown(entry *donburi.Entry) {
	sess := components.Session.Get(entry)
	if sess.State != netconfig.SessionWaiting {
		return
	}
	sess.State = netconfig.SessionCountdown
	sess.Countdown.Start(config.Session.Countdown)
	s.logSess.Info("countdown started", "lobby", components.Lobby.Get(entry).ID, "in", config.Session.Countdown)
}

// cancelCountdown returns a lobby that lost a member mid-countdown to Waiting.
func (s *Server) cancelCountdown(entry *donburi.Entry) {
	sess := components.Session.Get(entry)
	sess.Countdown.Stop()
	sess.State = netconfig.SessionWaiting
	s.logSess.Info("countdown cancelled", "lobby", components.Lobby.Get(entry).ID)
}

// systemSessions advances every lobby's state machine by one tick. In-game,
// the score check runs before the timer check, so a tick where both fire
// ends by score.
func (s *Server) systemSessions(_ *ecs.ECS) {
	for _, e := range slices.Clone(s.lobbies) {
		entry, ok := s.entry(e)
		if !ok {
			continue
		}
		sess := components.Session.Get(entry)
		switch sess.State {
		case netconfig.SessionCountdown:
			if sess.Countdown.Advance(s.dt) {
				s.startGame(entry)
			}
		case netconfig.SessionInGame:
			timeUp := sess.GameTimer.Advance(s.dt)
			switch {
			case sess.ScoreReached():
				s.endGame(entry, EndScore)
			case timeUp:
				s.endGame(entry, EndTimer)
			}
		}
	}
}

// startGame moves a lobby from Countdown to InGame: builds the arena from a
// fresh seed, swaps hangar spawn points for arena ones, respawns every ship
// and announces the start.
func (s *Server) startGame(entry *donburi.Entry) {
	lobby := components.Lobby.Get(entry)
	sess := components.Session.Get(entry)

	sess.Seed = s.opts.Seed()
	arena := collision.NewArena(sess.Seed)
	s.arenas[entry.Entity()] = arena
	lvl := arena.Level

	ships := s.lobbyShips(lobby)
	for _, ship := range ships {
		s.releaseSpawnClaim(ship)
	}
	s.destroySpawnPoints(entry)
	s.createSpawnPoints(entry, lvl, false)
	for _, ship := range ships {
		team := components.Ship.Get(ship).Team
		s.placeAtSpawn(ship, entry, team)
		s.restoreShip(ship)
		kda := components.KDA.Get(ship)
		*kda = components.KDAData{}
	}

	sess.Countdown.Stop()
	sess.State = netconfig.SessionInGame
	sess.Score = [netconfig.TeamCount]int{}
	sess.GameTimer.Start(config.Session.GameDuration)
	entry.AddComponent(tags.InGame)

	s.logSess.Info("game started", "lobby", lobby.ID, "seed", sess.Seed, "players", lobby.Len())
	s.outbox.Broadcast(lobby.Room, messages.StartGame{Seed: sess.Seed})
	s.broadcastScore(entry)
}

// endGame moves an in-game lobby to Ended, announces it once and sends every
// member through the regular exit path.
func (s *Server) endGame(entry *donburi.Entry, reason EndReason) {
	lobby := components.Lobby.Get(entry)
	sess := components.Session.Get(entry)
	if sess.State != netconfig.SessionInGame {
		return
	}

	sess.State = netconfig.SessionEnded
	sess.GameTimer.Stop()
	s.logSess.Info("game ended", "lobby", lobby.ID, "reason", reason, "score", sess.Score)
	s.outbox.Broadcast(lobby.Room, messages.EndGame{})
	if entry.HasComponent(tags.InGame) {
		entry.RemoveComponent(tags.InGame)
	}

	id := entry.Entity()
	for _, c := range slices.Clone(lobby.Members) {
		ClientExitLobbyEvent.Publish(s.world, ClientExitLobby{Client: c, Reason: ExitGameOver})
	}
	ClientExitLobbyEvent.ProcessEvents(s.world)

	// With no members the last exit already destroyed the lobby.
	if entry, ok := s.entry(id); ok && components.Lobby.Get(entry).Len() == 0 {
		s.destroyLobby(entry)
	}
}

func (s *Server) broadcastScore(entry *donburi.Entry) {
	sess := components.Session.Get(entry)
	msg := messages.GameScore{MaxScore: clampU8(sess.MaxScore)}
	for i, v := range sess.Score {
		msg.Scores[i] = clampU8(v)
	}
	s.outbox.Broadcast(components.Lobby.Get(entry).Room, msg)
}

// lobbyShips returns the spaceships of the lobby's members in member order.
func (s *Server) lobbyShips(lobby *components.LobbyData) []*donburi.Entry {
	var out []*donburi.Entry
	for _, c := range lobby.Members {
		if ship, ok := s.playerEntry(kindSpaceship, netconfig.PlayerOf(c)); ok {
			out = append(out, ship)
		}
	}
	return out
}

// restoreShip resets health, velocity and damage history after a (re)spawn.
func (s *Server) restoreShip(ship *donburi.Entry) {
	h := netcomponents.NetHealth.Get(ship)
	h.Current = h.Max
	components.DamageLog.Get(ship).Clear()
}

func clampU8(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
