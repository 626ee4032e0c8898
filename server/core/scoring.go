package core

import (
	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/config"
	"github.com/automoto/orbitfall/shared/netcomponents"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/yohamta/donburi/ecs"
)

// ApplyDamage hurts target's ship. Damage only counts while the ship's lobby
// is in game. Lethal damage publishes a KillEvent processed later this tick.
func (s *Server) ApplyDamage(target, attacker netconfig.PlayerID, amount int) bool {
	ship, ok := s.playerEntry(kindSpaceship, target)
	if !ok || amount <= 0 {
		return false
	}
	lobby, ok := s.entry(components.Ship.Get(ship).Lobby)
	if !ok || components.Session.Get(lobby).State != netconfig.SessionInGame {
		return false
	}

	h := netcomponents.NetHealth.Get(ship)
	if h.Dead() {
		return false
	}
	h.Current -= amount
	if attacker != target && !attacker.IsLocal() {
		components.DamageLog.Get(ship).Record(attacker, s.clock)
	}
	if h.Dead() {
		KillEventType.Publish(s.world, KillEvent{Lobby: lobby.Entity(), Victim: target, Killer: attacker})
	}
	return true
}

// systemKills processes kill events published by gameplay this tick.
func (s *Server) systemKills(_ *ecs.ECS) {
	KillEventType.ProcessEvents(s.world)
}

// handleKill updates KDA, scores the kill for the victim's opposing team and
// respawns the victim. Team kills, self kills and environment deaths count
// as deaths but score nothing.
func (s *Server) handleKill(ev KillEvent) {
	lobbyEntry, ok := s.entry(ev.Lobby)
	if !ok {
		return
	}
	victim, ok := s.playerEntry(kindSpaceship, ev.Victim)
	if !ok {
		return
	}
	victimTeam := components.Ship.Get(victim).Team
	victimKDA := components.KDA.Get(victim)
	victimKDA.AddDeath()

	killer, hasKiller := s.playerEntry(kindSpaceship, ev.Killer)
	scored := hasKiller && ev.Killer != ev.Victim && components.Ship.Get(killer).Team != victimTeam
	if scored {
		components.KDA.Get(killer).AddKill()
		for _, p := range components.DamageLog.Get(victim).Assisters(ev.Killer, s.clock, config.Scoring.AssistWindow) {
			if a, ok := s.playerEntry(kindSpaceship, p); ok && components.Ship.Get(a).Team != victimTeam {
				components.KDA.Get(a).Assists++
			}
		}

		sess := components.Session.Get(lobbyEntry)
		if sess.State == netconfig.SessionInGame {
			sess.Score[victimTeam.Opponent()]++
			s.broadcastScore(lobbyEntry)
		}
	}

	s.logSess.Debug("kill", "victim", ev.Victim, "killer", ev.Killer, "scored", scored)
	s.placeAtSpawn(victim, lobbyEntry, victimTeam)
	s.restoreShip(victim)
}

// PlayerKDA returns a player's current stats.
func (s *Server) PlayerKDA(p netconfig.PlayerID) (components.KDAData, bool) {
	ship, ok := s.playerEntry(kindSpaceship, p)
	if !ok {
		return components.KDAData{}, false
	}
	return *components.KDA.Get(ship), true
}
