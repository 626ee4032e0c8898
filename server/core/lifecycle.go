package core

import (
	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/tags"
	"github.com/yohamta/donburi"
)

// handleClientExit is the single cleanup path for a client leaving its lobby,
// whether it asked to, disconnected or the game ended. Every step is
// remove-if-present so running it twice leaves the same state as once.
func (s *Server) handleClientExit(ev ClientExitLobby) {
	client := ev.Client
	player := netconfig.PlayerOf(client)

	// 1. reverse index
	lobbyEnt, indexed := s.lobbyInfos[client]
	delete(s.lobbyInfos, client)

	var lobbyEntry *donburi.Entry
	var lobby *components.LobbyData
	if indexed {
		if entry, ok := s.entry(lobbyEnt); ok {
			lobbyEntry = entry
			lobby = components.Lobby.Get(entry)
		} else {
			s.logLife.Debug("lobby already gone", "client", client)
		}
	}

	// 2. member list
	if lobby != nil && !lobby.Remove(client) {
		s.logLife.Warn("client indexed in lobby but not a member", "client", client, "lobby", lobby.ID)
	}

	// 3. full marker
	if lobbyEntry != nil && lobbyEntry.HasComponent(tags.LobbyFull) {
		lobbyEntry.RemoveComponent(tags.LobbyFull)
	}

	// 4. room membership
	if lobby != nil {
		s.rooms.RemoveClient(lobby.Room, client)
	} else {
		s.rooms.RemoveClientEverywhere(client)
	}

	// 5 and 6. owned entities, each removed from its room and the world
	despawned := 0
	for k := range s.players {
		e, ok := s.players[k][player]
		if !ok {
			continue
		}
		delete(s.players[k], player)
		if lobby != nil {
			s.rooms.RemoveEntity(lobby.Room, e)
		}
		s.despawn(e)
		despawned++
	}
	delete(s.sentOnce, client)

	if lobbyEntry == nil {
		if indexed || despawned > 0 {
			s.logLife.Debug("client exit cleaned up without lobby", "client", client, "reason", ev.Reason)
		}
		return
	}
	s.logLife.Info("client left lobby", "client", client, "lobby", lobby.ID, "reason", ev.Reason, "members", lobby.Len())
	s.membershipShrank(lobbyEntry)
}

// membershipShrank cancels a pending countdown and either destroys an empty
// idle lobby or tells the remaining members.
func (s *Server) membershipShrank(entry *donburi.Entry) {
	lobby := components.Lobby.Get(entry)
	sess := components.Session.Get(entry)

	if sess.State == netconfig.SessionCountdown {
		s.cancelCountdown(entry)
	}
	if lobby.Len() == 0 && !entry.HasComponent(tags.InGame) {
		s.destroyLobby(entry)
		return
	}
	if sess.State != netconfig.SessionEnded {
		s.broadcastLobbyStatus(entry)
	}
}
