package core

import (
	"slices"

	"github.com/automoto/orbitfall/components"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/automoto/orbitfall/tags"
	"github.com/yohamta/donburi"
)

// LobbyInfo is a read-only copy of one lobby's state.
type LobbyInfo struct {
	ID      netconfig.LobbyID
	Room    netconfig.RoomID
	Size    int
	Members []netconfig.ClientID
	Full    bool
	InGame  bool
	State   netconfig.SessionStateID
	Score   [netconfig.TeamCount]int
}

// Lobbies returns every live lobby in creation order. Tick goroutine only.
func (s *Server) Lobbies() []LobbyInfo {
	out := make([]LobbyInfo, 0, len(s.lobbies))
	for _, e := range s.lobbies {
		if info, ok := s.lobbyInfo(e); ok {
			out = append(out, info)
		}
	}
	return out
}

// LobbyOf returns the lobby a client is recorded in.
func (s *Server) LobbyOf(c netconfig.ClientID) (LobbyInfo, bool) {
	e, ok := s.lobbyInfos[c]
	if !ok {
		return LobbyInfo{}, false
	}
	return s.lobbyInfo(e)
}

func (s *Server) lobbyInfo(e donburi.Entity) (LobbyInfo, bool) {
	entry, ok := s.entry(e)
	if !ok {
		return LobbyInfo{}, false
	}
	lobby := components.Lobby.Get(entry)
	sess := components.Session.Get(entry)
	return LobbyInfo{
		ID:      lobby.ID,
		Room:    lobby.Room,
		Size:    lobby.Size,
		Members: slices.Clone(lobby.Members),
		Full:    entry.HasComponent(tags.LobbyFull),
		InGame:  entry.HasComponent(tags.InGame),
		State:   sess.State,
		Score:   sess.Score,
	}, true
}
