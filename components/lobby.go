package components

import (
	"slices"

	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/yohamta/donburi"
)

// LobbyData is a server-side matchmaking group of clients awaiting or playing
// one session. Member order is not significant.
type LobbyData struct {
	ID      netconfig.LobbyID
	Room    netconfig.RoomID
	Size    int // declared target size
	Members []netconfig.ClientID
}

var Lobby = donburi.NewComponentType[LobbyData]()

func (l *LobbyData) Len() int {
	return len(l.Members)
}

// HasRoom reports whether another member fits.
func (l *LobbyData) HasRoom() bool {
	return len(l.Members) < l.Size
}

func (l *LobbyData) Contains(c netconfig.ClientID) bool {
	return slices.Contains(l.Members, c)
}

// Add appends c unless the lobby is at capacity or c is already a member.
func (l *LobbyData) Add(c netconfig.ClientID) bool {
	if !l.HasRoom() || l.Contains(c) {
		return false
	}
	l.Members = append(l.Members, c)
	return true
}

// Remove swap-removes c. Returns false if c was not a member.
func (l *LobbyData) Remove(c netconfig.ClientID) bool {
	i := slices.Index(l.Members, c)
	if i < 0 {
		return false
	}
	last := len(l.Members) - 1
	l.Members[i] = l.Members[last]
	l.Members = l.Members[:last]
	return true
}
