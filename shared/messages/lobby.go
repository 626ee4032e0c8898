package messages

import "github.com/automoto/orbitfall/shared/netconfig"

// Matchmake is sent by an authenticated client to request a lobby of the given size.
type Matchmake struct {
	LobbySize uint8
}

// ExitLobby asks the server to remove the sender from its current lobby.
type ExitLobby struct{}

// LobbyData acknowledges a successful matchmake with the room the client was bound to.
type LobbyData struct {
	RoomID netconfig.RoomID
}

// LobbyStatus is broadcast to a lobby's room on every membership change.
type LobbyStatus struct {
	RoomID      netconfig.RoomID
	ClientCount uint8
}

// StartGame is broadcast when a lobby's countdown finishes.
type StartGame struct {
	Seed uint32
}

// EndGame is broadcast once when a session ends, right before members are removed.
type EndGame struct{}

// GameScore is broadcast to the room on every score change.
type GameScore struct {
	Scores   [netconfig.TeamCount]uint8
	MaxScore uint8
}

// Leader returns the team with the highest score and false on a tie.
func (g GameScore) Leader() (netconfig.Team, bool) {
	best := netconfig.Team(0)
	tied := false
	for i := 1; i < netconfig.TeamCount; i++ {
		switch {
		case g.Scores[i] > g.Scores[best]:
			best = netconfig.Team(i)
			tied = false
		case g.Scores[i] == g.Scores[best]:
			tied = true
		}
	}
	return best, !tied
}
