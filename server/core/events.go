package core

import (
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ExitReason records which trigger produced a ClientExitLobby.
type ExitReason uint8

const (
	ExitRequested ExitReason = iota
	ExitDisconnected
	ExitGameOver
)

func (r ExitReason) String() string {
	switch r {
	case ExitRequested:
		return "requested"
	case ExitDisconnected:
		return "disconnected"
	case ExitGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// ClientExitLobby is the single fan-in event for every way a client leaves a lobby.
type ClientExitLobby struct {
	Client netconfig.ClientID
	Reason ExitReason
}

// KillEvent is published when damage drops a ship to zero health.
type KillEvent struct {
	Lobby  donburi.Entity
	Victim netconfig.PlayerID
	Killer netconfig.PlayerID
}

// Inbound wraps a transport command as a world event.
type Inbound struct {
	cmd command
}

var (
	InboundEvent         = events.NewEventType[Inbound]()
	ClientExitLobbyEvent = events.NewEventType[ClientExitLobby]()
	KillEventType        = events.NewEventType[KillEvent]()
)
