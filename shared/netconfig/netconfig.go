// Package netconfig defines lightweight types shared between client and server
// for network serialization. It must have zero dependencies on the ECS or the
// transport so both binaries and the tests can use it freely.
package netconfig

import "fmt"

// ClientID identifies a network connection. IDs are allocated by the server
// on connect and never reused while the process runs.
type ClientID uint64

// PlayerID wraps a ClientID. The zero value is the LocalPlayer sentinel used
// by the offline sandbox lobby.
type PlayerID uint64

const LocalPlayer PlayerID = 0

// PlayerOf returns the networked PlayerID for a client.
func PlayerOf(c ClientID) PlayerID {
	return PlayerID(c)
}

func (p PlayerID) IsLocal() bool {
	return p == LocalPlayer
}

// Client returns the wrapped ClientID, or false for the local sentinel.
func (p PlayerID) Client() (ClientID, bool) {
	if p.IsLocal() {
		return 0, false
	}
	return ClientID(p), true
}

func (p PlayerID) String() string {
	if p.IsLocal() {
		return "local"
	}
	return fmt.Sprintf("client-%d", uint64(p))
}

// LobbyID is a server-assigned monotonic lobby identifier.
type LobbyID uint32

// RoomID identifies a transport-level visibility room.
type RoomID uint64

// RoomFor derives the room bound to a lobby. The mapping is deterministic so
// both the lobby manager and the room binding agree without a lookup table.
func RoomFor(l LobbyID) RoomID {
	return RoomID(l) + 1
}

// Team indexes the per-team score and spawn pools.
type Team uint8

const (
	TeamRed Team = iota
	TeamBlue

	TeamCount = 2
)

// Opponent returns the other team.
func (t Team) Opponent() Team {
	return (t + 1) % TeamCount
}

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// SessionStateID represents the state of a lobby's game session.
type SessionStateID int

const (
	SessionWaiting   SessionStateID = iota // Lobby not full
	SessionCountdown                       // Full, counting down to start
	SessionInGame                          // Active gameplay
	SessionEnded                           // Game over, members leaving
)

func (s SessionStateID) String() string {
	switch s {
	case SessionWaiting:
		return "waiting"
	case SessionCountdown:
		return "countdown"
	case SessionInGame:
		return "in-game"
	case SessionEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// SyncMode controls how often a replicated component is sent.
type SyncMode uint8

const (
	SyncOnce SyncMode = iota // immutable identity data, sent once per client
	SyncFull                 // continuously changing state, sent every broadcast
)

// EntityKind tags replicated entities so clients can build the right local representation.
type EntityKind uint8

const (
	KindSpaceship EntityKind = iota
	KindWeapon
	KindAction
	KindAmmo
	KindPickup
)

func (k EntityKind) String() string {
	switch k {
	case KindSpaceship:
		return "spaceship"
	case KindWeapon:
		return "weapon"
	case KindAction:
		return "action"
	case KindAmmo:
		return "ammo"
	case KindPickup:
		return "pickup"
	default:
		return "unknown"
	}
}

// ShipType selects the hull a player flies.
type ShipType uint8

const (
	ShipInterceptor ShipType = iota
	ShipGunship
)

// WeaponType selects the weapon mounted on a ship.
type WeaponType uint8

const (
	WeaponBlaster WeaponType = iota
	WeaponRailgun
)
