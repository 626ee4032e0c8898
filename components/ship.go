package components

import (
	"time"

	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/yohamta/donburi"
)

type ShipData struct {
	Type  netconfig.ShipType
	Team  netconfig.Team
	Lobby donburi.Entity
}

var Ship = donburi.NewComponentType[ShipData]()

type WeaponData struct {
	Type     netconfig.WeaponType
	Cooldown time.Duration // time until the weapon can fire again
}

var Weapon = donburi.NewComponentType[WeaponData]()

type AmmoData struct {
	Owner    netconfig.PlayerID
	Team     netconfig.Team
	Weapon   netconfig.WeaponType
	Lifetime time.Duration
}

var Ammo = donburi.NewComponentType[AmmoData]()

// ActionData buffers the newest input received for a player. The server
// applies at most one input per tick.
type ActionData struct {
	Latest  messages.PlayerInput
	Pending bool
}

var Action = donburi.NewComponentType[ActionData]()
